package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo implementação do porto VehicleRepository sobre PostgreSQL.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

const vehicleColumns = `id, company_id, customer_id, placa, marca, modelo, ano, cor, created_at, updated_at`

// Create persiste um novo veículo.
func (r *VehicleRepo) Create(vehicle *entity.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		vehicle.ID, vehicle.CompanyID, vehicle.CustomerID, vehicle.Placa,
		vehicle.Marca, vehicle.Modelo, vehicle.Ano, vehicle.Cor,
		vehicle.CreatedAt, vehicle.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("placa já cadastrada: %w", err)
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// GetByID obtém um veículo por ID.
func (r *VehicleRepo) GetByID(id string) (*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	var v entity.Vehicle
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&v.ID, &v.CompanyID, &v.CustomerID, &v.Placa, &v.Marca, &v.Modelo,
		&v.Ano, &v.Cor, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}

// ListByCompany lista veículos da empresa com paginação.
func (r *VehicleRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE company_id = $1 ORDER BY placa LIMIT $2 OFFSET $3`
	return r.list(query, companyID, limit, offset)
}

// ListByCustomer lista os veículos de um cliente.
func (r *VehicleRepo) ListByCustomer(customerID string) ([]*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE customer_id = $1 ORDER BY placa`
	return r.list(query, customerID)
}

func (r *VehicleRepo) list(query string, args ...any) ([]*entity.Vehicle, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Vehicle
	for rows.Next() {
		var v entity.Vehicle
		if err := rows.Scan(&v.ID, &v.CompanyID, &v.CustomerID, &v.Placa, &v.Marca,
			&v.Modelo, &v.Ano, &v.Cor, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// Update atualiza os dados do veículo.
func (r *VehicleRepo) Update(vehicle *entity.Vehicle) error {
	query := `
		UPDATE vehicles
		SET customer_id = $2, placa = $3, marca = $4, modelo = $5, ano = $6,
		    cor = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		vehicle.ID, vehicle.CustomerID, vehicle.Placa, vehicle.Marca,
		vehicle.Modelo, vehicle.Ano, vehicle.Cor, vehicle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return nil
}

// Delete remove o veículo.
func (r *VehicleRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

// ServiceOrderRepo implementação do porto ServiceOrderRepository sobre PostgreSQL.
type ServiceOrderRepo struct {
	q Querier
}

// NewServiceOrderRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{q: q}
}

const orderColumns = `id, company_id, customer_id, vehicle_id, numero, status,
	paga, descricao, total, created_at, updated_at`

// Create persiste a cabeceira da ordem de serviço.
func (r *ServiceOrderRepo) Create(order *entity.ServiceOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	query := `
		INSERT INTO service_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.CompanyID, order.CustomerID, nullIfEmpty(order.VehicleID),
		order.Numero, order.Status, order.Paga, order.Descricao, order.Total,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numero da ordem já existe: %w", err)
		}
		return fmt.Errorf("insert service order: %w", err)
	}
	return nil
}

// CreateItem persiste uma linha da ordem.
func (r *ServiceOrderRepo) CreateItem(item *entity.ServiceOrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO service_order_items (id, service_order_id, tipo, descricao,
			quantidade, valor_unitario, valor_total, codigo_servico_municipal,
			aliquota, iss_retido, isento_iss)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.ServiceOrderID, item.Tipo, item.Descricao,
		item.Quantidade, item.ValorUnitario, item.ValorTotal,
		nullIfEmpty(item.CodigoServicoMunicipal), item.Aliquota,
		item.ISSRetido, item.IsentoISS,
	)
	if err != nil {
		return fmt.Errorf("insert service order item: %w", err)
	}
	return nil
}

// GetByID obtém a cabeceira da ordem por ID.
func (r *ServiceOrderRepo) GetByID(id string) (*entity.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE id = $1`
	var o entity.ServiceOrder
	var vehicleID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.CompanyID, &o.CustomerID, &vehicleID, &o.Numero, &o.Status,
		&o.Paga, &o.Descricao, &o.Total, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service order: %w", err)
	}
	o.VehicleID = derefStr(vehicleID)
	return &o, nil
}

// GetItems obtém todas as linhas da ordem.
func (r *ServiceOrderRepo) GetItems(orderID string) ([]*entity.ServiceOrderItem, error) {
	query := `
		SELECT id, service_order_id, tipo, descricao, quantidade, valor_unitario,
		       valor_total, COALESCE(codigo_servico_municipal, ''), aliquota,
		       iss_retido, isento_iss
		FROM service_order_items WHERE service_order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceOrderItem
	for rows.Next() {
		var it entity.ServiceOrderItem
		if err := rows.Scan(&it.ID, &it.ServiceOrderID, &it.Tipo, &it.Descricao,
			&it.Quantidade, &it.ValorUnitario, &it.ValorTotal,
			&it.CodigoServicoMunicipal, &it.Aliquota, &it.ISSRetido, &it.IsentoISS); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListByCompany lista ordens da empresa, mais recentes primeiro.
func (r *ServiceOrderRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders
		WHERE company_id = $1 ORDER BY numero DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list service orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceOrder
	for rows.Next() {
		var o entity.ServiceOrder
		var vehicleID *string
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.CustomerID, &vehicleID, &o.Numero,
			&o.Status, &o.Paga, &o.Descricao, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service order: %w", err)
		}
		o.VehicleID = derefStr(vehicleID)
		list = append(list, &o)
	}
	return list, rows.Err()
}

// NextNumber devolve o próximo número sequencial de ordem da empresa.
func (r *ServiceOrderRepo) NextNumber(companyID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(MAX(numero), 0) + 1 FROM service_orders WHERE company_id = $1`,
		companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

// Update atualiza status, pagamento e totais da ordem.
func (r *ServiceOrderRepo) Update(order *entity.ServiceOrder) error {
	query := `
		UPDATE service_orders
		SET status = $2, paga = $3, descricao = $4, total = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.Paga, order.Descricao, order.Total, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service order: %w", err)
	}
	return nil
}

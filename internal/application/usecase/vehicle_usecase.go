package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/seu-usuario/oficina-pro/internal/application/dto"
	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// VehicleUseCase aplica as regras de negócio de veículos.
type VehicleUseCase struct {
	repo      repository.VehicleRepository
	customers repository.CustomerRepository
}

// NewVehicleUseCase constrói o caso de uso.
func NewVehicleUseCase(repo repository.VehicleRepository, customers repository.CustomerRepository) *VehicleUseCase {
	return &VehicleUseCase{repo: repo, customers: customers}
}

// Create cria um veículo vinculado a um cliente da empresa.
func (uc *VehicleUseCase) Create(companyID string, in dto.CreateVehicleRequest) (*dto.VehicleResponse, error) {
	customer, err := uc.customers.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	vehicle := &entity.Vehicle{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		Placa:      in.Placa,
		Marca:      in.Marca,
		Modelo:     in.Modelo,
		Ano:        in.Ano,
		Cor:        in.Cor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(vehicle); err != nil {
		return nil, err
	}
	return entityToVehicleResponse(vehicle), nil
}

// GetByID obtém o veículo, restrito à empresa do chamador.
func (uc *VehicleUseCase) GetByID(companyID, id string) (*dto.VehicleResponse, error) {
	vehicle, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil || vehicle.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return entityToVehicleResponse(vehicle), nil
}

// List lista veículos da empresa com paginação.
func (uc *VehicleUseCase) List(companyID string, page dto.PageRequest) (*dto.VehicleListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VehicleResponse, 0, len(list))
	for _, v := range list {
		items = append(items, *entityToVehicleResponse(v))
	}
	return &dto.VehicleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update aplica uma atualização parcial.
func (uc *VehicleUseCase) Update(companyID, id string, in dto.UpdateVehicleRequest) (*dto.VehicleResponse, error) {
	vehicle, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil || vehicle.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	setStr(&vehicle.Placa, in.Placa)
	setStr(&vehicle.Marca, in.Marca)
	setStr(&vehicle.Modelo, in.Modelo)
	setStr(&vehicle.Cor, in.Cor)
	if in.Ano != nil {
		vehicle.Ano = *in.Ano
	}
	vehicle.UpdatedAt = time.Now()

	if err := uc.repo.Update(vehicle); err != nil {
		return nil, err
	}
	return entityToVehicleResponse(vehicle), nil
}

// Delete remove o veículo da empresa.
func (uc *VehicleUseCase) Delete(companyID, id string) error {
	vehicle, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if vehicle == nil || vehicle.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

func entityToVehicleResponse(v *entity.Vehicle) *dto.VehicleResponse {
	if v == nil {
		return nil
	}
	return &dto.VehicleResponse{
		ID:         v.ID,
		CustomerID: v.CustomerID,
		Placa:      v.Placa,
		Marca:      v.Marca,
		Modelo:     v.Modelo,
		Ano:        v.Ano,
		Cor:        v.Cor,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

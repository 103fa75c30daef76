package repository

import "github.com/seu-usuario/oficina-pro/internal/domain/entity"

// VehicleRepository define o porto de persistência para Vehicle.
type VehicleRepository interface {
	Create(vehicle *entity.Vehicle) error
	GetByID(id string) (*entity.Vehicle, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Vehicle, error)
	ListByCustomer(customerID string) ([]*entity.Vehicle, error)
	Update(vehicle *entity.Vehicle) error
	Delete(id string) error
}

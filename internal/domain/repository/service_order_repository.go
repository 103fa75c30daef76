package repository

import "github.com/seu-usuario/oficina-pro/internal/domain/entity"

// ServiceOrderRepository define o porto de persistência para ordens de serviço.
type ServiceOrderRepository interface {
	Create(order *entity.ServiceOrder) error
	CreateItem(item *entity.ServiceOrderItem) error
	GetByID(id string) (*entity.ServiceOrder, error)
	GetItems(orderID string) ([]*entity.ServiceOrderItem, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.ServiceOrder, error)
	NextNumber(companyID string) (int, error)
	Update(order *entity.ServiceOrder) error
}

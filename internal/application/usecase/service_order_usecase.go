package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seu-usuario/oficina-pro/internal/application/dto"
	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// ServiceOrderUseCase aplica as regras de negócio de ordens de serviço.
type ServiceOrderUseCase struct {
	orders    repository.ServiceOrderRepository
	customers repository.CustomerRepository
	vehicles  repository.VehicleRepository
	tx        TxRunner
}

// NewServiceOrderUseCase constrói o caso de uso. tx garante que ordem e itens
// sejam criados atomicamente.
func NewServiceOrderUseCase(
	orders repository.ServiceOrderRepository,
	customers repository.CustomerRepository,
	vehicles repository.VehicleRepository,
	tx TxRunner,
) *ServiceOrderUseCase {
	return &ServiceOrderUseCase{orders: orders, customers: customers, vehicles: vehicles, tx: tx}
}

// Create cria a ordem com seus itens numa transação. Valores monetários chegam
// como string decimal; o código de serviço municipal é normalizado (só
// dígitos) já na entrada.
func (uc *ServiceOrderUseCase) Create(ctx context.Context, companyID string, in dto.CreateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	customer, err := uc.customers.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, fmt.Errorf("%w: cliente não encontrado", domain.ErrNotFound)
	}
	if in.VehicleID != "" {
		vehicle, err := uc.vehicles.GetByID(in.VehicleID)
		if err != nil {
			return nil, err
		}
		if vehicle == nil || vehicle.CompanyID != companyID {
			return nil, fmt.Errorf("%w: veículo não encontrado", domain.ErrNotFound)
		}
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: ordem sem itens", domain.ErrInvalidInput)
	}

	items := make([]*entity.ServiceOrderItem, 0, len(in.Items))
	total := decimal.Zero
	for i, it := range in.Items {
		if it.Tipo != entity.ItemServico && it.Tipo != entity.ItemProduto {
			return nil, fmt.Errorf("%w: item %d com tipo inválido %q", domain.ErrInvalidInput, i, it.Tipo)
		}
		qty, err := decimal.NewFromString(it.Quantidade)
		if err != nil || qty.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: item %d com quantidade inválida", domain.ErrInvalidInput, i)
		}
		unit, err := decimal.NewFromString(it.ValorUnitario)
		if err != nil || unit.IsNegative() {
			return nil, fmt.Errorf("%w: item %d com valor unitário inválido", domain.ErrInvalidInput, i)
		}
		aliquota := decimal.Zero
		if it.Aliquota != "" {
			if aliquota, err = decimal.NewFromString(it.Aliquota); err != nil {
				return nil, fmt.Errorf("%w: item %d com alíquota inválida", domain.ErrInvalidInput, i)
			}
		}
		lineTotal := qty.Mul(unit)
		total = total.Add(lineTotal)
		items = append(items, &entity.ServiceOrderItem{
			ID:                     uuid.New().String(),
			Tipo:                   it.Tipo,
			Descricao:              it.Descricao,
			Quantidade:             qty,
			ValorUnitario:          unit,
			ValorTotal:             lineTotal,
			CodigoServicoMunicipal: nfse.NormalizeServiceCode(it.CodigoServico),
			Aliquota:               aliquota,
			ISSRetido:              it.ISSRetido,
			IsentoISS:              it.IsentoISS,
		})
	}

	number, err := uc.orders.NextNumber(companyID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	order := &entity.ServiceOrder{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		VehicleID:  in.VehicleID,
		Numero:     number,
		Status:     entity.OrderOpen,
		Descricao:  in.Descricao,
		Total:      total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = uc.tx.RunOrder(ctx, func(orders repository.ServiceOrderRepository) error {
		if err := orders.Create(order); err != nil {
			return err
		}
		for _, item := range items {
			item.ServiceOrderID = order.ID
			if err := orders.CreateItem(item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(order, items), nil
}

// GetByID obtém a ordem com itens, restrita à empresa do chamador.
func (uc *ServiceOrderUseCase) GetByID(companyID, id string) (*dto.ServiceOrderResponse, error) {
	order, err := uc.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	items, err := uc.orders.GetItems(id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(order, items), nil
}

// List lista ordens da empresa com paginação, sem itens.
func (uc *ServiceOrderUseCase) List(companyID string, page dto.PageRequest) (*dto.ServiceOrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.orders.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ServiceOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *uc.toResponse(o, nil))
	}
	return &dto.ServiceOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update muda status/pagamento/descrição da ordem. A regressão de status não é
// permitida: entregue é terminal no fluxo da oficina.
func (uc *ServiceOrderUseCase) Update(companyID, id string, in dto.UpdateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	order, err := uc.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	if in.Status != nil {
		next := *in.Status
		if next != entity.OrderOpen && next != entity.OrderFinished && next != entity.OrderDelivered {
			return nil, fmt.Errorf("%w: status inválido %q", domain.ErrInvalidInput, next)
		}
		if order.Status == entity.OrderDelivered && next != entity.OrderDelivered {
			return nil, fmt.Errorf("%w: ordem entregue não volta atrás", domain.ErrConflict)
		}
		order.Status = next
	}
	if in.Paga != nil {
		order.Paga = *in.Paga
	}
	setStr(&order.Descricao, in.Descricao)
	order.UpdatedAt = time.Now()

	if err := uc.orders.Update(order); err != nil {
		return nil, err
	}
	items, err := uc.orders.GetItems(id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(order, items), nil
}

func (uc *ServiceOrderUseCase) toResponse(o *entity.ServiceOrder, items []*entity.ServiceOrderItem) *dto.ServiceOrderResponse {
	res := &dto.ServiceOrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		VehicleID:  o.VehicleID,
		Numero:     o.Numero,
		Status:     o.Status,
		Paga:       o.Paga,
		Descricao:  o.Descricao,
		Total:      o.Total.StringFixed(2),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, it := range items {
		res.Items = append(res.Items, dto.ServiceOrderItemResponse{
			ID:            it.ID,
			Tipo:          it.Tipo,
			Descricao:     it.Descricao,
			Quantidade:    it.Quantidade.String(),
			ValorUnitario: it.ValorUnitario.StringFixed(2),
			ValorTotal:    it.ValorTotal.StringFixed(2),
			CodigoServico: it.CodigoServicoMunicipal,
			Aliquota:      it.Aliquota.String(),
			ISSRetido:     it.ISSRetido,
			IsentoISS:     it.IsentoISS,
		})
	}
	return res
}

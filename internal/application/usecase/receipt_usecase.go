package usecase

import (
	"context"
	"fmt"

	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// OrderPDFGenerator define o porto de geração do comprovante da ordem.
// A implementação concreta (Maroto) vive em infrastructure/pdf.
type OrderPDFGenerator interface {
	GenerateOrderReceipt(
		ctx context.Context,
		order *entity.ServiceOrder,
		items []*entity.ServiceOrderItem,
		company *entity.Company,
		customer *entity.Customer,
		vehicle *entity.Vehicle,
		invoice *entity.ServiceOrderInvoice,
	) ([]byte, error)
}

// ReceiptUseCase monta o comprovante em PDF da ordem de serviço.
type ReceiptUseCase struct {
	orders    repository.ServiceOrderRepository
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	vehicles  repository.VehicleRepository
	invoices  repository.InvoiceRepository
	generator OrderPDFGenerator
}

// NewReceiptUseCase constrói o caso de uso.
func NewReceiptUseCase(
	orders repository.ServiceOrderRepository,
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	vehicles repository.VehicleRepository,
	invoices repository.InvoiceRepository,
	generator OrderPDFGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		orders:    orders,
		companies: companies,
		customers: customers,
		vehicles:  vehicles,
		invoices:  invoices,
		generator: generator,
	}
}

// Generate devolve os bytes do PDF e o nome de arquivo sugerido.
func (uc *ReceiptUseCase) Generate(ctx context.Context, companyID, orderID string) ([]byte, string, error) {
	order, err := uc.orders.GetByID(orderID)
	if err != nil {
		return nil, "", err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, "", domain.ErrNotFound
	}
	items, err := uc.orders.GetItems(orderID)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.companies.GetByID(companyID)
	if err != nil {
		return nil, "", err
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	customer, err := uc.customers.GetByID(order.CustomerID)
	if err != nil {
		return nil, "", err
	}
	if customer == nil {
		return nil, "", domain.ErrNotFound
	}

	// Veículo e NFS-e são opcionais no comprovante.
	var vehicle *entity.Vehicle
	if order.VehicleID != "" {
		vehicle, _ = uc.vehicles.GetByID(order.VehicleID)
	}
	invoice, _ := uc.invoices.GetByServiceOrderID(orderID)

	content, err := uc.generator.GenerateOrderReceipt(ctx, order, items, company, customer, vehicle, invoice)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ordem-%06d.pdf", order.Numero)
	return content, filename, nil
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de item de uma ordem de serviço.
const (
	ItemServico = "servico"
	ItemProduto = "produto"
)

// Status da ordem de serviço no fluxo da oficina.
const (
	OrderOpen      = "aberta"
	OrderFinished  = "concluida"
	OrderDelivered = "entregue"
)

// ServiceOrder é a ordem de serviço da oficina. A NFS-e, quando emitida, fica
// vinculada 1:1 a ela via ServiceOrderInvoice.
type ServiceOrder struct {
	ID         string
	CompanyID  string
	CustomerID string
	VehicleID  string
	Numero     int
	Status     string // ver constantes Order*
	Paga       bool
	Descricao  string
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ServiceOrderItem é uma linha da ordem: serviço executado ou peça aplicada.
type ServiceOrderItem struct {
	ID             string
	ServiceOrderID string
	Tipo           string // servico | produto
	Descricao      string
	Quantidade     decimal.Decimal
	ValorUnitario  decimal.Decimal
	ValorTotal     decimal.Decimal

	// Campos fiscais, relevantes só para itens de serviço.
	CodigoServicoMunicipal string          // código de serviço da prefeitura (6 dígitos após normalização)
	Aliquota               decimal.Decimal // alíquota de ISS (%)
	ISSRetido              bool
	IsentoISS              bool // isento dispensa o código de serviço
}

// IsService indica se o item é um serviço faturável por NFS-e.
func (i *ServiceOrderItem) IsService() bool { return i.Tipo == ItemServico }

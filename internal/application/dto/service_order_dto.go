package dto

import "time"

// ServiceOrderItemRequest linha de item na criação da ordem.
type ServiceOrderItemRequest struct {
	Tipo          string  `json:"tipo" validate:"required,oneof=servico produto"`
	Descricao     string  `json:"descricao" validate:"required"`
	Quantidade    string  `json:"quantidade" validate:"required"`     // decimal como string
	ValorUnitario string  `json:"valor_unitario" validate:"required"` // decimal como string
	CodigoServico string  `json:"codigo_servico_municipal"`
	Aliquota      string  `json:"aliquota"`
	ISSRetido     bool    `json:"iss_retido"`
	IsentoISS     bool    `json:"isento_iss"`
}

// CreateServiceOrderRequest corpo de criação de ordem de serviço com itens.
type CreateServiceOrderRequest struct {
	CustomerID string                    `json:"customer_id" validate:"required"`
	VehicleID  string                    `json:"vehicle_id"`
	Descricao  string                    `json:"descricao"`
	Items      []ServiceOrderItemRequest `json:"items" validate:"required,min=1"`
}

// UpdateServiceOrderRequest atualização de estado da ordem.
type UpdateServiceOrderRequest struct {
	Status    *string `json:"status" validate:"omitempty,oneof=aberta concluida entregue"`
	Paga      *bool   `json:"paga"`
	Descricao *string `json:"descricao"`
}

// ServiceOrderItemResponse linha de item nas respostas.
type ServiceOrderItemResponse struct {
	ID            string `json:"id"`
	Tipo          string `json:"tipo"`
	Descricao     string `json:"descricao"`
	Quantidade    string `json:"quantidade"`
	ValorUnitario string `json:"valor_unitario"`
	ValorTotal    string `json:"valor_total"`
	CodigoServico string `json:"codigo_servico_municipal,omitempty"`
	Aliquota      string `json:"aliquota,omitempty"`
	ISSRetido     bool   `json:"iss_retido"`
	IsentoISS     bool   `json:"isento_iss"`
}

// ServiceOrderResponse representação da ordem nas respostas.
type ServiceOrderResponse struct {
	ID         string                     `json:"id"`
	CustomerID string                     `json:"customer_id"`
	VehicleID  string                     `json:"vehicle_id,omitempty"`
	Numero     int                        `json:"numero"`
	Status     string                     `json:"status"`
	Paga       bool                       `json:"paga"`
	Descricao  string                     `json:"descricao,omitempty"`
	Total      string                     `json:"total"`
	Items      []ServiceOrderItemResponse `json:"items,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// ServiceOrderListResponse listagem paginada de ordens.
type ServiceOrderListResponse struct {
	Items []ServiceOrderResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

package dto

import "time"

// CreateVehicleRequest corpo de criação de veículo.
type CreateVehicleRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Placa      string `json:"placa" validate:"required"`
	Marca      string `json:"marca"`
	Modelo     string `json:"modelo"`
	Ano        int    `json:"ano"`
	Cor        string `json:"cor"`
}

// UpdateVehicleRequest atualização parcial de veículo.
type UpdateVehicleRequest struct {
	Placa  *string `json:"placa"`
	Marca  *string `json:"marca"`
	Modelo *string `json:"modelo"`
	Ano    *int    `json:"ano"`
	Cor    *string `json:"cor"`
}

// VehicleResponse representação de veículo nas respostas.
type VehicleResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Placa      string    `json:"placa"`
	Marca      string    `json:"marca,omitempty"`
	Modelo     string    `json:"modelo,omitempty"`
	Ano        int       `json:"ano,omitempty"`
	Cor        string    `json:"cor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// VehicleListResponse listagem paginada de veículos.
type VehicleListResponse struct {
	Items []VehicleResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

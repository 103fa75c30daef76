package entity

import "time"

// Vehicle representa um veículo de um cliente da oficina.
type Vehicle struct {
	ID         string
	CompanyID  string
	CustomerID string
	Placa      string
	Marca      string
	Modelo     string
	Ano        int
	Cor        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

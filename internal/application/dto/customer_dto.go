package dto

import "time"

// CreateCustomerRequest corpo de criação de cliente.
type CreateCustomerRequest struct {
	Nome     string `json:"nome" validate:"required"`
	CPF      string `json:"cpf"`
	CNPJ     string `json:"cnpj"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`

	Logradouro     string `json:"logradouro"`
	NumeroEndereco string `json:"numero_endereco"`
	Complemento    string `json:"complemento"`
	Bairro         string `json:"bairro"`
	Municipio      string `json:"municipio"`
	UF             string `json:"uf"`
	CEP            string `json:"cep"`
}

// UpdateCustomerRequest atualização parcial de cliente.
type UpdateCustomerRequest struct {
	Nome     *string `json:"nome"`
	CPF      *string `json:"cpf"`
	CNPJ     *string `json:"cnpj"`
	Email    *string `json:"email"`
	Telefone *string `json:"telefone"`

	Logradouro     *string `json:"logradouro"`
	NumeroEndereco *string `json:"numero_endereco"`
	Complemento    *string `json:"complemento"`
	Bairro         *string `json:"bairro"`
	Municipio      *string `json:"municipio"`
	UF             *string `json:"uf"`
	CEP            *string `json:"cep"`
}

// CustomerResponse representação de cliente nas respostas.
type CustomerResponse struct {
	ID             string    `json:"id"`
	Nome           string    `json:"nome"`
	CPF            string    `json:"cpf,omitempty"`
	CNPJ           string    `json:"cnpj,omitempty"`
	Email          string    `json:"email,omitempty"`
	Telefone       string    `json:"telefone,omitempty"`
	Logradouro     string    `json:"logradouro,omitempty"`
	NumeroEndereco string    `json:"numero_endereco,omitempty"`
	Complemento    string    `json:"complemento,omitempty"`
	Bairro         string    `json:"bairro,omitempty"`
	Municipio      string    `json:"municipio,omitempty"`
	UF             string    `json:"uf,omitempty"`
	CEP            string    `json:"cep,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CustomerListResponse listagem paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

package entity

import "time"

// Customer representa um cliente da oficina (tomador do serviço na NFS-e).
type Customer struct {
	ID        string
	CompanyID string
	Nome      string
	CPF       string // pessoa física
	CNPJ      string // pessoa jurídica; um dos dois documentos basta
	Email     string
	Telefone  string

	Logradouro     string
	NumeroEndereco string
	Complemento    string
	Bairro         string
	Municipio      string
	UF             string
	CEP            string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaxDocument devolve o documento fiscal disponível (CNPJ tem precedência).
func (c *Customer) TaxDocument() string {
	if c.CNPJ != "" {
		return c.CNPJ
	}
	return c.CPF
}

// HasCompleteAddress indica se o endereço do tomador atende o mínimo do RPS.
func (c *Customer) HasCompleteAddress() bool {
	return c.Logradouro != "" && c.Bairro != "" && c.Municipio != "" &&
		c.UF != "" && c.CEP != ""
}

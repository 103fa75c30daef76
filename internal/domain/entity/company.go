package entity

import "time"

// Company representa a oficina emissora (tenant do sistema). Os campos fiscais
// são os pré-requisitos de emissão de NFS-e: sem eles a validação bloqueia.
type Company struct {
	ID                 string
	RazaoSocial        string
	NomeFantasia       string
	CNPJ               string
	InscricaoMunicipal string
	Email              string
	Telefone           string

	// Endereço completo exigido pelo RPS.
	Logradouro      string
	NumeroEndereco  string
	Complemento     string
	Bairro          string
	Municipio       string
	UF              string
	CEP             string
	CodigoMunicipio string // código IBGE do município

	// NFSEToken é a credencial da empresa junto ao gateway fiscal.
	NFSEToken string

	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCompleteAddress indica se o endereço atende o mínimo do RPS.
func (c *Company) HasCompleteAddress() bool {
	return c.Logradouro != "" && c.Bairro != "" && c.Municipio != "" &&
		c.UF != "" && c.CEP != "" && c.CodigoMunicipio != ""
}

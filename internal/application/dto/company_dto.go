package dto

import "time"

// CreateCompanyRequest corpo de criação de empresa (oficina).
type CreateCompanyRequest struct {
	RazaoSocial  string `json:"razao_social" validate:"required"`
	NomeFantasia string `json:"nome_fantasia"`
	CNPJ         string `json:"cnpj" validate:"required"`
	Email        string `json:"email"`
	Telefone     string `json:"telefone"`
}

// UpdateCompanyRequest atualização do cadastro, incluindo os campos fiscais
// exigidos pela emissão de NFS-e. Ponteiros distinguem "não enviado" de vazio.
type UpdateCompanyRequest struct {
	RazaoSocial        *string `json:"razao_social"`
	NomeFantasia       *string `json:"nome_fantasia"`
	CNPJ               *string `json:"cnpj"`
	InscricaoMunicipal *string `json:"inscricao_municipal"`
	Email              *string `json:"email"`
	Telefone           *string `json:"telefone"`

	Logradouro      *string `json:"logradouro"`
	NumeroEndereco  *string `json:"numero_endereco"`
	Complemento     *string `json:"complemento"`
	Bairro          *string `json:"bairro"`
	Municipio       *string `json:"municipio"`
	UF              *string `json:"uf"`
	CEP             *string `json:"cep"`
	CodigoMunicipio *string `json:"codigo_municipio"`

	NFSEToken *string `json:"nfse_token"`
}

// CompanyResponse representação de empresa nas respostas. O token do gateway
// nunca sai da API; só um indicador de configurado.
type CompanyResponse struct {
	ID                 string    `json:"id"`
	RazaoSocial        string    `json:"razao_social"`
	NomeFantasia       string    `json:"nome_fantasia,omitempty"`
	CNPJ               string    `json:"cnpj"`
	InscricaoMunicipal string    `json:"inscricao_municipal,omitempty"`
	Email              string    `json:"email,omitempty"`
	Telefone           string    `json:"telefone,omitempty"`
	Logradouro         string    `json:"logradouro,omitempty"`
	NumeroEndereco     string    `json:"numero_endereco,omitempty"`
	Complemento        string    `json:"complemento,omitempty"`
	Bairro             string    `json:"bairro,omitempty"`
	Municipio          string    `json:"municipio,omitempty"`
	UF                 string    `json:"uf,omitempty"`
	CEP                string    `json:"cep,omitempty"`
	CodigoMunicipio    string    `json:"codigo_municipio,omitempty"`
	NFSEConfigurado    bool      `json:"nfse_configurado"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

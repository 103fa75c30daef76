// Package nfse implementa o cliente HTTP do gateway fiscal de NFS-e
// (API JSON estilo Focus NFe). O gateway assina e transmite o RPS à
// prefeitura; este cliente só submete, consulta e baixa documentos.
package nfse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RPS é o corpo de emissão enviado ao gateway.
type RPS struct {
	DataEmissao string       `json:"data_emissao"`
	Prestador   RPSPrestador `json:"prestador"`
	Tomador     RPSTomador   `json:"tomador"`
	Servico     RPSServico   `json:"servico"`
}

// RPSPrestador identifica a empresa emissora junto à prefeitura.
type RPSPrestador struct {
	CNPJ               string `json:"cnpj"`
	InscricaoMunicipal string `json:"inscricao_municipal"`
	CodigoMunicipio    string `json:"codigo_municipio"`
}

// RPSTomador identifica o cliente do serviço. CPF ou CNPJ, nunca ambos.
type RPSTomador struct {
	CNPJ        string      `json:"cnpj,omitempty"`
	CPF         string      `json:"cpf,omitempty"`
	RazaoSocial string      `json:"razao_social"`
	Email       string      `json:"email,omitempty"`
	Endereco    RPSEndereco `json:"endereco"`
}

// RPSEndereco é o endereço no formato do RPS.
type RPSEndereco struct {
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro"`
	Municipio   string `json:"municipio"`
	UF          string `json:"uf"`
	CEP         string `json:"cep"`
}

// RPSServico agrega os serviços da ordem numa única discriminação.
type RPSServico struct {
	Discriminacao             string  `json:"discriminacao"`
	ISSRetido                 bool    `json:"iss_retido"`
	ItemListaServico          string  `json:"item_lista_servico"`
	CodigoTributarioMunicipio string  `json:"codigo_tributario_municipio,omitempty"`
	ValorServicos             float64 `json:"valor_servicos"`
	Aliquota                  float64 `json:"aliquota,omitempty"`
}

// EmitResult é o resultado interpretado da submissão síncrona.
type EmitResult struct {
	Accepted     bool
	Status       string // status declarado pelo gateway, se houver
	ErrorMessage string
	ErrorCode    string
	HTTPStatus   int
	RawBody      []byte
}

// StatusPayload é o descritor de status da NFS-e, com o mesmo formato tanto no
// callback do webhook quanto na consulta por reference. Campos de URL/caminho
// variam por prefeitura e etapa de entrega; Raw preserva o payload original
// para o normalizador de erros.
type StatusPayload struct {
	Ref           string
	Status        string
	Numero        string
	CodigoVerif   string
	URL           string // página de consulta da prefeitura
	URLDanfse     string
	URLXML        string
	CaminhoDanfse string
	CaminhoXML    string

	Raw map[string]any
}

// ParseStatusPayload decodifica o corpo JSON num descritor. Todos os campos
// são extraídos com tolerância de tipo: prefeituras devolvem "numero" ora como
// string, ora como número.
func ParseStatusPayload(body []byte) (*StatusPayload, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("nfse: corpo não é um objeto JSON: %w", err)
	}
	p := &StatusPayload{
		Ref:           asString(raw["ref"]),
		Status:        asString(raw["status"]),
		Numero:        asString(raw["numero"]),
		CodigoVerif:   asString(raw["codigo_verificacao"]),
		URL:           asString(raw["url"]),
		URLDanfse:     asString(raw["url_danfse"]),
		URLXML:        asString(raw["url_xml"]),
		CaminhoDanfse: asString(raw["caminho_danfse"]),
		CaminhoXML:    asString(raw["caminho_xml_nota_fiscal"]),
		Raw:           raw,
	}
	return p, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

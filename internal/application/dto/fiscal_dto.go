package dto

import (
	"time"

	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
)

// ValidationResponse resultado da validação pré-emissão. As pendências saem
// na ordem em que foram verificadas; pode_emitir reflete só as bloqueantes.
type ValidationResponse struct {
	PodeEmitir bool         `json:"pode_emitir"`
	Pendencias []nfse.Issue `json:"pendencias"`
}

// InvoiceResponse estado da NFS-e vinculada à ordem de serviço.
type InvoiceResponse struct {
	ServiceOrderID string    `json:"service_order_id"`
	Referencia     string    `json:"referencia,omitempty"`
	Status         string    `json:"status"`
	Numero         string    `json:"numero,omitempty"`
	CodigoVerif    string    `json:"codigo_verificacao,omitempty"`
	URL            string    `json:"url,omitempty"`
	PDFURL         string    `json:"pdf_url,omitempty"`
	XMLURL         string    `json:"xml_url,omitempty"`
	ErrorMessage   string    `json:"mensagem_erro,omitempty"`
	ErrorCode      string    `json:"codigo_erro,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EmitResponse resultado da chamada de emissão: as pendências da validação e,
// quando a submissão aconteceu, o estado corrente do registro.
type EmitResponse struct {
	Pendencias []nfse.Issue     `json:"pendencias,omitempty"`
	Nota       *InvoiceResponse `json:"nota,omitempty"`
}

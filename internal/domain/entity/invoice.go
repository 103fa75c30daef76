package entity

import "time"

// ServiceOrderInvoice é o registro da NFS-e vinculado 1:1 à ordem de serviço.
//
// Reference é a única chave de correlação entre emissão, webhook e consulta de
// documentos; imutável depois de atribuída, funciona como chave de
// idempotência. PDFURL/XMLURL são cache best-effort: o gateway pode ainda não
// ter produzido os arquivos mesmo com status autorizado, então o download
// sempre reconsulta em vez de confiar numa URL antiga.
type ServiceOrderInvoice struct {
	ID             string
	CompanyID      string
	ServiceOrderID string
	Reference      string
	Status         string // ver nfse.Status*
	Numero         string
	CodigoVerif    string
	URL            string // página de consulta na prefeitura
	PDFURL         string
	XMLURL         string
	ErrorMessage   string
	ErrorCode      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

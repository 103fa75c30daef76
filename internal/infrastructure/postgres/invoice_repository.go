package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementação do porto InvoiceRepository sobre PostgreSQL.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, service_order_id, reference, status,
	COALESCE(numero, ''), COALESCE(codigo_verificacao, ''), COALESCE(url, ''),
	COALESCE(pdf_url, ''), COALESCE(xml_url, ''), COALESCE(error_message, ''),
	COALESCE(error_code, ''), created_at, updated_at`

// Create persiste o registro de NFS-e (um por ordem de serviço).
func (r *InvoiceRepo) Create(inv *entity.ServiceOrderInvoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO service_order_invoices (id, company_id, service_order_id,
			reference, status, numero, codigo_verificacao, url, pdf_url, xml_url,
			error_message, error_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.CompanyID, inv.ServiceOrderID, inv.Reference, inv.Status,
		nullIfEmpty(inv.Numero), nullIfEmpty(inv.CodigoVerif), nullIfEmpty(inv.URL),
		nullIfEmpty(inv.PDFURL), nullIfEmpty(inv.XMLURL),
		nullIfEmpty(inv.ErrorMessage), nullIfEmpty(inv.ErrorCode),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ordem já possui registro de NFS-e: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) scanInvoice(row interface{ Scan(...any) error }) (*entity.ServiceOrderInvoice, error) {
	var inv entity.ServiceOrderInvoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.ServiceOrderID, &inv.Reference, &inv.Status,
		&inv.Numero, &inv.CodigoVerif, &inv.URL, &inv.PDFURL, &inv.XMLURL,
		&inv.ErrorMessage, &inv.ErrorCode, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByServiceOrderID obtém o registro pela ordem de serviço.
func (r *InvoiceRepo) GetByServiceOrderID(orderID string) (*entity.ServiceOrderInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM service_order_invoices WHERE service_order_id = $1`
	inv, err := r.scanInvoice(r.q.QueryRow(context.Background(), query, orderID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by order: %w", err)
	}
	return inv, nil
}

// GetByReference obtém o registro pela chave de correlação.
func (r *InvoiceRepo) GetByReference(ctx context.Context, reference string) (*entity.ServiceOrderInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM service_order_invoices WHERE reference = $1`
	inv, err := r.scanInvoice(r.q.QueryRow(ctx, query, reference))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by reference: %w", err)
	}
	return inv, nil
}

// Update regrava o registro inteiro. Usado pelo fluxo de emissão, que é o
// único escritor do registro antes do gateway aceitar a submissão.
func (r *InvoiceRepo) Update(inv *entity.ServiceOrderInvoice) error {
	query := `
		UPDATE service_order_invoices
		SET reference = $2, status = $3, numero = $4, codigo_verificacao = $5,
		    url = $6, pdf_url = $7, xml_url = $8, error_message = $9,
		    error_code = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.Reference, inv.Status,
		nullIfEmpty(inv.Numero), nullIfEmpty(inv.CodigoVerif), nullIfEmpty(inv.URL),
		nullIfEmpty(inv.PDFURL), nullIfEmpty(inv.XMLURL),
		nullIfEmpty(inv.ErrorMessage), nullIfEmpty(inv.ErrorCode),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// ApplyByReference aplica uma atualização de status vinda do gateway num único
// UPDATE condicional. A cláusula WHERE embute a guarda monotônica de estado
// terminal (espelho de nfse.AllowsTransition): "autorizado" só cede a
// "cancelado", e status terminais ignoram intermediários entregues com atraso.
// Campos de erro são limpos em qualquer transição de volta à autorização;
// URLs de documento são limpas nas transições de erro, preservadas nas demais.
func (r *InvoiceRepo) ApplyByReference(ctx context.Context, reference string, up nfse.Update) (bool, error) {
	query := `
		UPDATE service_order_invoices
		SET status             = $2,
		    numero             = COALESCE($3, numero),
		    codigo_verificacao = COALESCE($4, codigo_verificacao),
		    url     = CASE WHEN $2 IN ('erro_autorizacao', 'rejeitado') THEN NULL ELSE COALESCE($5, url) END,
		    pdf_url = CASE WHEN $2 IN ('erro_autorizacao', 'rejeitado') THEN NULL ELSE COALESCE($6, pdf_url) END,
		    xml_url = CASE WHEN $2 IN ('erro_autorizacao', 'rejeitado') THEN NULL ELSE COALESCE($7, xml_url) END,
		    error_message = CASE WHEN $2 IN ('erro_autorizacao', 'rejeitado', 'cancelado') THEN $8 ELSE NULL END,
		    error_code    = CASE WHEN $2 IN ('erro_autorizacao', 'rejeitado', 'cancelado') THEN $9 ELSE NULL END,
		    updated_at = $10
		WHERE reference = $1
		  AND NOT (status = 'autorizado' AND $2 <> 'cancelado')
		  AND NOT (status IN ('erro_autorizacao', 'rejeitado', 'cancelado')
		           AND $2 IN ('processando_autorizacao', 'enviando'))`
	ct, err := r.q.Exec(ctx, query,
		reference, up.Status,
		nullIfEmpty(up.Number), nullIfEmpty(up.VerificationCode),
		nullIfEmpty(up.URL), nullIfEmpty(up.PDFURL), nullIfEmpty(up.XMLURL),
		nullIfEmpty(up.ErrorMessage), nullIfEmpty(up.ErrorCode),
		time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("apply invoice update: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/oficina-pro/internal/application/dto"
	"github.com/seu-usuario/oficina-pro/internal/application/fiscal"
	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// FiscalHandler expõe o ciclo da NFS-e da ordem de serviço: validação prévia,
// emissão, consulta de status, progresso da tentativa e download de documentos.
type FiscalHandler struct {
	validator *fiscal.Validator
	emission  *fiscal.EmissionService
	webhooks  *fiscal.WebhookService
	documents *fiscal.DocumentService
	invoices  repository.InvoiceRepository
}

// NewFiscalHandler constrói o handler.
func NewFiscalHandler(
	validator *fiscal.Validator,
	emission *fiscal.EmissionService,
	webhooks *fiscal.WebhookService,
	documents *fiscal.DocumentService,
	invoices repository.InvoiceRepository,
) *FiscalHandler {
	return &FiscalHandler{
		validator: validator,
		emission:  emission,
		webhooks:  webhooks,
		documents: documents,
		invoices:  invoices,
	}
}

// Validate GET /api/service-orders/:id/nfse/validacao
func (h *FiscalHandler) Validate(c *fiber.Ctx) error {
	issues, err := h.validator.Validate(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if issues == nil {
		issues = []nfse.Issue{}
	}
	return c.JSON(dto.ValidationResponse{PodeEmitir: nfse.CanEmit(issues), Pendencias: issues})
}

// Emit POST /api/service-orders/:id/nfse
//
// Pendência bloqueante devolve 422 com a lista; a submissão aceita devolve 202
// com o registro em processamento. Rejeição do gateway é resultado, não erro:
// sai 200 com o registro em erro_autorizacao e as mensagens normalizadas.
func (h *FiscalHandler) Emit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	orderID := c.Params("id")

	issues, err := h.emission.Emit(c.Context(), companyID, orderID)
	if issues == nil {
		issues = []nfse.Issue{}
	}
	switch {
	case errors.Is(err, domain.ErrEmissionBlocked):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.EmitResponse{Pendencias: issues})
	case err != nil:
		return respondError(c, err)
	}

	rec, err := h.invoices.GetByServiceOrderID(orderID)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if rec != nil && (rec.Status == nfse.StatusProcessing || rec.Status == nfse.StatusSending) {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(dto.EmitResponse{Pendencias: issues, Nota: toInvoiceResponse(rec)})
}

// Status GET /api/service-orders/:id/nfse?sync=true
//
// sync=true reconsulta o gateway antes de responder; é o plano B para webhook
// perdido.
func (h *FiscalHandler) Status(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	orderID := c.Params("id")

	if c.QueryBool("sync") {
		rec, err := h.webhooks.SyncFromGateway(c.Context(), companyID, orderID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(toInvoiceResponse(rec))
	}

	rec, err := h.invoices.GetByServiceOrderID(orderID)
	if err != nil {
		return respondError(c, err)
	}
	if rec == nil || rec.CompanyID != companyID {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(toInvoiceResponse(rec))
}

// Attempt GET /api/service-orders/:id/nfse/emissao — progresso da tentativa
// corrente (efêmero; some depois do TTL do registro em memória).
func (h *FiscalHandler) Attempt(c *fiber.Ctx) error {
	view, ok := h.emission.Attempt(GetCompanyID(c), c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "nenhuma tentativa de emissão recente"})
	}
	return c.JSON(view)
}

// Document GET /api/service-orders/:id/nfse/arquivo?tipo=pdf|xml
func (h *FiscalHandler) Document(c *fiber.Ctx) error {
	kind := c.Query("tipo", fiscal.DocPDF)
	doc, err := h.documents.Resolve(c.Context(), GetCompanyID(c), c.Params("id"), kind)
	if err != nil {
		var de *fiscal.DocumentError
		if errors.As(err, &de) {
			status := fiber.StatusBadGateway
			if de.Reason == fiscal.ReasonNotReady {
				status = fiber.StatusNotFound
			}
			return c.Status(status).JSON(dto.ErrorResponse{Code: de.Reason, Message: de.Message})
		}
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Send(doc.Content)
}

func toInvoiceResponse(rec *entity.ServiceOrderInvoice) *dto.InvoiceResponse {
	if rec == nil {
		return nil
	}
	return &dto.InvoiceResponse{
		ServiceOrderID: rec.ServiceOrderID,
		Referencia:     rec.Reference,
		Status:         rec.Status,
		Numero:         rec.Numero,
		CodigoVerif:    rec.CodigoVerif,
		URL:            rec.URL,
		PDFURL:         rec.PDFURL,
		XMLURL:         rec.XMLURL,
		ErrorMessage:   rec.ErrorMessage,
		ErrorCode:      rec.ErrorCode,
		UpdatedAt:      rec.UpdatedAt,
	}
}

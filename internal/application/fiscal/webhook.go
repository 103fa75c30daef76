package fiscal

import (
	"context"
	"fmt"
	"strings"

	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
	infranfse "github.com/seu-usuario/oficina-pro/internal/infrastructure/nfse"
	"github.com/seu-usuario/oficina-pro/pkg/logger"
)

// WebhookService aplica atualizações de status vindas do gateway ao registro
// persistido. O caminho push (callback HTTP) e o caminho pull (consulta por
// reference) convergem no mesmo applyPayload: a entrega do webhook pode se
// perder, duplicar ou chegar fora de ordem, e o resultado final tem de ser o
// mesmo pelos dois caminhos.
type WebhookService struct {
	invoices  repository.InvoiceRepository
	companies repository.CompanyRepository
	gateway   GatewayFactory
	baseURL   string
	log       *logger.Logger
}

// NewWebhookService constrói o serviço. baseURL prefixa caminhos relativos de
// documento informados pelo gateway.
func NewWebhookService(
	invoices repository.InvoiceRepository,
	companies repository.CompanyRepository,
	gateway GatewayFactory,
	baseURL string,
	log *logger.Logger,
) *WebhookService {
	return &WebhookService{invoices: invoices, companies: companies, gateway: gateway, baseURL: baseURL, log: log}
}

// CallbackResult descreve o efeito de um callback sobre o registro.
type CallbackResult struct {
	Reference string `json:"referencia"`
	Before    string `json:"status_anterior"`
	After     string `json:"status_atual"`
	Applied   bool   `json:"aplicado"`
}

// ProcessCallback trata um callback do gateway. Erros de payload viram
// domain.ErrInvalidInput (responder 400 faz o gateway reentregar corrigido);
// reference desconhecida vira domain.ErrNotFound. A aplicação em si nunca
// falha por estado: transições recusadas retornam Applied=false e resposta 2xx,
// porque reprocessar a mesma entrega não mudaria nada.
func (s *WebhookService) ProcessCallback(ctx context.Context, body []byte) (*CallbackResult, error) {
	payload, err := infranfse.ParseStatusPayload(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if payload.Ref == "" {
		return nil, fmt.Errorf("%w: callback sem campo ref", domain.ErrInvalidInput)
	}
	return s.applyPayload(ctx, payload)
}

// SyncFromGateway reconsulta o status no gateway e aplica o descritor pelo
// mesmo caminho do webhook. É o plano B quando o callback não chegou.
func (s *WebhookService) SyncFromGateway(ctx context.Context, companyID, orderID string) (*entity.ServiceOrderInvoice, error) {
	rec, err := s.invoices.GetByServiceOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar registro: %w", err)
	}
	if rec == nil || rec.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if rec.Reference == "" {
		return rec, nil
	}

	company, err := s.companies.GetByID(companyID)
	if err != nil || company == nil {
		return nil, firstErr(err, domain.ErrNotFound)
	}

	payload, err := s.gateway(company.NFSEToken).Status(ctx, rec.Reference)
	if err != nil {
		return nil, fmt.Errorf("fiscal: consultar gateway: %w", err)
	}
	payload.Ref = rec.Reference

	if _, err := s.applyPayload(ctx, payload); err != nil {
		return nil, err
	}
	return s.invoices.GetByReference(ctx, rec.Reference)
}

// applyPayload traduz o descritor numa atualização e grava via escrita
// condicional. A normalização de erros roda ANTES de qualquer desvio por
// status: payloads de erro chegam com os formatos mais variados e às vezes
// com status enganoso.
func (s *WebhookService) applyPayload(ctx context.Context, p *infranfse.StatusPayload) (*CallbackResult, error) {
	errMsg, errCode := nfse.Extract(p.Raw)

	rec, err := s.invoices.GetByReference(ctx, p.Ref)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar registro: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: reference desconhecida %q", domain.ErrNotFound, p.Ref)
	}

	up, err := buildUpdate(p, errMsg, errCode, s.baseURL)
	if err != nil {
		return nil, err
	}

	applied, err := s.invoices.ApplyByReference(ctx, p.Ref, up)
	if err != nil {
		return nil, fmt.Errorf("fiscal: aplicar atualização: %w", err)
	}

	after := rec.Status
	if applied {
		after = up.Status
	}
	s.log.Info().
		Str("ref", p.Ref).
		Str("antes", rec.Status).
		Str("depois", after).
		Bool("aplicado", applied).
		Msg("nfse: atualização de status")

	return &CallbackResult{Reference: p.Ref, Before: rec.Status, After: after, Applied: applied}, nil
}

// buildUpdate decide a atualização a partir do descritor. Precedência: erro
// extraído > autorizado > rejeitado/cancelado > status declarado literal.
func buildUpdate(p *infranfse.StatusPayload, errMsg, errCode, baseURL string) (nfse.Update, error) {
	switch {
	case errMsg != "" || errCode != "":
		status := p.Status
		if status == "" || status == nfse.StatusProcessing || status == nfse.StatusSending {
			status = nfse.StatusError
		}
		return nfse.Update{Status: status, ErrorMessage: errMsg, ErrorCode: errCode}, nil

	case p.Status == nfse.StatusAuthorized:
		pdfURL, xmlURL := resolveDocumentURLs(p, baseURL)
		return nfse.Update{
			Status:           nfse.StatusAuthorized,
			Number:           p.Numero,
			VerificationCode: p.CodigoVerif,
			URL:              p.URL,
			PDFURL:           pdfURL,
			XMLURL:           xmlURL,
		}, nil

	case p.Status == nfse.StatusRejected:
		return nfse.Update{Status: p.Status, ErrorMessage: "nota rejeitada pela prefeitura"}, nil

	case p.Status == nfse.StatusCancelled:
		return nfse.Update{Status: p.Status, ErrorMessage: "nota cancelada"}, nil

	case p.Status != "":
		return nfse.Update{Status: p.Status}, nil
	}
	return nfse.Update{}, fmt.Errorf("%w: descritor sem status nem erro", domain.ErrInvalidInput)
}

// resolveDocumentURLs monta as URLs de PDF e XML do descritor, nesta ordem:
// URL explícita; caminho relativo prefixado pela base; convenção
// {base}/{ref}.{ext} como último recurso.
func resolveDocumentURLs(p *infranfse.StatusPayload, baseURL string) (pdfURL, xmlURL string) {
	pdfURL = pickDocumentURL(p.URLDanfse, p.CaminhoDanfse, baseURL, p.Ref, "pdf")
	xmlURL = pickDocumentURL(p.URLXML, p.CaminhoXML, baseURL, p.Ref, "xml")
	return pdfURL, xmlURL
}

func pickDocumentURL(explicit, path, baseURL, ref, ext string) string {
	if explicit != "" {
		return absolutize(baseURL, explicit)
	}
	if path != "" {
		return absolutize(baseURL, path)
	}
	return fmt.Sprintf("%s/%s.%s", strings.TrimRight(baseURL, "/"), ref, ext)
}

func absolutize(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

package fiscal

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/beevik/etree"

	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
	infranfse "github.com/seu-usuario/oficina-pro/internal/infrastructure/nfse"
	"github.com/seu-usuario/oficina-pro/pkg/logger"
)

// Tipos de documento da NFS-e disponíveis para download.
const (
	DocPDF = "pdf"
	DocXML = "xml"
)

// minDocumentSize é o limiar abaixo do qual um corpo não pode ser um PDF ou
// XML assinado real; corpos menores são erro disfarçado ou arquivo truncado.
const minDocumentSize = 256

// Motivos de falha na resolução de documento.
const (
	ReasonNotReady = "nao_disponivel" // o gateway ainda não gerou o arquivo
	ReasonCorrupt  = "corrompido"     // conteúdo não é o documento esperado
	ReasonGateway  = "erro_gateway"   // o gateway respondeu com erro
)

// DocumentError descreve por que o documento não pôde ser entregue, num
// formato que o handler traduz em resposta HTTP.
type DocumentError struct {
	Reason  string
	Message string
}

func (e *DocumentError) Error() string { return e.Message }

// Document é o arquivo pronto para entrega ao navegador.
type Document struct {
	Content     []byte
	ContentType string
	Filename    string
}

// DocumentService resolve e baixa os documentos (PDF/XML) de uma NFS-e
// autorizada. As URLs persistidas são tratadas como dica, nunca como verdade:
// a resolução sempre reconsulta o gateway, porque o arquivo pode ter sido
// gerado (ou movido) depois do último callback.
type DocumentService struct {
	invoices  repository.InvoiceRepository
	companies repository.CompanyRepository
	orders    repository.ServiceOrderRepository
	customers repository.CustomerRepository
	gateway   GatewayFactory
	baseURL   string
	log       *logger.Logger
}

// NewDocumentService constrói o serviço de documentos.
func NewDocumentService(
	invoices repository.InvoiceRepository,
	companies repository.CompanyRepository,
	orders repository.ServiceOrderRepository,
	customers repository.CustomerRepository,
	gateway GatewayFactory,
	baseURL string,
	log *logger.Logger,
) *DocumentService {
	return &DocumentService{
		invoices:  invoices,
		companies: companies,
		orders:    orders,
		customers: customers,
		gateway:   gateway,
		baseURL:   baseURL,
		log:       log,
	}
}

// Resolve baixa o documento pedido, validando que o conteúdo recebido é de
// fato o documento e não um erro servido com HTTP 200.
func (s *DocumentService) Resolve(ctx context.Context, companyID, orderID, kind string) (*Document, error) {
	if kind != DocPDF && kind != DocXML {
		return nil, fmt.Errorf("%w: tipo de documento inválido %q", domain.ErrInvalidInput, kind)
	}

	rec, err := s.invoices.GetByServiceOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar registro: %w", err)
	}
	if rec == nil || rec.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if rec.Status != nfse.StatusAuthorized {
		return nil, &DocumentError{Reason: ReasonNotReady, Message: "a nota ainda não foi autorizada"}
	}

	company, err := s.companies.GetByID(companyID)
	if err != nil || company == nil {
		return nil, firstErr(err, domain.ErrNotFound)
	}
	gw := s.gateway(company.NFSEToken)

	// Reconsulta o descritor atual antes de escolher a URL.
	payload, err := gw.Status(ctx, rec.Reference)
	if err != nil {
		return nil, fmt.Errorf("fiscal: consultar descritor: %w", err)
	}
	payload.Ref = rec.Reference

	pdfURL, xmlURL := resolveDocumentURLs(payload, s.baseURL)
	docURL := pdfURL
	if kind == DocXML {
		docURL = xmlURL
	}

	res, err := gw.Fetch(ctx, docURL)
	if err != nil {
		return nil, fmt.Errorf("fiscal: baixar documento: %w", err)
	}
	if err := classify(res, kind); err != nil {
		s.log.Warn().Str("ref", rec.Reference).Str("url", docURL).Err(err).Msg("documento: download recusado")
		return nil, err
	}

	return &Document{
		Content:     res.Body,
		ContentType: documentContentType(kind),
		Filename:    s.documentFilename(rec, kind),
	}, nil
}

// classify decide se o corpo baixado é o documento ou um erro disfarçado.
// A ordem importa: status HTTP, content-type JSON, farejo de HTML, tamanho
// mínimo e, para XML, boa formação.
func classify(res *infranfse.FetchResult, kind string) error {
	if res.StatusCode == http.StatusNotFound {
		return &DocumentError{Reason: ReasonNotReady, Message: "o documento ainda não está disponível no gateway"}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, code := nfse.NormalizeResponse(res.Body)
		return &DocumentError{Reason: ReasonGateway, Message: nfse.Coded(code, msg)}
	}
	if strings.Contains(strings.ToLower(res.ContentType), "json") {
		msg, code := nfse.NormalizeResponse(res.Body)
		return &DocumentError{Reason: ReasonGateway, Message: nfse.Coded(code, msg)}
	}
	if sniffHTML(res.Body) {
		// Páginas de erro do storage chegam com HTTP 200; o documento deve
		// existir mas ainda não foi publicado.
		return &DocumentError{Reason: ReasonNotReady, Message: "o documento provavelmente ainda não está pronto; tente novamente em instantes"}
	}
	if len(res.Body) < minDocumentSize {
		if msg, code := nfse.NormalizeResponse(res.Body); (msg != "" || code != "") && looksStructured(res.Body) {
			return &DocumentError{Reason: ReasonGateway, Message: nfse.Coded(code, msg)}
		}
		return &DocumentError{Reason: ReasonCorrupt, Message: "o arquivo recebido está vazio ou truncado"}
	}
	if kind == DocXML {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(res.Body); err != nil {
			return &DocumentError{Reason: ReasonCorrupt, Message: "o XML recebido não está bem formado"}
		}
	}
	return nil
}

func sniffHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 64 {
		head = head[:64]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func looksStructured(body []byte) bool {
	t := bytes.TrimSpace(body)
	return len(t) > 0 && (t[0] == '{' || t[0] == '[')
}

func documentContentType(kind string) string {
	if kind == DocXML {
		return "application/xml"
	}
	return "application/pdf"
}

// documentFilename monta um nome de arquivo amigável: número da nota (ou
// reference), nome do cliente sanitizado e extensão.
func (s *DocumentService) documentFilename(rec *entity.ServiceOrderInvoice, kind string) string {
	base := rec.Numero
	if base == "" {
		base = rec.Reference
	}

	customerName := ""
	if order, err := s.orders.GetByID(rec.ServiceOrderID); err == nil && order != nil {
		if customer, err := s.customers.GetByID(order.CustomerID); err == nil && customer != nil {
			customerName = customer.Nome
		}
	}

	name := "nfse-" + base
	if customerName != "" {
		name += "-" + customerName
	}
	return SanitizeFilename(name) + "." + kind
}

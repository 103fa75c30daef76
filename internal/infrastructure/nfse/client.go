package nfse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/seu-usuario/oficina-pro/internal/domain"
	domnfse "github.com/seu-usuario/oficina-pro/internal/domain/nfse"
)

const (
	// maxErrorBody limita quanto lemos de corpos de erro/status.
	maxErrorBody = 1 << 20 // 1 MB
	// maxDocumentBody limita o download de PDF/XML.
	maxDocumentBody = 20 << 20 // 20 MB
)

// ── Porto (interface) ─────────────────────────────────────────────────────────

// Gateway define o porto de saída para o gateway fiscal de NFS-e.
// A implementação concreta usa HTTP/JSON; para tests injeta-se um fake.
type Gateway interface {
	// Emit submete o RPS de forma síncrona. Devolve erro apenas para falha de
	// transporte antes do gateway aceitar; rejeições viram EmitResult.
	Emit(ctx context.Context, ref string, rps *RPS) (*EmitResult, error)
	// Status consulta o descritor atual da NFS-e por reference.
	Status(ctx context.Context, ref string) (*StatusPayload, error)
	// Fetch baixa o conteúdo de uma URL, decidindo a autenticação pelo host.
	Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
	// BaseURL é o endereço base do gateway (prefixo de caminhos relativos).
	BaseURL() string
	// APIHost é o host da API do gateway; só requisições a ele levam credencial.
	APIHost() string
}

// FetchResult é o conteúdo bruto de um download, ainda sem classificação.
type FetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
}

// ── Implementação HTTP ────────────────────────────────────────────────────────

// FocusClient implementa Gateway contra a API JSON do gateway.
//
// A submissão usa um http.Client puro: reenviar automaticamente uma submissão
// fiscal rejeitada reproduz a rejeição ou duplica a nota. As consultas e
// downloads, idempotentes, usam retryablehttp.
type FocusClient struct {
	baseURL string
	apiHost string
	token   string
	http    *http.Client
	retry   *retryablehttp.Client
}

// NewFocusClient constrói o cliente a partir da URL base e do token da
// empresa. O token é enviado como usuário de basic auth, senha vazia.
func NewFocusClient(baseURL, token string) *FocusClient {
	u, _ := url.Parse(baseURL)
	host := ""
	if u != nil {
		host = u.Host
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.RetryWaitMin = 500 * time.Millisecond
	retry.RetryWaitMax = 5 * time.Second
	retry.Logger = nil
	retry.HTTPClient.Timeout = 60 * time.Second

	return &FocusClient{
		baseURL: baseURL,
		apiHost: host,
		token:   token,
		http:    &http.Client{}, // timeout controlado pelo ctx do chamador
		retry:   retry,
	}
}

func (c *FocusClient) BaseURL() string { return c.baseURL }
func (c *FocusClient) APIHost() string { return c.apiHost }

// Emit faz POST {base}/v2/nfse?ref={ref}. O corpo da resposta é sempre lido
// como texto primeiro: respostas de falha não têm garantia de serem JSON
// bem-formado (já se observou HTML de erro com status 200).
func (c *FocusClient) Emit(ctx context.Context, ref string, rps *RPS) (*EmitResult, error) {
	payload, err := json.Marshal(rps)
	if err != nil {
		return nil, fmt.Errorf("nfse: serializar RPS: %w", err)
	}

	emitURL := fmt.Sprintf("%s/v2/nfse?ref=%s", c.baseURL, url.QueryEscape(ref))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, emitURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("nfse: criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.token, "")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// Deixa o chamador distinguir "abandonado pelo cliente" de rejeição:
			// o gateway pode ter aceitado o trabalho mesmo assim.
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("nfse: chamada HTTP falhou: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("nfse: ler resposta: %w", err)
	}

	return interpretEmitResponse(resp.StatusCode, rawBody), nil
}

// interpretEmitResponse classifica a resposta síncrona da submissão.
func interpretEmitResponse(statusCode int, rawBody []byte) *EmitResult {
	result := &EmitResult{HTTPStatus: statusCode, RawBody: rawBody}

	var parsed map[string]any
	_ = json.Unmarshal(rawBody, &parsed)
	if parsed != nil {
		result.Status = asString(parsed["status"])
	}

	httpOK := statusCode >= 200 && statusCode < 300
	declaredFailure := false
	if parsed != nil {
		if ok, isBool := parsed["success"].(bool); isBool && !ok {
			declaredFailure = true
		}
		if result.Status == domnfse.StatusError {
			declaredFailure = true
		}
	}

	if httpOK && !declaredFailure {
		result.Accepted = true
		return result
	}

	result.ErrorMessage, result.ErrorCode = domnfse.NormalizeResponse(rawBody)
	if result.ErrorMessage == "" && result.ErrorCode == "" {
		result.ErrorMessage = fmt.Sprintf("gateway devolveu HTTP %d sem corpo", statusCode)
	}
	return result
}

// Status consulta GET {base}/v2/nfse/{ref}. Nunca confia numa URL previamente
// cacheada: o descritor é sempre reconsultado.
func (c *FocusClient) Status(ctx context.Context, ref string) (*StatusPayload, error) {
	statusURL := fmt.Sprintf("%s/v2/nfse/%s", c.baseURL, url.PathEscape(ref))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("nfse: criar request: %w", err)
	}
	req.SetBasicAuth(c.token, "")

	resp, err := c.retry.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nfse: consultar status: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("nfse: ler resposta: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("nfse: reference %s: %w", ref, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg, errCode := domnfse.NormalizeResponse(rawBody)
		msg := domnfse.Coded(errCode, errMsg)
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("nfse: consulta de status falhou: %s", msg)
	}

	return ParseStatusPayload(rawBody)
}

// Fetch baixa a URL decidindo a autenticação pelo host: o host da API do
// gateway recebe a credencial como basic auth; um host de armazenamento
// externo (S3 e afins) rejeita o esquema inteiro, então não leva header algum.
func (c *FocusClient) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("nfse: criar request de download: %w", err)
	}
	if req.URL.Host == c.apiHost {
		req.SetBasicAuth(c.token, "")
	}

	resp, err := c.retry.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nfse: download falhou: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBody))
	if err != nil {
		return nil, fmt.Errorf("nfse: ler corpo do download: %w", err)
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

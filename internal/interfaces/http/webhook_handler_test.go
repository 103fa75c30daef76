package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-usuario/oficina-pro/internal/application/fiscal"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	apihttp "github.com/seu-usuario/oficina-pro/internal/interfaces/http"
	"github.com/seu-usuario/oficina-pro/pkg/logger"
)

// memInvoiceRepo replica a guarda condicional do repositório real apenas no
// necessário para o handler.
type memInvoiceRepo struct {
	mu    sync.Mutex
	byRef map[string]*entity.ServiceOrderInvoice
}

func (r *memInvoiceRepo) Create(inv *entity.ServiceOrderInvoice) error {
	r.byRef[inv.Reference] = inv
	return nil
}

func (r *memInvoiceRepo) GetByServiceOrderID(orderID string) (*entity.ServiceOrderInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.byRef {
		if rec.ServiceOrderID == orderID {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memInvoiceRepo) GetByReference(_ context.Context, ref string) (*entity.ServiceOrderInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.byRef[ref]
	if rec == nil {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memInvoiceRepo) Update(inv *entity.ServiceOrderInvoice) error {
	r.byRef[inv.Reference] = inv
	return nil
}

func (r *memInvoiceRepo) ApplyByReference(_ context.Context, ref string, up nfse.Update) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.byRef[ref]
	if rec == nil || !nfse.AllowsTransition(rec.Status, up.Status) {
		return false, nil
	}
	rec.Status = up.Status
	if up.Number != "" {
		rec.Numero = up.Number
	}
	rec.ErrorMessage = up.ErrorMessage
	rec.ErrorCode = up.ErrorCode
	return true, nil
}

func newWebhookApp(t *testing.T, token string) (*fiber.App, *memInvoiceRepo) {
	t.Helper()
	repo := &memInvoiceRepo{byRef: map[string]*entity.ServiceOrderInvoice{
		"ref-1": {
			ID: "inv-1", CompanyID: "emp-1", ServiceOrderID: "os-1",
			Reference: "ref-1", Status: nfse.StatusProcessing,
		},
	}}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	svc := fiscal.NewWebhookService(repo, nil, nil, "https://gateway.test", log)

	app := fiber.New()
	handler := apihttp.NewWebhookHandler(svc, token)
	app.Post("/api/webhooks/nfse", handler.Receive)
	return app, repo
}

func TestWebhook_AutorizadoAplicaEDevolve200(t *testing.T) {
	app, repo := newWebhookApp(t, "")

	req := httptest.NewRequest("POST", "/api/webhooks/nfse",
		strings.NewReader(`{"ref":"ref-1","status":"autorizado","numero":"77"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var result fiscal.CallbackResult
	require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
	assert.True(t, result.Applied)
	assert.Equal(t, nfse.StatusAuthorized, result.After)

	rec, _ := repo.GetByReference(context.Background(), "ref-1")
	assert.Equal(t, "77", rec.Numero)
}

func TestWebhook_EntregaDuplicadaAindaDevolve200(t *testing.T) {
	app, _ := newWebhookApp(t, "")
	body := `{"ref":"ref-1","status":"autorizado"}`

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/webhooks/nfse", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	}
}

func TestWebhook_SemRefDevolve400(t *testing.T) {
	app, _ := newWebhookApp(t, "")

	req := httptest.NewRequest("POST", "/api/webhooks/nfse",
		strings.NewReader(`{"status":"autorizado"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestWebhook_RefDesconhecidaDevolve404(t *testing.T) {
	app, _ := newWebhookApp(t, "")

	req := httptest.NewRequest("POST", "/api/webhooks/nfse",
		strings.NewReader(`{"ref":"ref-x","status":"autorizado"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestWebhook_TokenCompartilhadoObrigatorioQuandoConfigurado(t *testing.T) {
	app, _ := newWebhookApp(t, "segredo")

	req := httptest.NewRequest("POST", "/api/webhooks/nfse",
		strings.NewReader(`{"ref":"ref-1","status":"autorizado"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	req = httptest.NewRequest("POST", "/api/webhooks/nfse?token=segredo",
		strings.NewReader(`{"ref":"ref-1","status":"autorizado"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

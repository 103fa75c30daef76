package fiscal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-usuario/oficina-pro/internal/application/fiscal"
	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	infranfse "github.com/seu-usuario/oficina-pro/internal/infrastructure/nfse"
)

const testBaseURL = "https://gateway.test"

func newWebhookService(repo *fakeInvoiceRepo, gw infranfse.Gateway) *fiscal.WebhookService {
	factory := func(string) infranfse.Gateway { return gw }
	return fiscal.NewWebhookService(repo, newFakeCompanyRepo(validCompany()), factory, testBaseURL, testLogger())
}

func processingRecord() *entity.ServiceOrderInvoice {
	return &entity.ServiceOrderInvoice{
		ID: "inv-1", CompanyID: "emp-1", ServiceOrderID: "os-1",
		Reference: "ref-1", Status: nfse.StatusProcessing,
	}
}

func TestProcessCallback_AutorizadoPreencheCamposEDerivaURLs(t *testing.T) {
	repo := newFakeInvoiceRepo(processingRecord())
	svc := newWebhookService(repo, nil)

	body := []byte(`{"ref":"ref-1","status":"autorizado","numero":123,"codigo_verificacao":"ABC9","caminho_danfse":"danfse/ref-1.pdf"}`)
	res, err := svc.ProcessCallback(context.Background(), body)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, nfse.StatusProcessing, res.Before)
	assert.Equal(t, nfse.StatusAuthorized, res.After)

	rec, _ := repo.GetByReference(context.Background(), "ref-1")
	assert.Equal(t, "123", rec.Numero)
	assert.Equal(t, "ABC9", rec.CodigoVerif)
	assert.Equal(t, testBaseURL+"/danfse/ref-1.pdf", rec.PDFURL)
	// Sem URL nem caminho de XML, cai na convenção {base}/{ref}.xml.
	assert.Equal(t, testBaseURL+"/ref-1.xml", rec.XMLURL)
}

func TestProcessCallback_ErroExtraidoAntesDoDesvioPorStatus(t *testing.T) {
	// Payload de erro com status enganoso: a normalização decide, não o status.
	repo := newFakeInvoiceRepo(processingRecord())
	svc := newWebhookService(repo, nil)

	body := []byte(`{"ref":"ref-1","status":"processando_autorizacao","erro":{"codigo":"E101","mensagem":"Inscrição municipal não confere"}}`)
	res, err := svc.ProcessCallback(context.Background(), body)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, nfse.StatusError, res.After)

	rec, _ := repo.GetByReference(context.Background(), "ref-1")
	assert.Equal(t, "Inscrição municipal não confere", rec.ErrorMessage)
	assert.Equal(t, "E101", rec.ErrorCode)
}

func TestProcessCallback_ProcessandoAtrasadoNaoRebaixaAutorizado(t *testing.T) {
	rec := processingRecord()
	rec.Status = nfse.StatusAuthorized
	rec.Numero = "55"
	repo := newFakeInvoiceRepo(rec)
	svc := newWebhookService(repo, nil)

	res, err := svc.ProcessCallback(context.Background(), []byte(`{"ref":"ref-1","status":"processando_autorizacao"}`))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, nfse.StatusAuthorized, res.After)

	got, _ := repo.GetByReference(context.Background(), "ref-1")
	assert.Equal(t, "55", got.Numero)
}

func TestProcessCallback_CancelamentoSaiDoAutorizado(t *testing.T) {
	rec := processingRecord()
	rec.Status = nfse.StatusAuthorized
	repo := newFakeInvoiceRepo(rec)
	svc := newWebhookService(repo, nil)

	res, err := svc.ProcessCallback(context.Background(), []byte(`{"ref":"ref-1","status":"cancelado"}`))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, nfse.StatusCancelled, res.After)
}

func TestProcessCallback_EntregaDuplicadaEhInofensiva(t *testing.T) {
	repo := newFakeInvoiceRepo(processingRecord())
	svc := newWebhookService(repo, nil)
	body := []byte(`{"ref":"ref-1","status":"autorizado","numero":"7"}`)

	first, err := svc.ProcessCallback(context.Background(), body)
	require.NoError(t, err)
	assert.True(t, first.Applied)

	second, err := svc.ProcessCallback(context.Background(), body)
	require.NoError(t, err)
	assert.False(t, second.Applied, "reaplicar autorizado sobre autorizado é recusado pela guarda")
	assert.Equal(t, nfse.StatusAuthorized, second.After)
}

func TestProcessCallback_SemRefEhEntradaInvalida(t *testing.T) {
	svc := newWebhookService(newFakeInvoiceRepo(), nil)

	_, err := svc.ProcessCallback(context.Background(), []byte(`{"status":"autorizado"}`))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.ProcessCallback(context.Background(), []byte(`nao-e-json`))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestProcessCallback_RefDesconhecidaEhNotFound(t *testing.T) {
	svc := newWebhookService(newFakeInvoiceRepo(), nil)

	_, err := svc.ProcessCallback(context.Background(), []byte(`{"ref":"ref-x","status":"autorizado"}`))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSyncFromGateway_ConvergeQuandoOWebhookSePerdeu(t *testing.T) {
	repo := newFakeInvoiceRepo(processingRecord())
	gw := &fakeGateway{
		statusFn: func(_ context.Context, ref string) (*infranfse.StatusPayload, error) {
			return infranfse.ParseStatusPayload([]byte(`{"status":"autorizado","numero":"99","codigo_verificacao":"ZZ1"}`))
		},
	}
	svc := newWebhookService(repo, gw)

	rec, err := svc.SyncFromGateway(context.Background(), "emp-1", "os-1")
	require.NoError(t, err)
	assert.Equal(t, nfse.StatusAuthorized, rec.Status)
	assert.Equal(t, "99", rec.Numero)
	assert.Equal(t, "ZZ1", rec.CodigoVerif)
}

func TestSyncFromGateway_OrdemDeOutraEmpresaEhNotFound(t *testing.T) {
	repo := newFakeInvoiceRepo(processingRecord())
	svc := newWebhookService(repo, nil)

	_, err := svc.SyncFromGateway(context.Background(), "emp-2", "os-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

package fiscal_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-usuario/oficina-pro/internal/application/fiscal"
	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	infranfse "github.com/seu-usuario/oficina-pro/internal/infrastructure/nfse"
)

type emissionEnv struct {
	svc      *fiscal.EmissionService
	invoices *fakeInvoiceRepo
	gateway  *fakeGateway
}

func newEmissionEnv(t *testing.T, appEnv string) *emissionEnv {
	t.Helper()
	orders, _ := newOrderWithService("140113")
	companies := newFakeCompanyRepo(validCompany())
	customers := newFakeCustomerRepo(validCustomer())
	invoices := newFakeInvoiceRepo()
	gw := &fakeGateway{}

	validator := fiscal.NewValidator(companies, customers, orders)
	svc := fiscal.NewEmissionService(
		validator, companies, customers, orders, invoices,
		func(token string) infranfse.Gateway {
			assert.Equal(t, "token-emp-1", token)
			return gw
		},
		appEnv, testLogger(),
	)
	return &emissionEnv{svc: svc, invoices: invoices, gateway: gw}
}

func (e *emissionEnv) record(t *testing.T) *entity.ServiceOrderInvoice {
	t.Helper()
	rec, err := e.invoices.GetByServiceOrderID("os-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func TestEmit_AmbienteDevSimulaAutorizacao(t *testing.T) {
	env := newEmissionEnv(t, "dev")

	issues, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	require.NoError(t, err)
	assert.Empty(t, issues)

	rec := env.record(t)
	assert.Equal(t, nfse.StatusAuthorized, rec.Status)
	assert.NotEmpty(t, rec.Reference)

	view, ok := env.svc.Attempt("emp-1", "os-1")
	require.True(t, ok)
	assert.Equal(t, fiscal.PhaseCompleted, view.Phase)
}

func TestEmit_PendenciaBloqueanteRecusaLocalmente(t *testing.T) {
	orders, _ := newOrderWithService("140113")
	company := validCompany()
	company.NFSEToken = ""
	validator := fiscal.NewValidator(newFakeCompanyRepo(company), newFakeCustomerRepo(validCustomer()), orders)
	invoices := newFakeInvoiceRepo()

	svc := fiscal.NewEmissionService(
		validator, newFakeCompanyRepo(company), newFakeCustomerRepo(validCustomer()), orders, invoices,
		func(string) infranfse.Gateway {
			t.Fatal("o gateway não pode ser chamado com pendência bloqueante")
			return nil
		},
		"producao", testLogger(),
	)

	issues, err := svc.Emit(context.Background(), "emp-1", "os-1")
	assert.True(t, errors.Is(err, domain.ErrEmissionBlocked))
	assert.False(t, nfse.CanEmit(issues))

	rec, _ := invoices.GetByServiceOrderID("os-1")
	assert.Nil(t, rec, "nada é persistido quando a emissão é recusada")
}

func TestEmit_AceitacaoPersisteProcessandoETrackerConverge(t *testing.T) {
	env := newEmissionEnv(t, "producao")
	env.gateway.emitFn = func(_ context.Context, ref string, rps *infranfse.RPS) (*infranfse.EmitResult, error) {
		assert.Equal(t, "12345678000190", rps.Prestador.CNPJ)
		assert.Equal(t, "140113", rps.Servico.ItemListaServico)
		assert.InDelta(t, 150.0, rps.Servico.ValorServicos, 0.001)
		return &infranfse.EmitResult{Accepted: true, Status: nfse.StatusProcessing, HTTPStatus: 202}, nil
	}

	_, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	require.NoError(t, err)

	rec := env.record(t)
	assert.Equal(t, nfse.StatusProcessing, rec.Status)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.False(t, rec.UpdatedAt.IsZero())

	// O webhook chega e o tracker converge a tentativa para concluído.
	_, err = env.invoices.ApplyByReference(context.Background(), rec.Reference, nfse.Update{Status: nfse.StatusAuthorized, Number: "10"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		view, ok := env.svc.Attempt("emp-1", "os-1")
		return ok && view.Phase == fiscal.PhaseCompleted
	}, 10*time.Second, 50*time.Millisecond)
}

func TestEmit_RejeicaoDoGatewayPersisteErroNormalizado(t *testing.T) {
	env := newEmissionEnv(t, "producao")
	env.gateway.emitFn = func(context.Context, string, *infranfse.RPS) (*infranfse.EmitResult, error) {
		return &infranfse.EmitResult{
			Accepted: false, ErrorMessage: "CNPJ inválido", ErrorCode: "E42", HTTPStatus: 422,
		}, nil
	}

	_, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	require.NoError(t, err, "rejeição do gateway é dado, não erro")

	// Mensagem e código ficam separados no registro; o código só entra na
	// formatação para o usuário, uma única vez.
	rec := env.record(t)
	assert.Equal(t, nfse.StatusError, rec.Status)
	assert.Equal(t, "CNPJ inválido", rec.ErrorMessage)
	assert.Equal(t, "E42", rec.ErrorCode)

	view, ok := env.svc.Attempt("emp-1", "os-1")
	require.True(t, ok)
	assert.Equal(t, fiscal.PhaseError, view.Phase)
	assert.Equal(t, "[E42] CNPJ inválido", view.Message)
}

func TestEmit_TimeoutViraProcessandoComMensagemPropria(t *testing.T) {
	env := newEmissionEnv(t, "producao")
	env.gateway.emitFn = func(ctx context.Context, _ string, _ *infranfse.RPS) (*infranfse.EmitResult, error) {
		return nil, context.DeadlineExceeded
	}

	_, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	require.NoError(t, err, "timeout não é falha: a prefeitura pode só estar lenta")

	rec := env.record(t)
	assert.Equal(t, nfse.StatusProcessing, rec.Status)

	view, ok := env.svc.Attempt("emp-1", "os-1")
	require.True(t, ok)
	assert.Equal(t, fiscal.PhaseProcessing, view.Phase)
	assert.Contains(t, view.Message, "processando")
}

func TestEmit_FalhaDeTransporteDevolveErro(t *testing.T) {
	env := newEmissionEnv(t, "producao")
	env.gateway.emitFn = func(context.Context, string, *infranfse.RPS) (*infranfse.EmitResult, error) {
		return nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	}

	_, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	require.Error(t, err)

	view, ok := env.svc.Attempt("emp-1", "os-1")
	require.True(t, ok)
	assert.Equal(t, fiscal.PhaseError, view.Phase)
}

func TestEmit_NotaJaAutorizadaEhConflito(t *testing.T) {
	env := newEmissionEnv(t, "producao")
	env.invoices.Create(&entity.ServiceOrderInvoice{
		ID: "inv-1", CompanyID: "emp-1", ServiceOrderID: "os-1",
		Reference: "ref-1", Status: nfse.StatusAuthorized,
	})

	_, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestEmit_ReemissaoAposErroReutilizaAReference(t *testing.T) {
	env := newEmissionEnv(t, "producao")
	env.invoices.Create(&entity.ServiceOrderInvoice{
		ID: "inv-1", CompanyID: "emp-1", ServiceOrderID: "os-1",
		Reference: "ref-fixa", Status: nfse.StatusError, ErrorMessage: "CNPJ inválido",
	})
	env.gateway.emitFn = func(_ context.Context, ref string, _ *infranfse.RPS) (*infranfse.EmitResult, error) {
		assert.Equal(t, "ref-fixa", ref, "a reference é a chave de idempotência e não muda na reemissão")
		return &infranfse.EmitResult{Accepted: true, HTTPStatus: 202}, nil
	}

	_, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	require.NoError(t, err)

	rec := env.record(t)
	assert.Equal(t, "ref-fixa", rec.Reference)
	assert.Equal(t, nfse.StatusProcessing, rec.Status)
	assert.Empty(t, rec.ErrorMessage, "erro anterior é limpo na reemissão")
	assert.False(t, rec.UpdatedAt.IsZero(), "a reemissão atualiza o timestamp do registro")
}

func TestEmit_DuplicadaDuranteProcessamentoNaoDerrubaOTracker(t *testing.T) {
	env := newEmissionEnv(t, "producao")
	env.gateway.emitFn = func(context.Context, string, *infranfse.RPS) (*infranfse.EmitResult, error) {
		return &infranfse.EmitResult{Accepted: true, HTTPStatus: 202}, nil
	}

	_, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	require.NoError(t, err)

	// Com a tentativa em processando, uma segunda emissão é conflito e não
	// pode encostar na tentativa viva.
	_, err = env.svc.Emit(context.Background(), "emp-1", "os-1")
	assert.True(t, errors.Is(err, domain.ErrConflict))

	view, ok := env.svc.Attempt("emp-1", "os-1")
	require.True(t, ok)
	assert.Equal(t, fiscal.PhaseProcessing, view.Phase)

	// A autorização chega depois e o tracker original ainda converge.
	rec := env.record(t)
	_, err = env.invoices.ApplyByReference(context.Background(), rec.Reference, nfse.Update{Status: nfse.StatusAuthorized, Number: "77"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		view, ok := env.svc.Attempt("emp-1", "os-1")
		return ok && view.Phase == fiscal.PhaseCompleted
	}, 10*time.Second, 50*time.Millisecond)
}

func TestEmit_OutraEmpresaNaoEnxergaNemDerrubaATentativa(t *testing.T) {
	env := newEmissionEnv(t, "producao")
	env.gateway.emitFn = func(context.Context, string, *infranfse.RPS) (*infranfse.EmitResult, error) {
		return &infranfse.EmitResult{Accepted: true, HTTPStatus: 202}, nil
	}

	_, err := env.svc.Emit(context.Background(), "emp-1", "os-1")
	require.NoError(t, err)

	_, err = env.svc.Emit(context.Background(), "emp-2", "os-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "ordem de outra empresa não existe para o chamador")

	_, ok := env.svc.Attempt("emp-2", "os-1")
	assert.False(t, ok, "a tentativa não é visível para outra empresa")

	view, ok := env.svc.Attempt("emp-1", "os-1")
	require.True(t, ok)
	assert.Equal(t, fiscal.PhaseProcessing, view.Phase, "a tentativa da dona da ordem segue intacta")
}

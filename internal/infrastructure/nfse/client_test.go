package nfse_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infranfse "github.com/seu-usuario/oficina-pro/internal/infrastructure/nfse"
)

// ──────────────────────────────────────────────────────────────────────────────
// Autenticação por host: requisições ao host da API do gateway levam a
// credencial como basic auth; um host de armazenamento externo não leva header
// algum (o backend de storage rejeita o esquema inteiro).
// ──────────────────────────────────────────────────────────────────────────────

func TestFetch_HostDoGatewayLevaBasicAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 conteudo"))
	}))
	defer srv.Close()

	client := infranfse.NewFocusClient(srv.URL, "token-da-empresa")
	res, err := client.Fetch(context.Background(), srv.URL+"/notas/ref-1.pdf")
	require.NoError(t, err)

	assert.NotEmpty(t, gotAuth, "host da API deve receber Authorization")
	assert.Contains(t, gotAuth, "Basic ")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestFetch_HostDeStorageNaoLevaAuth(t *testing.T) {
	var gotAuth string
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("%PDF-1.4 conteudo"))
	}))
	defer storage.Close()

	// Cliente configurado para um host de gateway diferente do storage.
	client := infranfse.NewFocusClient("https://homologacao.focusnfe.com.br", "token-da-empresa")
	res, err := client.Fetch(context.Background(), storage.URL+"/bucket/ref-1.pdf")
	require.NoError(t, err)

	assert.Empty(t, gotAuth, "host de storage não deve receber Authorization")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Interpretação da resposta síncrona de emissão.
// ──────────────────────────────────────────────────────────────────────────────

func emitAgainst(t *testing.T, handler http.HandlerFunc) (*infranfse.EmitResult, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	defer srv.Close()
	client := infranfse.NewFocusClient(srv.URL, "tok")
	return client.Emit(context.Background(), "ref-abc", &infranfse.RPS{})
}

func TestEmit_AceitaComStatusProcessando(t *testing.T) {
	res, err := emitAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ref-abc", r.URL.Query().Get("ref"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ref":"ref-abc","status":"processando_autorizacao"}`))
	})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, "processando_autorizacao", res.Status)
}

func TestEmit_HTTPDeErroNormalizaOCorpo(t *testing.T) {
	res, err := emitAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"erro":{"codigo":"E42","mensagem":"CNPJ inválido"}}`))
	})
	require.NoError(t, err, "rejeição do gateway não é erro de transporte")
	assert.False(t, res.Accepted)
	assert.Equal(t, "CNPJ inválido", res.ErrorMessage, "mensagem e código chegam separados")
	assert.Equal(t, "E42", res.ErrorCode)
}

func TestEmit_SuccessFalseComHTTP200(t *testing.T) {
	res, err := emitAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"mensagem":"token não autorizado"}`))
	})
	require.NoError(t, err)
	assert.False(t, res.Accepted, "success:false sinaliza falha mesmo com HTTP 200")
	assert.Contains(t, res.ErrorMessage, "token não autorizado")
}

func TestEmit_CorpoNaoJSONViraMensagemBruta(t *testing.T) {
	res, err := emitAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>Bad Gateway</html>"))
	})
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Contains(t, res.ErrorMessage, "Bad Gateway",
		"resposta não-JSON nunca é descartada silenciosamente")
}

func TestStatus_DescritorCompleto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/nfse/ref-ok", r.URL.Path)
		_, _ = w.Write([]byte(`{"ref":"ref-ok","status":"autorizado","numero":123,
			"codigo_verificacao":"ABCD-1234","url_danfse":"https://storage/notas/ref-ok.pdf",
			"caminho_xml_nota_fiscal":"/arquivos/ref-ok.xml"}`))
	}))
	defer srv.Close()

	client := infranfse.NewFocusClient(srv.URL, "tok")
	p, err := client.Status(context.Background(), "ref-ok")
	require.NoError(t, err)

	assert.Equal(t, "autorizado", p.Status)
	assert.Equal(t, "123", p.Numero, "numero numérico é convertido para string")
	assert.Equal(t, "ABCD-1234", p.CodigoVerif)
	assert.Equal(t, "/arquivos/ref-ok.xml", p.CaminhoXML)
	assert.NotNil(t, p.Raw)
}

package nfse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
)

func TestIsTerminal(t *testing.T) {
	for _, s := range []string{nfse.StatusAuthorized, nfse.StatusError, nfse.StatusRejected, nfse.StatusCancelled} {
		assert.True(t, nfse.IsTerminal(s), s)
	}
	for _, s := range []string{nfse.StatusUnset, nfse.StatusSending, nfse.StatusProcessing} {
		assert.False(t, nfse.IsTerminal(s), s)
	}
}

// Nota autorizada nunca é rebaixada: nem por erro, nem por um
// "processando_autorizacao" entregue com atraso. Só cancelamento é aceito.
func TestAllowsTransition_AutorizadoNaoEhRebaixado(t *testing.T) {
	assert.True(t, nfse.AllowsTransition(nfse.StatusAuthorized, nfse.StatusCancelled))

	for _, next := range []string{nfse.StatusProcessing, nfse.StatusError, nfse.StatusRejected, nfse.StatusSending, nfse.StatusAuthorized} {
		assert.False(t, nfse.AllowsTransition(nfse.StatusAuthorized, next),
			"autorizado -> %s deve ser bloqueado", next)
	}
}

func TestAllowsTransition_TerminalNaoVoltaParaIntermediario(t *testing.T) {
	for _, cur := range []string{nfse.StatusError, nfse.StatusRejected, nfse.StatusCancelled} {
		assert.False(t, nfse.AllowsTransition(cur, nfse.StatusProcessing), cur)
		assert.False(t, nfse.AllowsTransition(cur, nfse.StatusSending), cur)
	}
}

func TestAllowsTransition_ErroPodeVirarAutorizado(t *testing.T) {
	// O gateway pode reprocessar internamente e autorizar depois de reportar erro.
	assert.True(t, nfse.AllowsTransition(nfse.StatusError, nfse.StatusAuthorized))
	assert.True(t, nfse.AllowsTransition(nfse.StatusRejected, nfse.StatusAuthorized))
}

func TestAllowsTransition_EstadosNaoTerminaisAceitamTudo(t *testing.T) {
	for _, cur := range []string{nfse.StatusUnset, nfse.StatusSending, nfse.StatusProcessing} {
		for _, next := range []string{nfse.StatusProcessing, nfse.StatusAuthorized, nfse.StatusError, nfse.StatusCancelled} {
			assert.True(t, nfse.AllowsTransition(cur, next), "%s -> %s", cur, next)
		}
	}
}

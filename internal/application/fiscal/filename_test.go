package fiscal_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seu-usuario/oficina-pro/internal/application/fiscal"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"acentos removidos", "nfse-123-José Conceição", "nfse-123-Jose-Conceicao"},
		{"caracteres proibidos viram hifen", `nota:fiscal/2026*"?`, "nota-fiscal-2026"},
		{"hifens colapsados e aparados", "--a  b--", "a-b"},
		{"vazio vira padrao", "///", "documento"},
		{"pontos e underscores preservados", "nfse_123.v2", "nfse_123.v2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fiscal.SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilename_LimitaTamanho(t *testing.T) {
	got := fiscal.SanitizeFilename(strings.Repeat("a", 300))
	assert.LessOrEqual(t, len(got), 80)
	assert.NotEmpty(t, got)
}

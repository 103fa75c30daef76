package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seu-usuario/oficina-pro/pkg/config"
)

func TestNFSEConfig_CredentialForPreferTokenDaEmpresa(t *testing.T) {
	cfg := config.NFSEConfig{Token: "token-global"}

	assert.Equal(t, "token-emp", cfg.CredentialFor("token-emp"))
	assert.Equal(t, "token-global", cfg.CredentialFor(""),
		"sem token próprio, a empresa usa o token global da instância")

	vazio := config.NFSEConfig{}
	assert.Empty(t, vazio.CredentialFor(""))
}

func TestNFSEConfig_ResolveBaseURLPorAmbiente(t *testing.T) {
	assert.Equal(t, "https://api.focusnfe.com.br",
		config.NFSEConfig{AppEnv: "producao"}.ResolveBaseURL())
	assert.Equal(t, "https://homologacao.focusnfe.com.br",
		config.NFSEConfig{AppEnv: "homologacao"}.ResolveBaseURL())
	assert.Equal(t, "https://gw.interno/api",
		config.NFSEConfig{AppEnv: "producao", BaseURL: "https://gw.interno/api/"}.ResolveBaseURL(),
		"BaseURL explícita vence o ambiente e perde a barra final")
}

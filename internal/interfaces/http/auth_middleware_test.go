package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/seu-usuario/oficina-pro/internal/interfaces/http"
	"github.com/seu-usuario/oficina-pro/pkg/jwt"
)

const testSecret = "segredo-de-teste"

func newProtectedApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	chain := append([]fiber.Handler{apihttp.AuthMiddleware(testSecret)}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apihttp.GetUserID(c),
			"company_id": apihttp.GetCompanyID(c),
			"role":       apihttp.GetRole(c),
		})
	})
	app.Get("/protegido", chain...)
	return app
}

func TestAuthMiddleware_SemHeaderDevolve401(t *testing.T) {
	app := newProtectedApp()

	res, err := app.Test(httptest.NewRequest("GET", "/protegido", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestAuthMiddleware_TokenMalFormadoDevolve401(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protegido", nil)
	req.Header.Set("Authorization", "Basic abc123")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestAuthMiddleware_TokenInvalidoDevolve401(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protegido", nil)
	req.Header.Set("Authorization", "Bearer nao-e-um-jwt")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestAuthMiddleware_TokenValidoPopulaLocals(t *testing.T) {
	app := newProtectedApp()

	token, err := jwt.Generate(testSecret, "user-1", "emp-1", "admin", "oficina-pro", 10)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestRequireRole_PapelSemPermissaoDevolve403(t *testing.T) {
	app := newProtectedApp(apihttp.RequireRole("admin", "atendente"))

	token, err := jwt.Generate(testSecret, "user-1", "emp-1", "mecanico", "oficina-pro", 10)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
}

func TestRequireRole_PapelPermitidoPassa(t *testing.T) {
	app := newProtectedApp(apihttp.RequireRole("admin", "atendente"))

	token, err := jwt.Generate(testSecret, "user-1", "emp-1", "atendente", "oficina-pro", 10)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

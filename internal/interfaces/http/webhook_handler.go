package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/oficina-pro/internal/application/dto"
	"github.com/seu-usuario/oficina-pro/internal/application/fiscal"
	"github.com/seu-usuario/oficina-pro/internal/domain"
)

// WebhookHandler recebe os callbacks de status do gateway fiscal.
type WebhookHandler struct {
	webhooks *fiscal.WebhookService
	token    string // token compartilhado configurado no gateway; vazio desativa
}

// NewWebhookHandler constrói o handler.
func NewWebhookHandler(webhooks *fiscal.WebhookService, token string) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, token: token}
}

// Receive POST /api/webhooks/nfse
//
// Respostas seguem o contrato de reentrega do gateway: 400 faz reenviar
// corrigido, 404 marca reference desconhecida, 200 confirma o processamento
// mesmo quando a transição foi recusada pela guarda (reentregar não mudaria
// nada).
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	if h.token != "" && c.Query("token") != h.token {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token do webhook inválido"})
	}

	result, err := h.webhooks.ProcessCallback(c.Context(), c.Body())
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(result)
}

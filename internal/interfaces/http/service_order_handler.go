package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/oficina-pro/internal/application/dto"
	"github.com/seu-usuario/oficina-pro/internal/application/usecase"
)

// ServiceOrderHandler trata as requisições HTTP de ordens de serviço.
type ServiceOrderHandler struct {
	uc      *usecase.ServiceOrderUseCase
	receipt *usecase.ReceiptUseCase
}

// NewServiceOrderHandler constrói o handler.
func NewServiceOrderHandler(uc *usecase.ServiceOrderUseCase, receipt *usecase.ReceiptUseCase) *ServiceOrderHandler {
	return &ServiceOrderHandler{uc: uc, receipt: receipt}
}

// Create POST /api/service-orders
func (h *ServiceOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateServiceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	order, err := h.uc.Create(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// List GET /api/service-orders?limit=20&offset=0
func (h *ServiceOrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginação inválida"})
	}
	list, err := h.uc.List(GetCompanyID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/service-orders/:id
func (h *ServiceOrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.GetByID(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// Update PUT /api/service-orders/:id
func (h *ServiceOrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateServiceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	order, err := h.uc.Update(GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// PDF GET /api/service-orders/:id/pdf — comprovante da ordem, não a NFS-e.
func (h *ServiceOrderHandler) PDF(c *fiber.Ctx) error {
	content, filename, err := h.receipt.Generate(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/oficina-pro/internal/application/dto"
	"github.com/seu-usuario/oficina-pro/internal/application/usecase"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
)

// CompanyHandler trata o cadastro da oficina.
type CompanyHandler struct {
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler constrói o handler.
func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Create POST /api/companies (público: primeiro passo do onboarding)
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.RazaoSocial == "" || in.CNPJ == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "razao_social e cnpj são obrigatórios"})
	}
	company, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

// Me GET /api/companies/me
func (h *CompanyHandler) Me(c *fiber.Ctx) error {
	company, err := h.uc.GetByID(GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

// UpdateMe PUT /api/companies/me (só admin: inclui token do gateway fiscal)
func (h *CompanyHandler) UpdateMe(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.NFSEToken != nil && GetRole(c) != entity.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "só admin altera o token fiscal"})
	}
	company, err := h.uc.Update(GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

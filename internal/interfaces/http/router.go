package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/oficina-pro/internal/application/auth"
	"github.com/seu-usuario/oficina-pro/internal/application/fiscal"
	"github.com/seu-usuario/oficina-pro/internal/application/usecase"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	CompanyUC      *usecase.CompanyUseCase
	CustomerUC     *usecase.CustomerUseCase
	VehicleUC      *usecase.VehicleUseCase
	ServiceOrderUC *usecase.ServiceOrderUseCase
	ReceiptUC      *usecase.ReceiptUseCase
	AuthUC         *auth.AuthUseCase

	Validator    *fiscal.Validator
	Emission     *fiscal.EmissionService
	Webhooks     *fiscal.WebhookService
	Documents    *fiscal.DocumentService
	InvoiceRepo  repository.InvoiceRepository
	WebhookToken string

	JWTSecret string
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Webhook do gateway fiscal (público; autentica por token compartilhado)
	webhookHandler := NewWebhookHandler(deps.Webhooks, deps.WebhookToken)
	api.Post("/webhooks/nfse", webhookHandler.Receive)

	// Onboarding da oficina (público)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Post("/companies", companyHandler.Create)

	// Rotas protegidas (exigem Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Empresa do chamador
	protected.Get("/companies/me", companyHandler.Me)
	protected.Put("/companies/me", companyHandler.UpdateMe)

	// Clientes
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	// Veículos
	vehicles := protected.Group("/vehicles")
	vehicleHandler := NewVehicleHandler(deps.VehicleUC)
	vehicles.Post("/", vehicleHandler.Create)
	vehicles.Get("/", vehicleHandler.List)
	vehicles.Get("/:id", vehicleHandler.GetByID)
	vehicles.Put("/:id", vehicleHandler.Update)
	vehicles.Delete("/:id", vehicleHandler.Delete)

	// Ordens de serviço
	orders := protected.Group("/service-orders")
	orderHandler := NewServiceOrderHandler(deps.ServiceOrderUC, deps.ReceiptUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Get("/:id/pdf", orderHandler.PDF)

	// NFS-e da ordem. Emissão restrita a admin e atendente: mecânico não emite
	// documento fiscal.
	fiscalHandler := NewFiscalHandler(deps.Validator, deps.Emission, deps.Webhooks, deps.Documents, deps.InvoiceRepo)
	orders.Get("/:id/nfse/validacao", fiscalHandler.Validate)
	orders.Post("/:id/nfse", RequireRole(entity.RoleAdmin, entity.RoleAtendente), fiscalHandler.Emit)
	orders.Get("/:id/nfse", fiscalHandler.Status)
	orders.Get("/:id/nfse/emissao", fiscalHandler.Attempt)
	orders.Get("/:id/nfse/arquivo", fiscalHandler.Document)
}

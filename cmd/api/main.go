package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/seu-usuario/oficina-pro/internal/application/auth"
	"github.com/seu-usuario/oficina-pro/internal/application/fiscal"
	"github.com/seu-usuario/oficina-pro/internal/application/usecase"
	infranfse "github.com/seu-usuario/oficina-pro/internal/infrastructure/nfse"
	infrapdf "github.com/seu-usuario/oficina-pro/internal/infrastructure/pdf"
	"github.com/seu-usuario/oficina-pro/internal/infrastructure/postgres"
	httpRouter "github.com/seu-usuario/oficina-pro/internal/interfaces/http"
	"github.com/seu-usuario/oficina-pro/pkg/config"
	"github.com/seu-usuario/oficina-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("nfse_env", cfg.NFSE.AppEnv).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	orderRepo := postgres.NewServiceOrderRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	companyUC := usecase.NewCompanyUseCase(companyRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	vehicleUC := usecase.NewVehicleUseCase(vehicleRepo, customerRepo)
	orderUC := usecase.NewServiceOrderUseCase(orderRepo, customerRepo, vehicleRepo, txRunner)
	receiptUC := usecase.NewReceiptUseCase(
		orderRepo, companyRepo, customerRepo, vehicleRepo, invoiceRepo,
		infrapdf.NewMarotoReceiptGenerator(),
	)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Ciclo da NFS-e: o cliente do gateway é construído por empresa, porque a
	// credencial (token) é da empresa, não da instalação.
	nfseBaseURL := cfg.NFSE.ResolveBaseURL()
	gatewayFactory := func(token string) infranfse.Gateway {
		return infranfse.NewFocusClient(nfseBaseURL, cfg.NFSE.CredentialFor(token))
	}

	validator := fiscal.NewValidator(companyRepo, customerRepo, orderRepo)
	emission := fiscal.NewEmissionService(
		validator, companyRepo, customerRepo, orderRepo, invoiceRepo,
		gatewayFactory, cfg.NFSE.AppEnv, log,
	)
	webhooks := fiscal.NewWebhookService(invoiceRepo, companyRepo, gatewayFactory, nfseBaseURL, log)
	documents := fiscal.NewDocumentService(
		invoiceRepo, companyRepo, orderRepo, customerRepo,
		gatewayFactory, nfseBaseURL, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI em local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Oficina Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:      companyUC,
		CustomerUC:     customerUC,
		VehicleUC:      vehicleUC,
		ServiceOrderUC: orderUC,
		ReceiptUC:      receiptUC,
		AuthUC:         authUC,
		Validator:      validator,
		Emission:       emission,
		Webhooks:       webhooks,
		Documents:      documents,
		InvoiceRepo:    invoiceRepo,
		WebhookToken:   cfg.NFSE.WebhookToken,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/auth"
	"github.com/jhoicas/erp-core/internal/application/authz"
	"github.com/jhoicas/erp-core/internal/application/modules"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/application/usecase"
	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/erp-core/internal/interfaces/http"
	"github.com/jhoicas/erp-core/internal/modules/contacts"
	"github.com/jhoicas/erp-core/internal/modules/settings"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	landlordPool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL (landlord)")
	}
	defer landlordPool.Close()

	tenantRepo := postgres.NewTenantRepository(landlordPool)
	stores := postgres.NewTenantStores(cfg)
	defer stores.Close()

	observer := audit.NewLogObserver(log.Zerolog())

	registry := modules.NewRegistry(stores, cfg.Modules.CacheTTL)
	registry.MustRegister(contacts.Module{}, settings.Module{})
	moduleSvc := modules.NewService(registry, stores, observer)

	sequences := sequence.NewGenerator(stores, sequence.Config{
		MaxAttempts:  cfg.Sequence.MaxAttempts,
		RetryBackoff: cfg.Sequence.RetryBackoff,
	})
	resolver := authz.NewResolver(stores)

	authUC := auth.NewAuthUseCase(stores, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(stores, observer)
	contactUC := usecase.NewContactUseCase(stores, sequences, observer)
	roleUC := usecase.NewRoleUseCase(stores, observer)
	userUC := usecase.NewUserUseCase(stores, observer)
	tenantUC := usecase.NewTenantUseCase(tenantRepo, observer)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpRouter.NewMetrics(promReg)

	app.Use(recover.New())
	app.Use(metrics.Middleware())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó docs/swagger.json)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "ERP Core API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", httpRouter.MetricsHandler(promReg))

	app.Use(httpRouter.TenantMiddleware(tenantRepo, cfg.Tenancy))
	httpRouter.Router(app, httpRouter.RouterDeps{
		Tenants:   tenantRepo,
		Stores:    stores,
		Registry:  registry,
		Modules:   moduleSvc,
		Resolver:  resolver,
		Sequences: sequences,
		AuthUC:    authUC,
		CompanyUC: companyUC,
		ContactUC: contactUC,
		RoleUC:    roleUC,
		UserUC:    userUC,
		TenantUC:  tenantUC,
		Tenancy:   cfg.Tenancy,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

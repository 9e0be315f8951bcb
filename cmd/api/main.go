package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/swaggo/swag"

	"github.com/jhoicas/tienda-erp-api/docs"
	appanalytics "github.com/jhoicas/tienda-erp-api/internal/application/analytics"
	"github.com/jhoicas/tienda-erp-api/internal/application/auth"
	"github.com/jhoicas/tienda-erp-api/internal/application/inventory"
	"github.com/jhoicas/tienda-erp-api/internal/application/payments"
	"github.com/jhoicas/tienda-erp-api/internal/application/pricing"
	"github.com/jhoicas/tienda-erp-api/internal/application/sales"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
	infraai "github.com/jhoicas/tienda-erp-api/internal/infrastructure/ai"
	"github.com/jhoicas/tienda-erp-api/internal/infrastructure/cache"
	"github.com/jhoicas/tienda-erp-api/internal/infrastructure/mercadopago"
	"github.com/jhoicas/tienda-erp-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/tienda-erp-api/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-erp-api/internal/infrastructure/postgres"
	infraxlsx "github.com/jhoicas/tienda-erp-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/tienda-erp-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-erp-api/internal/worker"
	"github.com/jhoicas/tienda-erp-api/pkg/config"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// @title                       Tienda ERP API
// @version                     1.0
// @description                 Inventario por lotes, ventas, listas de precios y cobros online.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.ApplyMigrations(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		log.Info().Msg("esquema y procedimientos aplicados")
	}

	// Los procedimientos faltantes no impiden arrancar: cada operación que los use responde 503 con el SQL.
	if missing, err := postgres.MissingProcedures(ctx, pool); err != nil {
		log.Warn().Err(err).Msg("no se pudo verificar procedimientos almacenados")
	} else if len(missing) > 0 {
		log.Warn().Strs("procedures", missing).Msg("procedimientos almacenados no desplegados")
	}

	rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("tz", cfg.App.Timezone).Msg("zona horaria inválida, se usa Local")
		loc = time.Local
	}

	// ── Repositorios ─────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(pool)
	accessRequestRepo := postgres.NewAccessRequestRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	supplyRepo := postgres.NewSupplyRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	priceListRepo := postgres.NewPriceListRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	knowledgeRepo := postgres.NewKnowledgeRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// ── Adaptadores ──────────────────────────────────────────────────────────
	priceCache := cache.NewPriceCache(rdb, cfg.Redis.CacheTTL())
	locker := cache.NewLocker(rdb, log)
	gateway := mercadopago.NewClient(mercadopago.Config{
		AccessToken:     cfg.MercadoPago.AccessToken,
		WebhookSecret:   cfg.MercadoPago.WebhookSecret,
		BaseURL:         cfg.MercadoPago.BaseURL,
		NotificationURL: cfg.MercadoPago.NotificationURL,
		SuccessURL:      cfg.MercadoPago.SuccessURL,
		FailureURL:      cfg.MercadoPago.FailureURL,
		PendingURL:      cfg.MercadoPago.PendingURL,
		CurrencyID:      cfg.Sales.CurrencyID,
	})
	mailer := notify.NewMailer(notify.Config{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		User:       cfg.SMTP.User,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		AdminEmail: cfg.SMTP.AdminEmail,
	}, loc)
	pdfRenderer := infrapdf.NewMarotoRenderer(cfg.App.Name)
	exporter := infraxlsx.NewExporter()
	emailQueue := worker.NewDispatcher(rdb)
	workers := worker.NewPool(rdb, mailer, log)

	// ── Casos de uso ─────────────────────────────────────────────────────────
	authUC := auth.NewAuthUseCase(userRepo, accessRequestRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	userAdminUC := usecase.NewUserAdminUseCase(userRepo, accessRequestRepo, log)
	productUC := usecase.NewProductUseCase(productRepo, lotRepo, warehouseRepo, supplyRepo, priceListRepo, priceCache, log)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo, txRunner)
	supplyUC := usecase.NewSupplyUseCase(supplyRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	comexUC := usecase.NewComexUseCase(productRepo)

	var chatbotUC *usecase.ChatbotUseCase
	if cfg.AI.AnthropicAPIKey != "" {
		chatbotUC = usecase.NewChatbotUseCase(knowledgeRepo, infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel))
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY vacío: el chatbot solo administra la base de conocimiento")
		chatbotUC = usecase.NewChatbotUseCase(knowledgeRepo, nil)
	}

	createSaleUC := sales.NewCreateSaleUseCase(txRunner, productRepo, priceListRepo, log)
	saleUC := sales.NewSaleUseCase(saleRepo, pdfRenderer, log)
	transferUC := inventory.NewTransferUseCase(lotRepo, warehouseRepo, transferRepo, log)
	priceListUC := pricing.NewPriceListUseCase(priceListRepo, productRepo, priceCache, log)
	portalUC := pricing.NewPortalUseCase(priceListRepo, productRepo, priceCache, pdfRenderer, log)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, exporter, loc)
	checkoutUC := payments.NewCheckoutUseCase(saleRepo, gateway, log)
	webhookUC := payments.NewWebhookUseCase(saleRepo, gateway, locker, emailQueue, log)

	// ── Procesos en segundo plano ────────────────────────────────────────────
	workers.Start(ctx, cfg.Worker.Count)
	if cfg.Sales.AbandonedAfter() > 0 {
		go sales.RunAbandonedCartSweeper(ctx, saleUC, time.Minute*5, cfg.Sales.AbandonedAfter(), log)
	}

	// ── HTTP ─────────────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.AccessLog(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    docs.SwaggerInfo.Title,
		}))
	} else {
		app.Get("/docs/doc.json", func(c *fiber.Ctx) error {
			doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(doc)
		})
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "service": cfg.App.Name}
		if err := pool.Ping(c.UserContext()); err != nil {
			status["status"] = "degraded"
			status["db"] = err.Error()
		}
		if err := rdb.Ping(c.UserContext()).Err(); err != nil {
			status["status"] = "degraded"
			status["redis"] = err.Error()
		}
		return c.JSON(status)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserAdminUC: userAdminUC,
		ProductUC:   productUC,
		WarehouseUC: warehouseUC,
		SupplyUC:    supplyUC,
		CustomerUC:  customerUC,
		ComexUC:     comexUC,
		ChatbotUC:   chatbotUC,
		CreateSale:  createSaleUC,
		SaleUC:      saleUC,
		TransferUC:  transferUC,
		PriceListUC: priceListUC,
		PortalUC:    portalUC,
		DashboardUC: dashboardUC,
		CheckoutUC:  checkoutUC,
		WebhookUC:   webhookUC,
		Logger:      log,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	workers.Wait()

	log.Info().Msg("aplicación detenida")
}

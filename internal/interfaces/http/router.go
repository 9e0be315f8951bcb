package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/tienda-erp-api/internal/application/analytics"
	"github.com/jhoicas/tienda-erp-api/internal/application/auth"
	"github.com/jhoicas/tienda-erp-api/internal/application/inventory"
	"github.com/jhoicas/tienda-erp-api/internal/application/payments"
	"github.com/jhoicas/tienda-erp-api/internal/application/pricing"
	"github.com/jhoicas/tienda-erp-api/internal/application/sales"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserAdminUC *usecase.UserAdminUseCase
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	SupplyUC    *usecase.SupplyUseCase
	CustomerUC  *usecase.CustomerUseCase
	ComexUC     *usecase.ComexUseCase
	ChatbotUC   *usecase.ChatbotUseCase
	CreateSale  *sales.CreateSaleUseCase
	SaleUC      *sales.SaleUseCase
	TransferUC  *inventory.TransferUseCase
	PriceListUC *pricing.PriceListUseCase
	PortalUC    *pricing.PortalUseCase
	DashboardUC *appanalytics.DashboardUseCase
	CheckoutUC  *payments.CheckoutUseCase
	WebhookUC   *payments.WebhookUseCase
	Logger      *logger.Logger
	JWTSecret   string
}

const (
	roleAdmin     = entity.RoleAdmin
	roleBodeguero = entity.RoleBodeguero
	roleVendedor  = entity.RoleVendedor
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC)
	priceListHandler := NewPriceListHandler(deps.PriceListUC, deps.PortalUC)
	paymentHandler := NewPaymentHandler(deps.CheckoutUC, deps.WebhookUC, deps.Logger)

	// ── Público ───────────────────────────────────────────────────────────────
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/access-requests", authHandler.RequestAccess)

	portal := api.Group("/portal")
	portal.Get("/price-lists/:id", priceListHandler.Portal)
	portal.Get("/price-lists/:id/pdf", priceListHandler.PortalPDF)

	api.Post("/webhooks/mercadopago", paymentHandler.Webhook)

	// ── Protegido (Bearer Token) ──────────────────────────────────────────────
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(roleAdmin)
	stockRoles := RequireRole(roleAdmin, roleBodeguero)
	salesRoles := RequireRole(roleAdmin, roleVendedor)

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", adminOnly, authHandler.Register)

	// Products, lotes y lista de materiales
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/stock", productHandler.Stock)
	products.Get("/:id/supplies", productHandler.GetSupplies)
	products.Post("/", stockRoles, productHandler.Create)
	products.Put("/:id", stockRoles, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Post("/:id/lots", stockRoles, productHandler.CreateLot)
	products.Put("/:id/supplies", stockRoles, productHandler.SetSupplies)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Put("/:id", adminOnly, warehouseHandler.Update)
	warehouses.Delete("/:id", adminOnly, warehouseHandler.Delete)
	warehouses.Post("/:id/default", adminOnly, warehouseHandler.SetDefault)

	// Supplies (insumos)
	supplies := protected.Group("/supplies", stockRoles)
	supplyHandler := NewSupplyHandler(deps.SupplyUC)
	supplies.Get("/", supplyHandler.List)
	supplies.Post("/", supplyHandler.Create)
	supplies.Put("/:id", supplyHandler.Update)
	supplies.Delete("/:id", supplyHandler.Delete)
	supplies.Post("/:id/stock", supplyHandler.AddStock)

	// Transferencias entre depósitos
	inv := protected.Group("/inventory", stockRoles)
	transferHandler := NewTransferHandler(deps.TransferUC)
	inv.Post("/transfers", transferHandler.Transfer)
	inv.Get("/transfers", transferHandler.History)

	// Sales
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.SaleUC)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)
	salesGroup.Post("/", salesRoles, saleHandler.Create)
	salesGroup.Patch("/:id/status", salesRoles, saleHandler.UpdateStatus)
	salesGroup.Post("/:id/checkout", salesRoles, paymentHandler.Checkout)
	salesGroup.Delete("/:id", adminOnly, saleHandler.Delete)

	// Customers
	customers := protected.Group("/customers", salesRoles)
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/", customerHandler.List)
	customers.Post("/", customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)

	// Price lists
	priceLists := protected.Group("/price-lists")
	priceLists.Get("/", priceListHandler.List)
	priceLists.Get("/:id", priceListHandler.GetByID)
	priceLists.Post("/", adminOnly, priceListHandler.Create)
	priceLists.Put("/:id", adminOnly, priceListHandler.Update)
	priceLists.Delete("/:id", adminOnly, priceListHandler.Delete)
	priceLists.Put("/:id/items", adminOnly, priceListHandler.SetItem)
	priceLists.Delete("/:id/items/:product_id", adminOnly, priceListHandler.RemoveItem)

	// COMEX
	comexHandler := NewComexHandler(deps.ComexUC)
	protected.Post("/comex/quote", salesRoles, comexHandler.Quote)

	// Dashboard
	dashboard := protected.Group("/dashboard", adminOnly)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/", dashboardHandler.Get)
	dashboard.Get("/export", dashboardHandler.Export)

	// Usuarios y solicitudes de acceso
	userHandler := NewUserHandler(deps.UserAdminUC)
	users := protected.Group("/users", adminOnly)
	users.Get("/", userHandler.List)
	users.Put("/:id/roles", userHandler.UpdateRoles)
	accessRequests := protected.Group("/access-requests", adminOnly)
	accessRequests.Get("/", userHandler.ListAccessRequests)
	accessRequests.Post("/:id/approve", userHandler.Approve)
	accessRequests.Post("/:id/reject", userHandler.Reject)

	// Chatbot
	chatbotHandler := NewChatbotHandler(deps.ChatbotUC)
	protected.Post("/chatbot/ask", chatbotHandler.Ask)
	knowledge := protected.Group("/chatbot/knowledge", adminOnly)
	knowledge.Get("/", chatbotHandler.List)
	knowledge.Post("/", chatbotHandler.Create)
	knowledge.Put("/:id", chatbotHandler.Update)
	knowledge.Delete("/:id", chatbotHandler.Delete)
}

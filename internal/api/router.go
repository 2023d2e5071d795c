package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/farmconnect/marketplace-gateway/docs"
	"github.com/farmconnect/marketplace-gateway/internal/api/handler"
	"github.com/farmconnect/marketplace-gateway/internal/api/middleware"
	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
	"github.com/farmconnect/marketplace-gateway/internal/core/service"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Sessions ports.SessionService
	Cart     ports.CartService
	History  ports.CartHistory
	Trades   ports.TradeService
	Catalog  ports.CatalogService
	Orders   ports.OrderService
	Expenses ports.ExpenseService
	Insights ports.InsightService
	Guard    *service.AccessGuard
	Checks   map[string]handler.Check
	Cookie   handler.CookieConfig
	Logger   zerolog.Logger
}

type viewRoute struct {
	path string
	view string
	role domain.Role
}

// Views mounted without a guard are public. An empty role on a guarded view
// would admit any signed-in user; every guarded view below names its role.
var (
	publicViews = []viewRoute{
		{path: "/", view: "home"},
		{path: "/for-farmers", view: "for-farmers"},
		{path: "/how-it-works", view: "how-it-works"},
		{path: "/about", view: "about"},
		{path: domain.LoginPath, view: "login"},
		{path: "/register/:role", view: "register"},
	}

	guardedViews = []viewRoute{
		{path: "/farmer/dashboard", view: "farmer-dashboard", role: domain.RoleFarmer},
		{path: "/farmer/ai-analytics", view: "farmer-ai-analytics", role: domain.RoleFarmer},
		{path: "/farmer/expenses", view: "farmer-expenses", role: domain.RoleFarmer},
		{path: "/farmer/trades", view: "farmer-trades", role: domain.RoleFarmer},
		{path: "/farmer/add-product", view: "farmer-add-product", role: domain.RoleFarmer},
		{path: "/customer/dashboard", view: "customer-dashboard", role: domain.RoleBuyer},
		{path: "/cart", view: "cart", role: domain.RoleBuyer},
		{path: "/chat", view: "chat", role: domain.RoleBuyer},
		{path: "/ai-insights", view: "ai-insights", role: domain.RoleBuyer},
		{path: "/marketplace", view: "marketplace", role: domain.RoleBuyer},
	}
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, deps.Cookie.Name)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("marketplace"))
	e.Use(middleware.Session(deps.Sessions, deps.Cookie.Name, deps.Logger))
	e.Use(middleware.RequestLogger(deps.Logger))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Sessions, deps.Cookie)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session, middleware.RequireSession())

	// --- API routes ---
	apiGroup := e.Group("/api", middleware.RequireSession())

	cartHandler := handler.NewCartHandler(deps.Cart, deps.History)
	cart := apiGroup.Group("/cart", middleware.RBAC(domain.RoleBuyer))
	cart.GET("", cartHandler.Get)
	cart.GET("/history", cartHandler.History)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:product_id", cartHandler.UpdateItem)
	cart.DELETE("/items/:product_id", cartHandler.RemoveItem)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/checkout", cartHandler.Checkout)

	catalogHandler := handler.NewCatalogHandler(deps.Catalog, deps.Orders)
	apiGroup.GET("/products", catalogHandler.Products)
	apiGroup.GET("/orders", catalogHandler.Orders, middleware.RBAC(domain.RoleBuyer))

	tradeHandler := handler.NewTradeHandler(deps.Trades)
	trades := apiGroup.Group("/trades", middleware.RBAC(domain.RoleFarmer))
	trades.GET("", tradeHandler.List)
	trades.POST("", tradeHandler.Create)
	trades.GET("/summary", tradeHandler.Summary)
	trades.PUT("/:id/status", tradeHandler.UpdateStatus)

	expenseHandler := handler.NewExpenseHandler(deps.Expenses)
	expenses := apiGroup.Group("/expenses", middleware.RBAC(domain.RoleFarmer))
	expenses.GET("", expenseHandler.List)
	expenses.POST("", expenseHandler.Create)
	expenses.GET("/analytics", expenseHandler.Analytics)
	expenses.PUT("/:id", expenseHandler.Update)
	expenses.DELETE("/:id", expenseHandler.Delete)

	insightHandler := handler.NewInsightHandler(deps.Insights)
	apiGroup.POST("/chat", insightHandler.Chat)
	apiGroup.POST("/ai-analytics", insightHandler.Analytics)
	analytics := apiGroup.Group("/analytics", middleware.RBAC(domain.RoleFarmer))
	analytics.GET("/sales", insightHandler.Sales)
	analytics.GET("/inventory", insightHandler.Inventory)

	// --- Views ---
	viewHandler := handler.NewViewHandler()
	for _, v := range publicViews {
		e.GET(v.path, viewHandler.Page(v.view))
	}
	for _, v := range guardedViews {
		e.GET(v.path, viewHandler.Page(v.view), middleware.Guard(deps.Guard, v.role))
	}

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

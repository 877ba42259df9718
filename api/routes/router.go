package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosema/rosema-backend/api/controllers"
	"github.com/rosema/rosema-backend/api/middleware"
	"github.com/rosema/rosema-backend/internal/catalog"
	"github.com/rosema/rosema-backend/internal/checkout"
	"github.com/rosema/rosema-backend/internal/dashboard"
	"github.com/rosema/rosema-backend/internal/sales"
	"github.com/rosema/rosema-backend/pkg/config"
	"github.com/rosema/rosema-backend/pkg/db"
	"github.com/rosema/rosema-backend/pkg/logger"
	"github.com/rosema/rosema-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	catalogService catalog.Service,
	catalogAdmin catalog.Admin,
	dashboardService dashboard.Service,
	sessions controllers.Sessions,
	salesService sales.Service,
	renderer *checkout.Renderer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins, cfg.Cart.SessionHeader),
	)

	var idempotencyStore redis.IdempotencyStore
	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["database"] = dbP
	}
	if redisClient != nil {
		idempotencyStore = redisClient
		readiness["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if cfg.Metrics.Enabled && metricsHandler != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogList(catalogService, logg))
			r.Get("/products/sku/{sku}", controllers.CatalogProductBySKU(catalogService, logg))
			r.Get("/products/{productID}", controllers.CatalogProduct(catalogService, logg))
			r.Get("/low-stock", controllers.CatalogLowStock(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.Cart.SessionHeader, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))
			r.Get("/", controllers.CartFetch(sessions, logg))
			r.Delete("/", controllers.CartClear(sessions, logg))
			r.Post("/items", controllers.CartAddItem(sessions, logg))
			r.Patch("/items/{lineID}", controllers.CartUpdateItem(sessions, logg))
			r.Delete("/items/{lineID}", controllers.CartRemoveItem(sessions, logg))
			r.Post("/checkout", controllers.CartCheckout(sessions, renderer, logg))
		})

		r.Route("/registers/{registerID}", func(r chi.Router) {
			r.Use(middleware.Idempotency(idempotencyStore, logg))
			r.Get("/", controllers.RegisterFetch(sessions, logg))
			r.Delete("/", controllers.RegisterClear(sessions, logg))
			r.Post("/items", controllers.RegisterAddItem(sessions, logg))
			r.Post("/items/scan", controllers.RegisterScan(sessions, logg))
			r.Post("/items/quick", controllers.RegisterAddQuickItem(sessions, logg))
			r.Patch("/items/{lineID}", controllers.RegisterUpdateItem(sessions, logg))
			r.Delete("/items/{lineID}", controllers.RegisterRemoveItem(sessions, logg))
			r.Put("/discount", controllers.RegisterApplyDiscount(sessions, logg))
			r.Delete("/discount", controllers.RegisterRemoveDiscount(sessions, logg))
			r.Post("/sales", controllers.RegisterFinishSale(sessions, renderer, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(salesService, logg))
			r.Get("/recent", controllers.SalesRecent(salesService, logg))
			r.Get("/{saleID}", controllers.SalesGet(salesService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", controllers.AdminDashboard(dashboardService, logg))
			r.Post("/products", controllers.AdminCreateProduct(catalogAdmin, logg))
			r.Patch("/products/{productID}", controllers.AdminUpdateProduct(catalogAdmin, logg))
			r.Delete("/products/{productID}", controllers.AdminDeleteProduct(catalogAdmin, logg))
			r.Put("/products/{productID}/stock", controllers.AdminSetStock(catalogAdmin, logg))
		})
	})

	return r
}

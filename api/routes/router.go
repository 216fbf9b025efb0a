package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/albin6/cellsphere/api/controllers"
	catalogcontrollers "github.com/albin6/cellsphere/api/controllers/catalog"
	couponcontrollers "github.com/albin6/cellsphere/api/controllers/coupons"
	ordercontrollers "github.com/albin6/cellsphere/api/controllers/orders"
	salescontrollers "github.com/albin6/cellsphere/api/controllers/sales"
	walletcontrollers "github.com/albin6/cellsphere/api/controllers/wallet"
	"github.com/albin6/cellsphere/api/middleware"
	"github.com/albin6/cellsphere/internal/banners"
	"github.com/albin6/cellsphere/internal/coupons"
	"github.com/albin6/cellsphere/internal/offers"
	"github.com/albin6/cellsphere/internal/orders"
	"github.com/albin6/cellsphere/internal/products"
	"github.com/albin6/cellsphere/internal/sales"
	"github.com/albin6/cellsphere/internal/wallet"
	"github.com/albin6/cellsphere/pkg/config"
	"github.com/albin6/cellsphere/pkg/enums"
	"github.com/albin6/cellsphere/pkg/logger"
	pkgredis "github.com/albin6/cellsphere/pkg/redis"
)

// Params carries everything the HTTP surface needs. Nil stores disable the
// middleware that depends on them.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	RateLimits  middleware.RateLimiterStore
	Gatherer    prometheus.Gatherer
	Tokens      middleware.TokenVerifier

	Orders   orders.Service
	Coupons  coupons.Service
	Wallet   wallet.Service
	Sales    sales.Service
	Products products.Service
	Offers   offers.Service
	Banners  banners.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	previewPolicy := middleware.NewRateLimitPolicy(
		"coupon_preview",
		cfg.Coupon.PreviewRateWindow,
		cfg.Coupon.PreviewRateLimit,
	)
	orderIdempotent := middleware.Idempotency(p.Idempotency, logg, middleware.OrderIdempotencyTTL)
	returnIdempotent := middleware.Idempotency(p.Idempotency, logg, middleware.ReturnIdempotencyTTL)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.Auth(p.Tokens, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleUser))

		r.With(orderIdempotent).Post("/orders", ordercontrollers.PlaceOrder(p.Orders, logg))
		r.Get("/orders", ordercontrollers.ListMine(p.Orders, logg))
		r.Get("/orders/{orderId}", ordercontrollers.Detail(p.Orders, logg))
		r.With(orderIdempotent).Patch("/orders/{orderId}", ordercontrollers.CancelLine(p.Orders, logg))
		r.With(returnIdempotent).Post("/orders/{orderId}/return", ordercontrollers.RequestReturn(p.Orders, logg))

		r.With(middleware.RateLimit(previewPolicy, p.RateLimits, logg)).
			Post("/coupons/apply", couponcontrollers.Preview(p.Coupons, logg))

		r.Get("/wallet", walletcontrollers.Get(p.Wallet, logg))
		r.Put("/wallet", walletcontrollers.AddFunds(p.Wallet, logg))

		r.Get("/products/best-sellers", catalogcontrollers.BestSellers(p.Products, logg))
		r.Get("/products/best-sellers/categories", catalogcontrollers.BestSellingGroups(p.Products, catalogcontrollers.GroupCategories, logg))
		r.Get("/products/best-sellers/brands", catalogcontrollers.BestSellingGroups(p.Products, catalogcontrollers.GroupBrands, logg))
		r.Get("/banners", catalogcontrollers.BannersActive(p.Banners, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(p.Tokens, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))

		r.Get("/orders", ordercontrollers.AdminList(p.Orders, logg))
		r.Get("/orders/{orderId}", ordercontrollers.AdminDetail(p.Orders, logg))
		r.With(returnIdempotent).Patch("/orders/{orderId}/status", ordercontrollers.AdminUpdateStatus(p.Orders, logg))
		r.With(returnIdempotent).Patch("/orders/{orderId}/return", ordercontrollers.AdminRespondReturn(p.Orders, logg))

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", couponcontrollers.List(p.Coupons, logg))
			r.Post("/", couponcontrollers.Create(p.Coupons, logg))
			r.Put("/{couponId}", couponcontrollers.Update(p.Coupons, logg))
			r.Delete("/{couponId}", couponcontrollers.Delete(p.Coupons, logg))
			r.Patch("/{couponId}/toggle", couponcontrollers.Toggle(p.Coupons, logg))
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", catalogcontrollers.OffersList(p.Offers, logg))
			r.Post("/", catalogcontrollers.OffersCreate(p.Offers, logg))
			r.Delete("/{offerId}", catalogcontrollers.OffersDelete(p.Offers, logg))
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", catalogcontrollers.BannersList(p.Banners, logg))
			r.Post("/", catalogcontrollers.BannersCreate(p.Banners, logg))
			r.Put("/{bannerId}", catalogcontrollers.BannersUpdate(p.Banners, logg))
			r.Patch("/{bannerId}", catalogcontrollers.BannersToggle(p.Banners, logg))
			r.Delete("/{bannerId}", catalogcontrollers.BannersDelete(p.Banners, logg))
		})

		r.Get("/sales", salescontrollers.Report(p.Sales, logg))
		r.Get("/wallets/{userId}/reconcile", walletcontrollers.AdminReconcile(p.Wallet, logg))
	})

	return r
}

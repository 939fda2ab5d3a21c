package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ShopCore/internal/cache"
	"ShopCore/internal/catalog"
	"ShopCore/internal/order"
	"ShopCore/internal/payment"
	"ShopCore/internal/stats"
	"ShopCore/internal/user"
	"ShopCore/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	RateLimit         int
	RateWindowSeconds int
}

type Deps struct {
	Users    user.Store
	Products catalog.Store
	Orders   order.Store
	Coupons  payment.CouponStore

	Photos   catalog.PhotoStore
	Provider payment.IntentProvider
	Cache    cache.Cache

	UploadDir string
	PageSize  int
}

const readyTimeout = 2 * time.Second

// NewHandler assembles the monolith router. The cache and invalidator are
// constructed here and handed to every server that needs them; nothing holds
// a hidden module-level instance.
func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	inv := cache.NewInvalidator(deps.Cache)
	admin := user.RequireAdmin(deps.Users)

	userSrv := &user.Server{Store: deps.Users, Log: httpDeps.Log}
	catalogSrv := &catalog.Server{
		Store:    deps.Products,
		Photos:   deps.Photos,
		Cache:    deps.Cache,
		Inv:      inv,
		Log:      httpDeps.Log,
		PageSize: deps.PageSize,
	}
	orderSrv := &order.Server{
		Store:    deps.Orders,
		Products: deps.Products,
		Users:    deps.Users,
		Cache:    deps.Cache,
		Inv:      inv,
		Log:      httpDeps.Log,
	}
	paymentSrv := &payment.Server{
		Coupons:  deps.Coupons,
		Provider: deps.Provider,
		Log:      httpDeps.Log,
	}
	statsSrv := &stats.Server{
		Agg: &stats.Aggregator{
			Products: deps.Products,
			Orders:   deps.Orders,
			Users:    deps.Users,
		},
		Cache: deps.Cache,
		Log:   httpDeps.Log,
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/user", userSrv.Routes(admin))
		api.Mount("/product", catalogSrv.Routes(admin))
		api.Mount("/order", orderSrv.Routes(admin))
		api.Mount("/payment", paymentSrv.Routes(admin))
		api.Mount("/dashboard", statsSrv.Routes(admin))
	})

	if deps.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir)))
		r.Handle("/uploads/*", fs)
	}

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.RateLimit > 0 {
		r.Use(kit.NewIPRateLimiter(deps.RateLimit, deps.RateWindowSeconds).Middleware)
	}
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := []struct {
			name string
			ping func(context.Context) error
		}{
			{"users", deps.Users.Ping},
			{"products", deps.Products.Ping},
			{"orders", deps.Orders.Ping},
			{"coupons", deps.Coupons.Ping},
		}
		for _, c := range checks {
			if err := c.ping(ctx); err != nil {
				if log != nil {
					log.Warn("readyz failed: "+c.name, zap.Error(err))
				}
				kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready")
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

package main

import (
	"database/sql"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ShopCore/internal/app"
	"ShopCore/internal/cache"
	"ShopCore/internal/catalog"
	"ShopCore/internal/order"
	"ShopCore/internal/payment"
	"ShopCore/internal/user"
	"ShopCore/pkg/kit"
)

func main() {
	service := "api"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "4000")
	dbURL := getenv("DATABASE_URL", "")
	redisAddr := getenv("REDIS_ADDR", "")
	uploadDir := getenv("UPLOAD_DIR", "uploads")

	deps := app.Deps{
		Provider:  payment.LocalIntentProvider{},
		UploadDir: uploadDir,
		PageSize:  getint("PRODUCT_PER_PAGE", 8),
	}

	if dbURL != "" {
		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		defer db.Close()

		deps.Users = user.NewPostgresStore(db)
		deps.Products = catalog.NewPostgresStore(db)
		deps.Orders = order.NewPostgresStore(db)
		deps.Coupons = payment.NewPostgresStore(db)
	} else {
		log.Info("no DATABASE_URL, using in-memory stores")
		deps.Users = user.NewMemStore()
		deps.Products = catalog.NewMemStore()
		deps.Orders = order.NewMemStore()
		deps.Coupons = payment.NewMemStore()
	}

	if redisAddr != "" {
		deps.Cache = cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: redisAddr}))
	} else {
		deps.Cache = cache.NewMemCache()
	}

	photos, err := catalog.NewDiskPhotoStore(uploadDir)
	if err != nil {
		log.Fatal("upload dir", zap.Error(err))
	}
	deps.Photos = photos

	h := app.NewHandler(deps, app.HTTPDeps{
		Log:      log,
		Service:  service,
		Registry: prometheus.NewRegistry(),

		MetricsEnabled: getenv("METRICS_ENABLED", "") == "true",
		MetricsToken:   getenv("METRICS_TOKEN", ""),

		RateLimit:         getint("RATE_LIMIT", 0),
		RateWindowSeconds: getint("RATE_WINDOW_SECONDS", 60),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"storefront/internal/api"
	"storefront/internal/config"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/migrations"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func connectDB(cfg *config.Config) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", cfg.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				logger.Info().Msgf("Connected to DB %s", cfg.DBName)
				return db, nil
			}
		}
		logger.Warn().Err(err).Msgf("Retry %d: failed to connect to DB %s (%s:%s)", i+1, cfg.DBName, cfg.DBHost, cfg.DBPort)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %w", cfg.DBName, cfg.DBHost, cfg.DBPort, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	db, err := connectDB(cfg)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	if err := migrations.AutoMigrate(db, 3); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate storefront tables")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer kafkaWriter.Close()

	productRepo := repository.NewProductRepository()
	cartRepo := repository.NewCartRepository()
	billingRepo := repository.NewBillingRepository()
	orderRepo := repository.NewOrderRepository()
	userRepo := repository.NewUserRepository()
	tx := repository.NewSQLTransactor(db)

	gateway := payment.NewClient(cfg.GatewayURL, cfg.GatewayKeyID, cfg.GatewayKeySecret, cfg.GatewayTimeout)

	catalogService := service.NewCatalogService(db, productRepo, rdb, cfg.ProductCacheTTL)
	cartService := service.NewCartService(db, cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(db, tx, cartRepo, billingRepo, orderRepo, userRepo, rdb, kafkaWriter,
		service.CheckoutOptions{ClearCart: cfg.ClearCartAfterCheckout})
	orderService := service.NewOrderService(db, orderRepo, billingRepo)
	paymentService := service.NewPaymentService(db, orderService, orderRepo, gateway, cfg.GatewayCurrency, kafkaWriter)
	userService := service.NewUserService(db, tx, userRepo, rdb, cfg.JWTSecret, cfg.SessionTTL)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := catalogService.PreWarmCache(ctx); err != nil {
			logger.Warn().Err(err).Msg("Product cache pre-warm failed")
		}
	}()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e := api.NewRouter(api.Handlers{
		Products: api.NewProductHandler(catalogService),
		Cart:     api.NewCartHandler(cartService),
		Checkout: api.NewCheckoutHandler(checkoutService, orderService),
		Payments: api.NewPaymentHandler(paymentService),
		Users:    api.NewUserHandler(userService, cfg.SessionTTL),
	}, userService,
		middleware.Logger(),
		middleware.RateLimiterWithConfig(limiterConfig),
	)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

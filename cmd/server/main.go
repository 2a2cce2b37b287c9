package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/config"
	"github.com/shopwise/checkout/internal/coupon"
	"github.com/shopwise/checkout/internal/handlers"
	"github.com/shopwise/checkout/internal/identity"
	"github.com/shopwise/checkout/internal/middleware"
	"github.com/shopwise/checkout/internal/notifier"
	"github.com/shopwise/checkout/internal/order"
	"github.com/shopwise/checkout/internal/payment"
	"github.com/shopwise/checkout/internal/pricing"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/shopwise/checkout/internal/repository/postgres"
	"github.com/shopwise/checkout/internal/repository/redisrepo"
	"github.com/shopwise/checkout/internal/service"
	"github.com/shopwise/checkout/pkg/logger"
	"github.com/sirupsen/logrus"
)

var version = "dev"

type stores struct {
	products repository.ProductRepository
	coupons  repository.CouponRepository
	orders   repository.OrderRepository
	tx       repository.Transactor
	carts    repository.CartRepository
	notifier notifier.Notifier
	closers  []func() error
}

func (s *stores) close(log *logrus.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.WithError(err).Warn("failed to close resource")
		}
	}
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	decimal.MarshalJSONWithoutQuotes = true

	log.WithFields(logrus.Fields{
		"port":           cfg.Server.Port,
		"host":           cfg.Server.Host,
		"log_level":      cfg.LogLevel,
		"storage_driver": cfg.Storage.Driver,
		"cart_driver":    cfg.Storage.CartDriver,
		"notifier":       cfg.Storage.Notifier,
	}).Info("starting checkout api server")

	ctx := context.Background()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize storage")
	}
	defer st.close(log)

	// Initialize services
	catalog := service.NewCatalogService(st.products, st.coupons)
	couponService := service.NewCouponService(st.coupons, catalog, log)

	if len(cfg.Storage.CouponSeedFiles) > 0 {
		log.Info("loading coupon seed files...")
		coupons, err := coupon.LoadFromFiles(ctx, cfg.Storage.CouponSeedFiles)
		if err != nil {
			log.WithError(err).Fatal("failed to load coupon seed files")
		}
		stored, err := couponService.Import(ctx, coupons)
		if err != nil {
			log.WithError(err).Fatal("failed to import coupons")
		}
		log.WithFields(logrus.Fields{"parsed": len(coupons), "stored": stored}).Info("coupon seed files imported")
	}

	gateway := payment.NewStripeGateway(payment.Config{
		SecretKey: cfg.Payment.StripeSecretKey,
		Company:   cfg.Payment.Company,
		Logger:    log,
	})

	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		Carts:        st.carts,
		Orders:       st.orders,
		Transactor:   st.tx,
		Catalog:      catalog,
		Engine:       pricing.NewEngine(cfg.Pricing.FreeShippingThreshold, cfg.Pricing.ShippingFlatFee),
		Splitter:     order.NewSplitter(order.SplitMode(cfg.Checkout.SplitMode)),
		Notifier:     st.notifier,
		EnforceStock: cfg.Checkout.EnforceStock,
		Logger:       log,
	})
	orderService := service.NewOrderService(st.orders, catalog, st.tx, st.notifier, log)
	cartService := service.NewCartService(st.carts, catalog, log)
	paymentService := service.NewPaymentService(st.carts, gateway, cfg.Payment.Currency, cfg.Payment.StripePublishableKey, log)

	tokens := identity.NewProvider(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Session cookies need credentialed CORS, so origins are explicit
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers.Mount(r, handlers.Routes{
		Health:   handlers.NewHealthHandler(log, version),
		Products: handlers.NewProductHandler(catalog, log),
		Carts:    handlers.NewCartHandler(cartService, log),
		Orders:   handlers.NewOrderHandler(checkoutService, orderService, log),
		Coupons:  handlers.NewCouponHandler(couponService, log),
		Payments: handlers.NewPaymentHandler(paymentService, log),
		Auth:     middleware.NewAuth(tokens, cfg.Auth.UserCookieName, cfg.Auth.SellerCookieName),
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("address", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}

	log.Info("server stopped gracefully")
}

func openStores(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			st.closers = append(st.closers, sqlDB.Close)
		}
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(db); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pg := postgres.NewStore(db)
		if cfg.Storage.SeedCatalog {
			if err := pg.SeedProducts(ctx, repository.SeedProducts(time.Now().UTC())...); err != nil {
				return nil, fmt.Errorf("seed catalog: %w", err)
			}
		}
		st.products, st.coupons, st.orders, st.tx = pg.Products(), pg.Coupons(), pg.Orders(), pg
	default:
		mem := repository.NewMemoryStore()
		if cfg.Storage.SeedCatalog {
			mem.SeedProducts(repository.SeedProducts(time.Now().UTC())...)
		}
		st.products, st.coupons, st.orders, st.tx = mem.Products(), mem.Coupons(), mem.Orders(), mem
	}

	switch cfg.Storage.CartDriver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		st.closers = append(st.closers, client.Close)
		st.carts = redisrepo.NewCartRepository(client)
	default:
		st.carts = repository.NewMemoryCartRepository()
	}

	switch cfg.Storage.Notifier {
	case config.DriverKafka:
		kn := notifier.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		st.closers = append(st.closers, kn.Close)
		st.notifier = kn
	default:
		st.notifier = notifier.NewLogNotifier(log)
	}

	return st, nil
}

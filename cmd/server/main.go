package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dokan-be/internal/cart"
	"dokan-be/internal/config"
	"dokan-be/internal/db"
	"dokan-be/internal/events"
	"dokan-be/internal/handler"
	"dokan-be/internal/inventory"
	"dokan-be/internal/logger"
	"dokan-be/internal/metrics"
	"dokan-be/internal/middleware"
	"dokan-be/internal/notification"
	"dokan-be/internal/order"
	"dokan-be/internal/pricing"
	"dokan-be/internal/product"
	"dokan-be/internal/promo"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := db.InitDB(cfg)
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	carts := cart.NewStore(rdb)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatal("kafka client init failed", zap.Error(err))
		}
		publisher = p
	}
	defer publisher.Close()

	notifier := notification.NewNotifier(notification.NewSMTPMailer(cfg))
	notifier.Start(ctx)

	promoRepo := promo.NewRepository(database)
	promoResolver := promo.NewResolver(promoRepo)
	productRepo := product.NewRepository(database)
	ledger := inventory.NewLedger(database)
	calculator := pricing.NewCalculator(promoResolver)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productRepo, ledger, calculator,
		promoResolver, carts, notifier, publisher, cfg.OpsEmail)

	h := handler.New(orderSvc, calculator, productRepo, ledger, promoRepo, carts)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)
	r.Use(middleware.Auth(cfg.JWTSecret))
	r.Use(middleware.RateLimit(cfg.InternalSecret))
	r.Use(middleware.Logging)

	r.Handle("/metrics", metrics.Handler())
	h.Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

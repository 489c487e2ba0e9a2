package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shopmart-be/internal/config"
	"shopmart-be/internal/db"
	"shopmart-be/internal/httpapi"
	"shopmart-be/internal/logger"
	"shopmart-be/internal/metrics"
	"shopmart-be/internal/middleware"
	"shopmart-be/internal/order"
	"shopmart-be/internal/product"
	"shopmart-be/internal/user"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	store := db.InitStore(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			logger.L().Warn("failed to close database connection", zap.Error(err))
		}
	}()

	counts := metrics.NewRegistry()

	userRepo := user.NewRepository(store.Users)
	productRepo := product.NewRepository(store.Products)
	orderRepo := order.NewRepository(store.Orders, store.Products)

	handler := httpapi.NewHandler(
		user.NewService(userRepo),
		product.NewService(productRepo),
		order.NewService(orderRepo, counts),
		counts,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      httpapi.NewRouter(handler, middleware.NewAuth(userRepo)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.L().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("graceful shutdown failed", zap.Error(err))
	}
}

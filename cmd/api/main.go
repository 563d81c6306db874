package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"locallisting/cmd/app"
	"locallisting/internal/config"
	handlers "locallisting/internal/handler"
	"locallisting/internal/logger"
	"locallisting/internal/metrics"
	"locallisting/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()
	log := logger.New(cfg.Log)

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, services := app.App(ctx, cfg, log)
	defer func() {
		if err := db.CloseDB(); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()

	h := handlers.NewHandlers(services, db, cfg, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	limiter.StartCleanup(10*time.Minute, ctx.Done())

	router := mux.NewRouter().StrictSlash(true)
	router.Use(middleware.Metrics)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// setting up routes
	h.RegisterRoutes(router, middleware.Auth(services.Auth), limiter.Handler)

	handlerChain := middleware.Chain(
		router,
		middleware.Recover(log),
		middleware.Logging(log),
		middleware.CORS(cfg.FrontendURL),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handlerChain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/supermarket-storefront/internal/pkg/config"
	"github.com/jcmexdev/supermarket-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/supermarket-storefront/internal/storefront/bootstrap"
	"github.com/jcmexdev/supermarket-storefront/internal/storefront/infra/httpx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.InitLogger(telemetry.LoggerOptions{
		Service: cfg.OTel.ServiceName,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := telemetry.ShutdownFunc(telemetry.NoopShutdown)
	if cfg.OTel.Enabled {
		shutdown, err = telemetry.SetupTracer(ctx, telemetry.TracerOptions{
			ServiceName: cfg.OTel.ServiceName,
			Endpoint:    cfg.OTel.Endpoint,
			Environment: cfg.OTel.Environment,
		})
		if err != nil {
			logger.Error("failed to initialise tracer", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	cart, err := bootstrap.OpenCart(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open cart storage", "storage", cfg.Cart.Storage, "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cart.Close(closeCtx); err != nil {
			logger.Error("cart close error", "error", err)
		}
		logger.Info("cart closed",
			"writes", cart.Persister.Writes(),
			"failures", cart.Persister.Failures(),
		)
	}()

	cat := bootstrap.NewCatalog(cfg, logger)
	handler := httpx.NewHandler(cart.Store, cat, cfg.Catalog.PriceScale)
	if cart.Journal != nil {
		handler.WithHistory(cart.Journal)
	}
	router := httpx.NewRouter(handler, httpx.NewAdminHandler(cat))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("storefront running", "addr", cfg.HTTP.Addr, "catalog", cat.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}

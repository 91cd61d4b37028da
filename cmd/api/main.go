package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/realestate-agents/lead_wizard/internal/config"
	"github.com/realestate-agents/lead_wizard/internal/infra"
	"github.com/realestate-agents/lead_wizard/internal/leads"
	"github.com/realestate-agents/lead_wizard/internal/logging"
	"github.com/realestate-agents/lead_wizard/internal/server"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	stores, err := infra.Connect(context.Background(), infra.Options{
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		Required:    !cfg.IsDev(),
		Migrations:  []infra.Migration{leads.EnsureSchema},
		Logger:      logger,
	})
	if err != nil {
		logger.Error("connect stores", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("close stores", "error", err)
		}
	}()

	srv, err := server.New(cfg, stores.DB, stores.Cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

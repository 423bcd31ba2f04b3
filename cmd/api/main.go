package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"peptide-labels/internal/platform/config"
	"peptide-labels/internal/platform/logger"
	"peptide-labels/internal/router"
)

// @title Peptide Labels API
// @version 1.0
// @description Calculadora de reconstitución de péptidos y generador de etiquetas para viales.
// @BasePath /
func main() {
	configFile := flag.String("config", os.Getenv("PEPLABEL_CONFIG"), "archivo de config (yaml)")
	flag.Parse()

	cfg, err := config.Load(config.New(), *configFile)
	if err != nil {
		// todavía no hay config: logger desde env
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.App,
	})
	defer func() { _ = log.Sync() }()

	rt, err := router.NewRouter(router.Options{Config: cfg, Logger: log})
	if err != nil {
		log.Error("router error", map[string]any{"error": err})
		os.Exit(1)
	}
	defer func() { _ = rt.Close() }()

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           rt,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      20 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err})
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", map[string]any{"error": err})
		}
	}
}

/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment (config.LoadServer)
  2. Apply command-line overrides
  3. Open the configured store (memory, sqlite or postgres)
  4. Load rules: rules file, then the document saved in the store
  5. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -addr    Listen address            (PAYROLL_ADDR, default ":8080")
  -driver  memory | sqlite | postgres (PAYROLL_DB_DRIVER, default sqlite)
  -dsn     SQLite path or Postgres URL (PAYROLL_DB_DSN, default payroll.db)
  -rules   JSON or TOML rules file    (PAYROLL_RULES_FILE)
  -env     Extra .env file to load

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (PAYROLL_SHUTDOWN_SECONDS)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -dsn="./data/payroll.db"

  # Run in memory with custom rules
  ./server -driver=memory -rules=rules.toml

  # Run against Postgres
  PAYROLL_DB_DRIVER=postgres PAYROLL_DB_DSN=postgres://localhost/payroll ./server

SEE ALSO:
  - api/server.go: Router configuration
  - config/server.go: Environment variables
  - store/backend: Store selection
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/store/backend"
)

func main() {
	// Flags
	addr := flag.String("addr", "", "HTTP listen address")
	driver := flag.String("driver", "", "storage driver: memory, sqlite or postgres")
	dsn := flag.String("dsn", "", "SQLite path or Postgres URL")
	rulesFile := flag.String("rules", "", "rules file (.json or .toml)")
	envFile := flag.String("env", "", "additional .env file")
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.LoadServer(envFiles...)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *driver != "" {
		cfg.DBDriver = *driver
	}
	if *dsn != "" {
		cfg.DBDSN = *dsn
	}
	if *rulesFile != "" {
		cfg.RulesFile = *rulesFile
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).
		With(slog.String("app", "payroll-engine"))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, logger *slog.Logger) error {
	ctx := context.Background()

	// Initialize store
	s, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	// Rules: file first, then whatever was saved through the API
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	handler := api.NewHandler(s, rules, logger)
	if err := handler.LoadRules(ctx); err != nil {
		logger.Warn("ignoring stored rules", "error", err)
	}

	router := api.NewRouter(handler, api.RouterOptions{
		Logger:      logger,
		LogLevel:    cfg.SlogLevel(),
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "driver", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

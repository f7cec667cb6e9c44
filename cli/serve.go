package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/memory"
	"github.com/warp/payroll-engine/store/postgres"
	"github.com/warp/payroll-engine/store/sqlite"
)

// ─── serve ──────────────────────────────────────────────────────────────────
// Startup: config, store, calculator, metrics, service, scheduler, router,
// HTTP server.
// On SIGINT/SIGTERM the server stops accepting connections, drains active
// requests within shutdown_timeout, then closes the store.

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "HTTP port (overrides config)")
	serveCmd.Flags().String("store", "", "Store driver: memory, sqlite, postgres (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the payroll HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if driver, _ := cmd.Flags().GetString("store"); driver != "" {
		cfg.Store.Driver = driver
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.LogLevel()
	logger := api.NewLogger(os.Stdout, level)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closeStore()

	calc, err := newCalculator(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	svc := payroll.NewService(store, calc, payroll.WithLogger(logger), payroll.WithObserver(rec))

	scheduler := api.NewPayrollScheduler(svc, cfg.Payroll.AutoRunDay)
	scheduler.CheckInterval = cfg.RunCheckInterval()
	scheduler.Concurrency = cfg.Payroll.RunConcurrency
	scheduler.Logger = logger
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(svc, store,
		api.WithRecorder(rec),
		api.WithScheduler(scheduler),
		api.WithLogger(logger),
		api.WithCompanyName(cfg.Payroll.CompanyName),
	)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
		Gatherer:    reg,
	})

	read, write, shutdown := cfg.Timeouts()
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", server.Addr),
			slog.String("store", cfg.Store.Driver),
			slog.String("policy", string(calc.Policy().ID)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdown)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// openStore returns the configured store and its close function.
func openStore(ctx context.Context, cfg *config.Config) (payroll.Store, func() error, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.New(), func() error { return nil }, nil
	case "sqlite":
		s, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := postgres.New(ctx, cfg.Store.PostgresDSN, postgres.Options{MaxConns: cfg.Store.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store.driver %q", config.ErrInvalidConfig, cfg.Store.Driver)
	}
}

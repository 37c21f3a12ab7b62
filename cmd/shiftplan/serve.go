package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shahabsali127/shiftplan/advisor"
	"github.com/shahabsali127/shiftplan/api"
	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/config"
	"github.com/shahabsali127/shiftplan/logger"
	"github.com/shahabsali127/shiftplan/metrics"
	"github.com/shahabsali127/shiftplan/planner"
	"github.com/shahabsali127/shiftplan/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg, "shiftplan")

	var (
		rec            *metrics.Recorder
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if rec, err = metrics.NewRecorderWithRegistry(reg); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("database close: %v", err)
		}
	}()

	p, err := planner.Open(ctx, planner.Options{
		Persister:              store,
		Advisor:                newAdvisor(cfg, log, rec),
		Calendar:               calendar.New(),
		MaxConcurrentVacations: cfg.Rules.MaxConcurrentVacations,
		Logger:                 log.With("planner"),
		Metrics:                rec,
	})
	if err != nil {
		return err
	}

	router := api.NewRouter(api.NewHandler(p, log.With("api")), api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log.With("http"),
		Metrics:        rec,
		MetricsHandler: metricsHandler,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s (db %s)", server.Addr, cfg.Database.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Infof("server stopped")
	return nil
}

func newAdvisor(cfg *config.Config, log *logger.ZerologLogger, rec *metrics.Recorder) *advisor.Advisor {
	var client advisor.Client = advisor.Unavailable{}
	if cfg.Advisor.Endpoint != "" {
		client = advisor.NewHTTPClient(cfg.Advisor.Endpoint, cfg.Advisor.APIKey, cfg.Advisor.Model)
	} else {
		log.Warnf("advisor endpoint not configured; advisory requests will return 503")
	}
	return advisor.New(client, cfg.Advisor.Timeout, log.With("advisor"), rec)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Binusha25Liyanage/MoneyMate/internal/amqp"
	"github.com/Binusha25Liyanage/MoneyMate/internal/auth"
	"github.com/Binusha25Liyanage/MoneyMate/internal/cache"
	apphttp "github.com/Binusha25Liyanage/MoneyMate/internal/http"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
	"github.com/Binusha25Liyanage/MoneyMate/internal/middleware/ratelimit"
	"github.com/Binusha25Liyanage/MoneyMate/internal/middleware/security"
	"github.com/Binusha25Liyanage/MoneyMate/internal/reports"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API",
		Long: `Start the HTTP server exposing the report endpoints under /report.

SQL backends are migrated on startup. When AMQP_URL is set, a report.generated
event is published for every report and ledger.changed messages invalidate
the report cache.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := cfg.Validate(); err != nil {
		return err
	}

	res, err := openBackend(ctx, true)
	if err != nil {
		return err
	}
	defer closeBackend(res)

	opts := []reports.Option{
		reports.WithFetchTimeout(cfg.FetchTimeout),
		reports.WithLogger(logger.WithComponent(applog.ComponentReports).Logger),
	}

	var cacheSizer apphttp.Sizer
	if cfg.CacheEnabled() {
		reportCache := cache.NewLRUCache[any](cfg.ReportCacheSize, cfg.ReportCacheTTL)
		manager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
		manager.Register(reportCache)
		manager.StartCleanup(cfg.ReportCacheTTL)
		defer manager.Stop()

		opts = append(opts, reports.WithCache(reportCache))
		cacheSizer = reportCache
		logger.Info("Report cache enabled", "ttl", cfg.ReportCacheTTL, "size", cfg.ReportCacheSize)
	}

	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP: %w", err)
		}
		defer func() {
			if err := broker.Close(); err != nil {
				logger.Error("Failed to close AMQP client", applog.FieldError, err)
			}
		}()
		opts = append(opts, reports.WithPublisher(broker))
		logger.Info("AMQP enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	svc := reports.NewService(res.Backend, opts...)

	if broker != nil {
		go func() {
			err := broker.ConsumeLedgerChanges(ctx, svc.HandleLedgerChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Ledger change consumer stopped", applog.FieldError, err)
			}
		}()
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Reports:  svc,
		Auth:     auth.NewAuthenticator(cfg.JWTSecret),
		Logger:   logger,
		Limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		Detector: security.NewDetector(),
		Cache:    cacheSizer,
	})
	srv.MaxHeaderBytes = 1 << 16

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting moneymate server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			applog.FieldOperation, applog.OpStartup)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}

	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
	return nil
}

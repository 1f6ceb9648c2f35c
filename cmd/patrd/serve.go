package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfrancani/patrimonio/internal/cache"
	"github.com/mfrancani/patrimonio/internal/config"
	"github.com/mfrancani/patrimonio/internal/events"
	"github.com/mfrancani/patrimonio/internal/hrsync"
	"github.com/mfrancani/patrimonio/internal/server"
	"github.com/mfrancani/patrimonio/internal/store/postgres"
	patsync "github.com/mfrancani/patrimonio/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inventory API and the HR event consumer",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Event publisher for outbound product events.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (PATRIMONIO_NATS_URL not set)")
		}

		// Optional product read cache.
		var productCache *cache.ProductCache
		if cfg.RedisURL != "" {
			productCache, err = cache.New(context.Background(), cfg.RedisURL, logger)
			if err != nil {
				logger.Error("failed to connect product cache", "err", err)
				productCache = nil
			} else {
				logger.Info("product cache enabled", "redis_url", cfg.RedisURL)
			}
		}

		// HTTP API.
		apiServer := server.NewServer(store, publisher, productCache, logger)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: apiServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// HR event consumer.
		var consumerCancel context.CancelFunc
		if cfg.NATSURL != "" {
			hrSub, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				logger.Error("failed to create HR subscriber", "err", err)
			} else {
				engine := hrsync.NewEngine(store, logger)
				engine.SetRetryPolicy(cfg.ApplyMaxAttempts, cfg.ApplyBackoff)
				consumer := hrsync.NewConsumer(engine, logger, cfg.HRSubject)

				var consumerCtx context.Context
				consumerCtx, consumerCancel = context.WithCancel(context.Background())
				go func() {
					if err := consumer.Run(consumerCtx, hrSub); err != nil {
						logger.Error("HR consumer error", "err", err)
					}
					hrSub.Close()
				}()
				logger.Info("HR consumer started", "subject", cfg.HRSubject)
			}
		} else {
			logger.Info("HR consumer disabled (PATRIMONIO_NATS_URL not set)")
		}

		// Backup sync scheduler.
		var scheduler *patsync.Scheduler
		if cfg.SyncInterval > 0 && cfg.SyncS3Bucket != "" {
			s3Dest, err := patsync.NewS3Destination(
				context.Background(),
				cfg.SyncS3Bucket,
				cfg.SyncS3Key,
				cfg.SyncS3Region,
				cfg.SyncS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 sync destination", "err", err)
			} else {
				scheduler = patsync.NewScheduler(store, []patsync.Destination{s3Dest}, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "interval", cfg.SyncInterval, "bucket", cfg.SyncS3Bucket)
			}
		}

		logger.Info("patrimonio server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if consumerCancel != nil {
			consumerCancel()
			logger.Info("HR consumer stopped")
		}

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if productCache != nil {
			if err := productCache.Close(); err != nil {
				logger.Error("error closing product cache", "err", err)
			}
		}
		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiranascan/backend/config"
	httpdelivery "github.com/kiranascan/backend/internal/delivery/http"
	"github.com/kiranascan/backend/internal/extract"
	"github.com/kiranascan/backend/internal/infrastructure/cache"
	"github.com/kiranascan/backend/internal/infrastructure/inventory"
	"github.com/kiranascan/backend/internal/infrastructure/ocr"
	"github.com/kiranascan/backend/internal/logging"
	"github.com/kiranascan/backend/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP server providing receipt upload, inventory management
and billing endpoints.

Examples:
  kiranascan serve
  KIRANASCAN_SERVER_PORT=9090 kiranascan serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log := logging.Setup(cfg.Log.Level, cfg.Log.File)

		engine := ocr.NewClient(ocr.Options{
			BaseURL:           cfg.OCR.BaseURL,
			Timeout:           cfg.OCR.Timeout,
			RequestsPerSecond: cfg.OCR.RequestsPerSecond,
			Burst:             cfg.OCR.Burst,
			Logger:            log,
		})

		store := inventory.NewMemoryStore()
		snapshots := cache.NewSnapshotCache(cfg.Cache.TTL)
		pipeline := extract.NewPipeline(extract.Config{
			Algorithm:         cfg.Matching.Algorithm,
			Mode:              extract.Mode(cfg.Matching.Mode),
			YTolerance:        cfg.Matching.YTolerance,
			MinLineConfidence: cfg.Matching.MinLineConfidence,
		}, log)

		receipts := usecase.NewReceiptService(
			engine, store, store.Receipts(), store.Bills(),
			snapshots, pipeline, ocr.Preprocess, log,
		)
		inv := usecase.NewInventoryService(store, snapshots, pipeline.Matcher(), usecase.InventoryServiceConfig{
			LowStockThreshold: cfg.Inventory.LowStockThreshold,
			ExpiryWarningDays: cfg.Inventory.ExpiryWarningDays,
		}, log)

		handler := httpdelivery.NewHandler(receipts, inv, cfg.OCR)
		router := httpdelivery.SetupRouter(cfg, handler, log)

		server := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("server starting")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case sig := <-quit:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

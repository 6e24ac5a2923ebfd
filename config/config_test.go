package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cleanupEnv := func() {
		os.Unsetenv("KIRANASCAN_SERVER_PORT")
		os.Unsetenv("KIRANASCAN_SERVER_ENVIRONMENT")
		os.Unsetenv("KIRANASCAN_OCR_BASE_URL")
		os.Unsetenv("KIRANASCAN_OCR_MAX_FILE_SIZE")
		os.Unsetenv("KIRANASCAN_MATCHING_ALGORITHM")
		os.Unsetenv("KIRANASCAN_MATCHING_MODE")
		os.Unsetenv("KIRANASCAN_MATCHING_Y_TOLERANCE")
		os.Unsetenv("KIRANASCAN_CACHE_TTL")
		os.Unsetenv("KIRANASCAN_RATELIMIT_PER_IP")
		os.Unsetenv("KIRANASCAN_LOG_LEVEL")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.OCR.BaseURL != "http://localhost:8868" {
			t.Errorf("OCR.BaseURL = %s, want http://localhost:8868", cfg.OCR.BaseURL)
		}
		if cfg.OCR.MaxFileSize != 5*1024*1024 {
			t.Errorf("OCR.MaxFileSize = %d, want 5MB", cfg.OCR.MaxFileSize)
		}
		if cfg.Matching.Algorithm != "edit-distance" {
			t.Errorf("Matching.Algorithm = %s, want edit-distance", cfg.Matching.Algorithm)
		}
		if cfg.Matching.Mode != "name-only" {
			t.Errorf("Matching.Mode = %s, want name-only", cfg.Matching.Mode)
		}
		if cfg.Matching.YTolerance != 30.0 {
			t.Errorf("Matching.YTolerance = %v, want 30", cfg.Matching.YTolerance)
		}
		if cfg.Cache.TTL != 5*time.Minute {
			t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
		}
		if cfg.Inventory.LowStockThreshold != 10.0 {
			t.Errorf("Inventory.LowStockThreshold = %v, want 10", cfg.Inventory.LowStockThreshold)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("KIRANASCAN_SERVER_PORT", "9090")
		os.Setenv("KIRANASCAN_SERVER_ENVIRONMENT", "production")
		os.Setenv("KIRANASCAN_OCR_BASE_URL", "http://ocr-sidecar:9000")
		os.Setenv("KIRANASCAN_MATCHING_ALGORITHM", "hybrid")
		os.Setenv("KIRANASCAN_MATCHING_MODE", "structured")
		os.Setenv("KIRANASCAN_CACHE_TTL", "1m")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.OCR.BaseURL != "http://ocr-sidecar:9000" {
			t.Errorf("OCR.BaseURL = %s, want http://ocr-sidecar:9000", cfg.OCR.BaseURL)
		}
		if cfg.Matching.Algorithm != "hybrid" {
			t.Errorf("Matching.Algorithm = %s, want hybrid", cfg.Matching.Algorithm)
		}
		if cfg.Matching.Mode != "structured" {
			t.Errorf("Matching.Mode = %s, want structured", cfg.Matching.Mode)
		}
		if cfg.Cache.TTL != time.Minute {
			t.Errorf("Cache.TTL = %v, want 1m", cfg.Cache.TTL)
		}
	})

	t.Run("rejects unknown matching algorithm", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("KIRANASCAN_MATCHING_ALGORITHM", "soundex")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want validation failure")
		}
	})

	t.Run("rejects unknown extraction mode", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("KIRANASCAN_MATCHING_MODE", "freeform")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want validation failure")
		}
	})
}

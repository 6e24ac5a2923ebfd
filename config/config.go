package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	OCR       OCRConfig
	Matching  MatchingConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Inventory InventoryConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OCRConfig holds OCR engine sidecar configuration
type OCRConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxFileSize       int64         `mapstructure:"max_file_size"`
	AllowedExtensions []string      `mapstructure:"allowed_extensions"`
}

// MatchingConfig holds fuzzy-matching and line-reconstruction configuration
type MatchingConfig struct {
	Algorithm          string  `mapstructure:"algorithm"` // "edit-distance" or "hybrid"
	Mode               string  `mapstructure:"mode"`      // "name-only" or "structured"
	YTolerance         float64 `mapstructure:"y_tolerance"`
	MinLineConfidence  float64 `mapstructure:"min_line_confidence"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds catalog snapshot cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP float64 `mapstructure:"per_ip"` // requests per second
	Burst int     `mapstructure:"burst"`
}

// InventoryConfig holds stock-level business thresholds
type InventoryConfig struct {
	LowStockThreshold float64 `mapstructure:"low_stock_threshold"`
	ExpiryWarningDays int     `mapstructure:"expiry_warning_days"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/kiranascan/")

	v.SetEnvPrefix("KIRANASCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("ocr.base_url", "http://localhost:8868")
	v.SetDefault("ocr.timeout", "30s")
	v.SetDefault("ocr.requests_per_second", 5.0)
	v.SetDefault("ocr.burst", 10)
	v.SetDefault("ocr.max_file_size", 5*1024*1024) // 5MB
	v.SetDefault("ocr.allowed_extensions", []string{"png", "jpg", "jpeg", "bmp", "tiff"})

	v.SetDefault("matching.algorithm", "edit-distance")
	v.SetDefault("matching.mode", "name-only")
	v.SetDefault("matching.y_tolerance", 30.0)
	v.SetDefault("matching.min_line_confidence", 0.25)
	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("ratelimit.per_ip", 10.0)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("inventory.low_stock_threshold", 10.0)
	v.SetDefault("inventory.expiry_warning_days", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/kiranascan.log")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OCR.BaseURL == "" {
		return fmt.Errorf("OCR engine base URL is required (set KIRANASCAN_OCR_BASE_URL)")
	}

	switch config.Matching.Algorithm {
	case "edit-distance", "hybrid":
	default:
		return fmt.Errorf("matching algorithm must be 'edit-distance' or 'hybrid', got: %s",
			config.Matching.Algorithm)
	}

	switch config.Matching.Mode {
	case "name-only", "structured":
	default:
		return fmt.Errorf("matching mode must be 'name-only' or 'structured', got: %s",
			config.Matching.Mode)
	}

	if config.Matching.YTolerance <= 0 {
		return fmt.Errorf("y_tolerance must be positive, got: %v", config.Matching.YTolerance)
	}

	if config.OCR.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got: %d", config.OCR.MaxFileSize)
	}

	return nil
}

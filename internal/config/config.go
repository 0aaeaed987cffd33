package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port string `yaml:"port"`

	// Database
	DBDriver string `yaml:"db_driver"` // "sqlite" | "postgres"
	DBPath   string `yaml:"db_path"`   // SQLite path
	DBUrl    string `yaml:"db_url"`    // Postgres DSN

	// Auth
	BootstrapAdminEmail    string `yaml:"bootstrap_admin_email"`
	BootstrapAdminPassword string `yaml:"bootstrap_admin_password"`
	TokenExpiryHours       int    `yaml:"token_expiry_hours"`

	// Security
	InternalSecret string `yaml:"internal_secret"` // shared secret for trigger → hub internal API

	// Advertising API
	AdsAPIBaseURL string `yaml:"ads_api_base_url"`

	// Outbound throttle defaults (token bucket registry)
	AdsRateRPS       float64 `yaml:"ads_rate_rps"` // <= 0 disables throttling
	AdsRateBurst     float64 `yaml:"ads_rate_burst"`
	AdsRateMaxWaitMs int     `yaml:"ads_rate_max_wait_ms"`

	// Inbound API throttle (per client IP); <= 0 disables
	APIRateRPS   float64 `yaml:"api_rate_rps"`
	APIRateBurst int     `yaml:"api_rate_burst"`

	// Optional collaborators
	RedisAddr      string `yaml:"redis_addr"`
	MinioEndpoint  string `yaml:"minio_endpoint"`
	MinioAccessKey string `yaml:"minio_access_key"`
	MinioSecretKey string `yaml:"minio_secret_key"`
	MinioBucket    string `yaml:"minio_bucket"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Load builds the config from defaults, an optional YAML file
// (PANEL_CONFIG_FILE), and finally environment overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             "8080",
		DBDriver:         "sqlite",
		DBPath:           "./data/panel.db",
		TokenExpiryHours: 720,
		AdsAPIBaseURL:    "https://api.adnetwork.example",
		AdsRateRPS:       2,
		AdsRateBurst:     5,
		AdsRateMaxWaitMs: 30000,
		APIRateRPS:       0,
		APIRateBurst:     20,
		LogLevel:         "info",
	}

	if path := os.Getenv("PANEL_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PANEL_PORT", cfg.Port)
	cfg.DBDriver = getEnv("PANEL_DB_DRIVER", cfg.DBDriver)
	cfg.DBPath = getEnv("PANEL_DB_PATH", cfg.DBPath)
	cfg.DBUrl = getEnv("PANEL_DATABASE_URL", cfg.DBUrl)
	cfg.BootstrapAdminEmail = getEnv("PANEL_BOOTSTRAP_EMAIL", cfg.BootstrapAdminEmail)
	cfg.BootstrapAdminPassword = getEnv("PANEL_BOOTSTRAP_PASSWORD", cfg.BootstrapAdminPassword)
	cfg.TokenExpiryHours = getEnvInt("PANEL_TOKEN_EXPIRY_HOURS", cfg.TokenExpiryHours)
	cfg.InternalSecret = getEnv("PANEL_INTERNAL_SECRET", cfg.InternalSecret)
	cfg.AdsAPIBaseURL = getEnv("PANEL_ADS_API_BASE_URL", cfg.AdsAPIBaseURL)
	cfg.AdsRateRPS = getEnvFloat("PANEL_ADS_RATE_RPS", cfg.AdsRateRPS)
	cfg.AdsRateBurst = getEnvFloat("PANEL_ADS_RATE_BURST", cfg.AdsRateBurst)
	cfg.AdsRateMaxWaitMs = getEnvInt("PANEL_ADS_RATE_MAX_WAIT_MS", cfg.AdsRateMaxWaitMs)
	cfg.APIRateRPS = getEnvFloat("PANEL_API_RATE_RPS", cfg.APIRateRPS)
	cfg.APIRateBurst = getEnvInt("PANEL_API_RATE_BURST", cfg.APIRateBurst)
	cfg.RedisAddr = getEnv("PANEL_REDIS_ADDR", cfg.RedisAddr)
	cfg.MinioEndpoint = getEnv("PANEL_MINIO_ENDPOINT", cfg.MinioEndpoint)
	cfg.MinioAccessKey = getEnv("PANEL_MINIO_ACCESS_KEY", cfg.MinioAccessKey)
	cfg.MinioSecretKey = getEnv("PANEL_MINIO_SECRET_KEY", cfg.MinioSecretKey)
	cfg.MinioBucket = getEnv("PANEL_MINIO_BUCKET", cfg.MinioBucket)
	if v := os.Getenv("PANEL_MINIO_USE_SSL"); v != "" {
		cfg.MinioUseSSL = v == "1" || v == "true"
	}
	cfg.LogLevel = getEnv("PANEL_LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

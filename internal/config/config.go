// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port        int    `yaml:"port"`
	BackendURL  string `yaml:"backend_url"`  // public base for webhook notify URLs
	FrontendURL string `yaml:"frontend_url"` // redirect targets after checkout
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CinetPayConfig struct {
	SecretKey string `yaml:"secret_key"`
}

type PayDunyaConfig struct {
	SecretKey string `yaml:"secret_key"`
	MasterKey string `yaml:"master_key"`
	BaseURL   string `yaml:"base_url"` // override for sandbox
}

type PaymentConfig struct {
	CinetPay CinetPayConfig `yaml:"cinetpay"`
	PayDunya PayDunyaConfig `yaml:"paydunya"`
	// EnableTestEndpoints exposes the webhook synthesizer routes. Never enable
	// in production.
	EnableTestEndpoints bool `yaml:"enable_test_endpoints"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type SchedulerConfig struct {
	ExpiryInterval    time.Duration `yaml:"expiry_interval"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	ReconcileBatch    int           `yaml:"reconcile_batch"`
}

type NotificationConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Workers  int    `yaml:"workers"`
}

type RateLimitConfig struct {
	WebhookPerMinute int `yaml:"webhook_per_minute"`
}

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Payment      PaymentConfig      `yaml:"payment"`
	Auth         AuthConfig         `yaml:"auth"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Notification NotificationConfig `yaml:"notification"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = time.Hour
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = 6 * time.Hour
	}
	if cfg.Scheduler.ReconcileBatch <= 0 {
		cfg.Scheduler.ReconcileBatch = 50
	}
	if cfg.Notification.Workers <= 0 {
		cfg.Notification.Workers = 4
	}
	if cfg.RateLimit.WebhookPerMinute <= 0 {
		cfg.RateLimit.WebhookPerMinute = 120
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.Payment.CinetPay.SecretKey == "" && cfg.Payment.PayDunya.SecretKey == "" {
		return nil, errors.New("at least one payment provider must be configured")
	}
	if cfg.Payment.EnableTestEndpoints && !dev {
		return nil, errors.New("payment.enable_test_endpoints requires -dev")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// Package config содержит логику чтения конфигурации витрины.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации витрины.
//
// Все секреты имеют небезопасные значения по умолчанию для локальной разработки
// и должны переопределяться в production.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`

	SessionSecret string `env:"JWT_SECRET" envDefault:"default-secret-key-change-me-in-production"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	Currency            string `env:"STRIPE_CURRENCY" envDefault:"eur"`
	PublicBaseURL       string `env:"PUBLIC_BASE_URL"`

	OwnerOpenID string `env:"OWNER_OPEN_ID"`
	OwnerName   string `env:"OWNER_NAME"`
	OwnerEmail  string `env:"OWNER_EMAIL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	RedisAddr          string        `env:"REDIS_ADDR"`
	CheckoutRateLimit  int           `env:"CHECKOUT_RATE_LIMIT" envDefault:"10"`
	CheckoutRateWindow time.Duration `env:"CHECKOUT_RATE_WINDOW" envDefault:"1m"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogProduction bool   `env:"LOG_PRODUCTION"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if cfg.CheckoutRateLimit <= 0 {
		return nil, fmt.Errorf("CHECKOUT_RATE_LIMIT must be > 0")
	}
	if cfg.CheckoutRateWindow < time.Second {
		return nil, fmt.Errorf("CHECKOUT_RATE_WINDOW must be at least 1s")
	}

	return cfg, nil
}

// SMTPEnabled сообщает, настроена ли отправка почты.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.OwnerEmail != ""
}

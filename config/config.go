package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Gateway       GatewayConfig
	DirectGateway DirectGatewayConfig
	BnplA         BnplConfig
	BnplB         BnplConfig
	Mail          MailConfig
	Payment       PaymentConfig
	Admin         AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// GatewayConfig holds credentials for the card gateway (hosted checkout
// sessions, signed webhooks, line-item listing).
type GatewayConfig struct {
	SecretKey     string
	WebhookSecret string
}

// DirectGatewayConfig covers the direct-charge provider, which confirms via
// an HMAC-signed webhook only.
type DirectGatewayConfig struct {
	WebhookSecret string
}

// BnplConfig covers a redirect-based buy-now-pay-later provider.
type BnplConfig struct {
	BaseURL string
	APIKey  string
}

type MailConfig struct {
	BaseURL string
	APIKey  string
	From    string
}

type PaymentConfig struct {
	// PipelineBudget bounds document generation and email after a
	// confirmation is materialized. Work past the budget degrades to a
	// logged failure instead of holding the request open.
	PipelineBudget time.Duration
	SuccessURL     string
	ErrorURL       string
}

type AdminConfig struct {
	SeedEmail    string
	SeedPassword string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "vital:vital@tcp(localhost:3306)/vital?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getint("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getint("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getdur("JWT_ACCESS_EXPIRY", 8*time.Hour),
			Issuer:       "vital",
		},
		Gateway: GatewayConfig{
			SecretKey:     os.Getenv("GATEWAY_SECRET_KEY"),
			WebhookSecret: os.Getenv("GATEWAY_WEBHOOK_SECRET"),
		},
		DirectGateway: DirectGatewayConfig{
			WebhookSecret: os.Getenv("DIRECT_WEBHOOK_SECRET"),
		},
		BnplA: BnplConfig{
			BaseURL: getenv("BNPL_A_BASE_URL", "https://api.bnpl-a.example.com"),
			APIKey:  os.Getenv("BNPL_A_API_KEY"),
		},
		BnplB: BnplConfig{
			BaseURL: getenv("BNPL_B_BASE_URL", "https://api.bnpl-b.example.com"),
			APIKey:  os.Getenv("BNPL_B_API_KEY"),
		},
		Mail: MailConfig{
			BaseURL: getenv("MAIL_API_BASE_URL", "https://api.mail.example.com"),
			APIKey:  os.Getenv("MAIL_API_KEY"),
			From:    getenv("MAIL_FROM", "care@vital.example.com"),
		},
		Payment: PaymentConfig{
			PipelineBudget: getdur("PAYMENT_PIPELINE_BUDGET", 5*time.Second),
			SuccessURL:     getenv("CHECKOUT_SUCCESS_URL", "/checkout/success"),
			ErrorURL:       getenv("CHECKOUT_ERROR_URL", "/checkout/error"),
		},
		Admin: AdminConfig{
			SeedEmail:    getenv("ADMIN_EMAIL", "support@vital.example.com"),
			SeedPassword: os.Getenv("ADMIN_PASSWORD"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

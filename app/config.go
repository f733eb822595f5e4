package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/cozn1l/gorosso/core/config"
	coredatabase "github.com/cozn1l/gorosso/core/database"
)

// PaymentsConfig holds Telegram Payments settings.
type PaymentsConfig struct {
	ProviderToken string `yaml:"provider_token" envconfig:"PAYMENTS_PROVIDER_TOKEN"`
	Currency      string `yaml:"currency" envconfig:"PAYMENTS_CURRENCY"`
	InvoiceTitle  string `yaml:"invoice_title" envconfig:"PAYMENTS_INVOICE_TITLE"`
	// PendingTTLMinutes bounds how long an unpaid invoice stays redeemable.
	PendingTTLMinutes    int `yaml:"pending_ttl_minutes" envconfig:"PAYMENTS_PENDING_TTL_MINUTES"`
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes" envconfig:"PAYMENTS_SWEEP_INTERVAL_MINUTES"`
}

// PendingTTL returns the reservation lifetime.
func (p PaymentsConfig) PendingTTL() time.Duration {
	return time.Duration(p.PendingTTLMinutes) * time.Minute
}

// SweepInterval returns how often stale reservations are removed.
func (p PaymentsConfig) SweepInterval() time.Duration {
	return time.Duration(p.SweepIntervalMinutes) * time.Minute
}

// APIConfig configures the storefront read API listener.
type APIConfig struct {
	Listen         string   `yaml:"listen" envconfig:"API_LISTEN"`
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"API_ALLOWED_ORIGINS"`
}

// RedisConfig configures the wizard session store. An empty Addr keeps
// sessions in process memory.
type RedisConfig struct {
	Addr              string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password          string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB                int    `yaml:"db" envconfig:"REDIS_DB"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes" envconfig:"REDIS_SESSION_TTL_MINUTES"`
}

// SessionTTL returns how long an abandoned wizard session survives in Redis.
func (r RedisConfig) SessionTTL() time.Duration {
	return time.Duration(r.SessionTTLMinutes) * time.Minute
}

// ShopConfig holds storefront texts and the webapp URL.
type ShopConfig struct {
	WebAppURL string `yaml:"webapp_url" envconfig:"SHOP_WEBAPP_URL"`
	Contacts  string `yaml:"contacts" envconfig:"SHOP_CONTACTS"`
}

// Config aggregates core and shop configuration loaded from YAML plus env.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Payments PaymentsConfig      `yaml:"payments"`
	API      APIConfig           `yaml:"api"`
	Redis    RedisConfig         `yaml:"redis"`
	Shop     ShopConfig          `yaml:"shop"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// Load reads the YAML config, overlays environment variables (a local .env
// is picked up when present), and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Payments.ProviderToken) == "" {
		return fmt.Errorf("payments.provider_token is required")
	}
	if strings.TrimSpace(cfg.Shop.WebAppURL) == "" {
		return fmt.Errorf("shop.webapp_url is required")
	}
	if cfg.Payments.Currency == "" {
		cfg.Payments.Currency = "RUB"
	}
	if cfg.Payments.InvoiceTitle == "" {
		cfg.Payments.InvoiceTitle = "Gorosso order"
	}
	if cfg.Payments.PendingTTLMinutes <= 0 {
		cfg.Payments.PendingTTLMinutes = 30
	}
	if cfg.Payments.SweepIntervalMinutes <= 0 {
		cfg.Payments.SweepIntervalMinutes = 5
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = ":8081"
	}
	if cfg.Redis.SessionTTLMinutes <= 0 {
		cfg.Redis.SessionTTLMinutes = 30
	}
	if cfg.Shop.Contacts == "" {
		cfg.Shop.Contacts = "Write to us: @gorosso_support"
	}
	return nil
}

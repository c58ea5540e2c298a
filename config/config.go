package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`
	// Comma-separated IPs or CIDRs whose forwarding headers are believed.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// MongoDB. A DATABASE_URL of "memory://" selects the in-process store.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Credentials.
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS"`

	// Redis: pub/sub fan-out and the reminder queue live in separate DBs.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisPubSubDB int    `mapstructure:"REDIS_PUBSUB_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Pricing.
	DefaultPricePerHour      float64 `mapstructure:"DEFAULT_PRICE_PER_HOUR"`
	DefaultCommissionPercent float64 `mapstructure:"DEFAULT_COMMISSION_PERCENT"`

	ReminderLeadMinutes int `mapstructure:"REMINDER_LEAD_MINUTES"`

	// Payments.
	StripeKey       string `mapstructure:"STRIPE_KEY"`
	PaymentCurrency string `mapstructure:"PAYMENT_CURRENCY"`
}

const developmentSecret = "companionhub_jwt_secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "companionhub")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL_HOURS", 720)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_PUBSUB_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("DEFAULT_PRICE_PER_HOUR", 500)
	v.SetDefault("DEFAULT_COMMISSION_PERCENT", 20)
	v.SetDefault("REMINDER_LEAD_MINUTES", 60)
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("PAYMENT_CURRENCY", "inr")
}

// LoadConfig reads config.yaml from "." or "./config", overlays environment
// variables and validates the result.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = developmentSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required in production")
	}
	if c.DefaultCommissionPercent < 0 || c.DefaultCommissionPercent > 100 {
		problems = append(problems, "DEFAULT_COMMISSION_PERCENT must be within [0,100]")
	}
	if c.DefaultPricePerHour < 0 {
		problems = append(problems, "DEFAULT_PRICE_PER_HOUR must not be negative")
	}
	if c.MaxRequestsPerMin <= 0 {
		problems = append(problems, "MAX_REQUESTS_PER_MIN must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesMemoryStore reports whether the in-process store was selected.
func (c *Config) UsesMemoryStore() bool {
	return strings.HasPrefix(c.DatabaseURL, "memory://")
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadMinutes) * time.Minute
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// TrustedProxyList splits TRUSTED_PROXIES on commas. Nil means no proxy is
// trusted and clients are keyed by their socket address.
func (c *Config) TrustedProxyList() []string {
	var proxies []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Database   DatabaseConfig  `yaml:"database"`
	Log        LogConfig       `yaml:"log"`
	Cache      CacheConfig     `yaml:"cache"`
	References ReferenceConfig `yaml:"references"`
	Scheduler  SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	CorsAllowedOrigins []string `yaml:"cors_allowed_origins"`
	ShutdownTimeoutSec int      `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// CacheConfig selects where reference data such as the customer list is cached
type CacheConfig struct {
	Type          string `yaml:"type"` // "memory" or "redis"
	TTLSeconds    int    `yaml:"ttl_seconds"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// ReferenceConfig controls internal payment reference numbering
type ReferenceConfig struct {
	PaymentPrefix string `yaml:"payment_prefix"`
	// InvoiceMonthPolicy applies when the reference follows the invoice's issue month.
	InvoiceMonthPolicy string `yaml:"invoice_month_policy"`
	// TodayPolicy applies when the reference follows today's date.
	TodayPolicy string `yaml:"today_policy"`
	// NumberByInvoiceMonth picks the invoice issue month as the scope for new payments.
	NumberByInvoiceMonth bool `yaml:"number_by_invoice_month"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReconcileInvoiceBalances string `yaml:"reconcile_invoice_balances"`
	TransitionDayDigest      string `yaml:"transition_day_digest"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies environment overrides and validates
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		c.Server.CorsAllowedOrigins = strings.Split(val, ",")
	}

	// Cache
	if val := os.Getenv("CACHE_TYPE"); val != "" {
		c.Cache.Type = val
	}
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Cache.RedisAddr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Cache.RedisPassword = val
	}

	// References
	if val := os.Getenv("REFERENCE_PREFIX"); val != "" {
		c.References.PaymentPrefix = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeoutSec == 0 {
		c.Server.ShutdownTimeoutSec = 10
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Cache
	switch c.Cache.Type {
	case "":
		c.Cache.Type = "memory"
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address is required when cache type is redis")
		}
	default:
		return fmt.Errorf("unsupported cache type: %s", c.Cache.Type)
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}

	// References
	if c.References.PaymentPrefix == "" {
		c.References.PaymentPrefix = "RV"
	}
	if c.References.InvoiceMonthPolicy == "" {
		c.References.InvoiceMonthPolicy = "max-plus-one"
	}
	if c.References.TodayPolicy == "" {
		c.References.TodayPolicy = "first-gap"
	}
	for _, p := range []string{c.References.InvoiceMonthPolicy, c.References.TodayPolicy} {
		if p != "max-plus-one" && p != "first-gap" {
			return fmt.Errorf("invalid reference policy: %s", p)
		}
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileInvoiceBalances == "" {
		c.Scheduler.ReconcileInvoiceBalances = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.TransitionDayDigest == "" {
		c.Scheduler.TransitionDayDigest = "0 30 5 * * *" // 5:30 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

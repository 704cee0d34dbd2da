package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Document   DocumentConfig   `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Cache      CacheConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// DocumentConfig configures the postgres-backed document store
type DocumentConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
	AutoMigrate            bool
}

// BillingConfig carries billing-run defaults
type BillingConfig struct {
	// DefaultDueDay applies when a property has no due day configured
	DefaultDueDay int `validate:"required,min=1,max=31"`
	// ConsolidationMethod is the default balance carry-forward mode
	ConsolidationMethod types.ConsolidationMethod `validate:"required"`
	// LeaseExpiryWarningDays is how far ahead expiry warnings are queued
	LeaseExpiryWarningDays int
}

type CacheConfig struct {
	Enabled bool
}

func NewConfig() (*Configuration, error) {
	// Load .env if present; ignore the error as env vars may come from the
	// environment directly.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/leaseledger")

	v.SetEnvPrefix("LEASELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("document.host", "localhost")
	v.SetDefault("document.port", 5432)
	v.SetDefault("document.user", "leaseledger")
	v.SetDefault("document.dbname", "leaseledger")
	v.SetDefault("document.sslmode", "disable")
	v.SetDefault("document.maxopenconns", 10)
	v.SetDefault("document.maxidleconns", 5)
	v.SetDefault("document.connmaxlifetimeminutes", 30)
	v.SetDefault("document.automigrate", true)
	v.SetDefault("billing.defaultdueday", 5)
	v.SetDefault("billing.consolidationmethod", string(types.ConsolidationMethodSum))
	v.SetDefault("billing.leaseexpirywarningdays", 60)
	v.SetDefault("cache.enabled", true)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.Billing.ConsolidationMethod.Validate()
}

// GetDSN returns the postgres connection string for the document store
func (c DocumentConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

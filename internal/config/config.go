// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Currency struct {
		Reporting       string             `mapstructure:"reporting" yaml:"reporting"`
		RateURL         string             `mapstructure:"rate_url" yaml:"rate_url"`
		TimeoutSeconds  int                `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		CacheTTLMinutes int                `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
		FallbackRates   map[string]float64 `mapstructure:"fallback_rates" yaml:"fallback_rates"`
	} `mapstructure:"currency" yaml:"currency"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Rules struct {
		CacheTTLMinutes int `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
	} `mapstructure:"rules" yaml:"rules"`

	Store struct {
		RulesFile       string `mapstructure:"rules_file" yaml:"rules_file"`
		CategoriesFile  string `mapstructure:"categories_file" yaml:"categories_file"`
		TransactionsDir string `mapstructure:"transactions_dir" yaml:"transactions_dir"`
	} `mapstructure:"store" yaml:"store"`

	Upload struct {
		MaxSizeBytes int64 `mapstructure:"max_size_bytes" yaml:"max_size_bytes"`
	} `mapstructure:"upload" yaml:"upload"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then config file, then PNL_-prefixed environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.pnl-csv")
	v.AddConfigPath(".pnl-csv")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PNL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// API key always comes from the environment, not prefixed
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("currency.reporting", "PLN")
	v.SetDefault("currency.rate_url", "https://api.exchangerate-api.com/v4/latest")
	v.SetDefault("currency.timeout_seconds", 5)
	v.SetDefault("currency.cache_ttl_minutes", 60)
	v.SetDefault("currency.fallback_rates", map[string]float64{
		"USD": 4.2,
		"EUR": 4.5,
		"GBP": 5.3,
		"CHF": 4.7,
	})

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("rules.cache_ttl_minutes", 5)

	v.SetDefault("store.rules_file", "rules.yaml")
	v.SetDefault("store.categories_file", "categories.yaml")
	v.SetDefault("store.transactions_dir", "transactions")

	v.SetDefault("upload.max_size_bytes", int64(10*1024*1024))
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.Currency.Reporting) != 3 {
		return fmt.Errorf("reporting currency must be a 3-letter code, got: %s", config.Currency.Reporting)
	}
	config.Currency.Reporting = strings.ToUpper(config.Currency.Reporting)

	if config.Currency.TimeoutSeconds < 1 || config.Currency.TimeoutSeconds > 60 {
		return fmt.Errorf("currency.timeout_seconds must be between 1 and 60, got: %d", config.Currency.TimeoutSeconds)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	if config.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload.max_size_bytes must be positive, got: %d", config.Upload.MaxSizeBytes)
	}

	return nil
}

// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.samarth/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - AI: Gemini model selection, temperature, max output tokens
//   - DataGov: data.gov.in API endpoint, paging and rate limits (see datagov settings below)
//   - Storage: PostgreSQL connection for the dataset catalog (see storage.go)
//   - Interpreter: dataset and row budgets for LLM interpretation
//   - Observability: OTLP trace export (see observability.go)
//
// Security: API keys are never logged; the config directory uses 0750 permissions.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidBaseURL indicates the data.gov.in base URL is invalid.
	ErrInvalidBaseURL = errors.New("invalid data.gov.in base URL")

	// ErrInvalidPageLimit indicates the per-page record limit is out of range.
	ErrInvalidPageLimit = errors.New("invalid page limit")

	// ErrInvalidDatasetBudget indicates the dataset or row budget is out of range.
	ErrInvalidDatasetBudget = errors.New("invalid dataset budget")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

const (
	// DefaultModelName is the Gemini model used for all pipeline calls.
	// Flash Lite keeps per-question cost low; every answer involves up to
	// four generate calls (keywords, categorize, filter, interpret).
	DefaultModelName = "gemini-2.0-flash-lite"

	// DefaultDataGovBaseURL is the public data.gov.in API endpoint.
	DefaultDataGovBaseURL = "https://api.data.gov.in"

	// DefaultMaxDatasets caps how many datasets are sent to the LLM per question.
	DefaultMaxDatasets = 5

	// DefaultMaxRowsPerDataset caps sampled rows per dataset in the prompt.
	DefaultMaxRowsPerDataset = 500

	// MaxAllowedRowsPerDataset is the absolute row cap to bound prompt size.
	MaxAllowedRowsPerDataset = 2000
)

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (passwords, API keys, tokens), update MarshalJSON.
type Config struct {
	// Gemini model configuration
	ModelName   string  `mapstructure:"model_name" json:"model_name"`
	Temperature float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`

	// data.gov.in client configuration
	DataGovBaseURL string `mapstructure:"datagov_base_url" json:"datagov_base_url"`
	DataGovAPIKey  string `mapstructure:"datagov_api_key" json:"datagov_api_key"` // SENSITIVE: masked in MarshalJSON
	PageLimit      int    `mapstructure:"page_limit" json:"page_limit"`
	MaxPages       int    `mapstructure:"max_pages" json:"max_pages"`
	FetchTimeoutMs int    `mapstructure:"fetch_timeout_ms" json:"fetch_timeout_ms"`

	// Interpretation budgets
	MaxDatasets       int  `mapstructure:"max_datasets" json:"max_datasets"`
	MaxRowsPerDataset int  `mapstructure:"max_rows_per_dataset" json:"max_rows_per_dataset"`
	AutoDiscover      bool `mapstructure:"auto_discover" json:"auto_discover"`

	// Cache configuration
	CacheDir    string `mapstructure:"cache_dir" json:"cache_dir"`
	CacheTTLMin int    `mapstructure:"cache_ttl_min" json:"cache_ttl_min"`

	// Storage configuration (see storage.go for documentation)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Observability configuration (see observability.go for type definition)
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// Configuration directory: ~/.samarth/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".samarth")

	// Ensure directory exists (use 0750 permission for better security)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	// Configure Viper
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults(configDir)
	bindEnvVariables()

	// Read configuration file (if exists)
	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	// Use Unmarshal to automatically map to struct (type-safe)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Parse DATABASE_URL if set (highest priority for PostgreSQL config)
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(configDir string) {
	// Gemini defaults
	viper.SetDefault("model_name", DefaultModelName)
	viper.SetDefault("temperature", 0.7)
	viper.SetDefault("max_tokens", 4096)

	// data.gov.in defaults
	viper.SetDefault("datagov_base_url", DefaultDataGovBaseURL)
	viper.SetDefault("page_limit", 1000)
	viper.SetDefault("max_pages", 10)
	viper.SetDefault("fetch_timeout_ms", 30000)

	// Interpretation defaults
	viper.SetDefault("max_datasets", DefaultMaxDatasets)
	viper.SetDefault("max_rows_per_dataset", DefaultMaxRowsPerDataset)
	viper.SetDefault("auto_discover", true)

	// Cache defaults
	viper.SetDefault("cache_dir", filepath.Join(configDir, "cache"))
	viper.SetDefault("cache_ttl_min", 24*60)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "samarth")
	viper.SetDefault("postgres_password", "samarth_dev_password")
	viper.SetDefault("postgres_db_name", "samarth")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// Tracing defaults
	viper.SetDefault("tracing.endpoint", "localhost:4318")
	viper.SetDefault("tracing.environment", "dev")
	viper.SetDefault("tracing.service_name", "samarth")
}

// bindEnvVariables binds environment variables explicitly.
//
// Secrets:
//  1. DATA_GOV_API_KEY - data.gov.in API key (required for discovery/fetch)
//  2. GEMINI_API_KEY - read directly by Genkit (not via Viper); presence is
//     checked in ValidateOnline()
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail)
	// If this panics, it's a BUG in our code, not a runtime error
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("datagov_api_key", "DATA_GOV_API_KEY")
	mustBind("datagov_base_url", "SAMARTH_DATAGOV_BASE_URL")
	mustBind("model_name", "SAMARTH_MODEL_NAME")
	mustBind("cache_dir", "SAMARTH_CACHE_DIR")
	mustBind("auto_discover", "SAMARTH_AUTO_DISCOVER")

	// NOTE: GEMINI_API_KEY is read directly by Genkit, not via Viper.
	// ValidateOnline checks its presence before any pipeline run.
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) avoid substring matching against real secrets.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Shows first 2 and last 2 characters, masks the rest.
// SECURITY: For secrets <=8 chars, fully masks to prevent substring attacks.
//
// THREAT MODEL: This defends against accidental logging of real secrets.
// It is NOT cryptographically secure - if logs are compromised, rotate secrets.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	prefix := make([]byte, 2)
	suffix := make([]byte, 2)
	copy(prefix, s[:2])
	copy(suffix, s[len(s)-2:])
	return string(prefix) + "<" + maskedValue + ">" + string(suffix)
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - DataGovAPIKey
//   - PostgresPassword
//
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.DataGovAPIKey = maskSecret(a.DataGovAPIKey)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// FullModelName returns the provider-qualified model name for Genkit.
// Example: "googleai/gemini-2.0-flash-lite".
func (c *Config) FullModelName() string {
	return "googleai/" + c.ModelName
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

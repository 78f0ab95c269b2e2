package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config represents the application configuration
type Config struct {
	Engine        EngineConfig                `json:"engine"`
	LLM           LLMConfig                   `json:"llm"`
	Cache         CacheConfig                 `json:"cache"`
	Logging       LoggingConfig               `json:"logging"`
	Datasources   map[string]DatasourceConfig `json:"datasources"`
	StaticOptions map[string][]StaticOption   `json:"static_options"`
}

// EngineConfig represents SQL generation engine configuration
type EngineConfig struct {
	Enabled               bool   `json:"enabled"                 env:"ENABLED"                 envDefault:"true"`
	SchemaFilterThreshold int    `json:"schema_filter_threshold" env:"SCHEMA_FILTER_THRESHOLD" envDefault:"10"`
	DefaultDialect        string `json:"default_dialect"         env:"DEFAULT_DIALECT"         envDefault:"mysql"`
	ExecutionMaxRows      int    `json:"execution_max_rows"      env:"EXECUTION_MAX_ROWS"      envDefault:"1000"`
}

// LLMConfig represents language model client configuration
type LLMConfig struct {
	Provider    string  `json:"provider"    env:"LLM_PROVIDER"    envDefault:"openai"`
	Model       string  `json:"model"       env:"LLM_MODEL"       envDefault:"gpt-4"`
	APIKey      string  `json:"api_key"     env:"LLM_API_KEY"`
	BaseURL     string  `json:"base_url"    env:"LLM_BASE_URL"`
	Temperature float64 `json:"temperature" env:"LLM_TEMPERATURE" envDefault:"0.1"`
	MaxTokens   int     `json:"max_tokens"  env:"LLM_MAX_TOKENS"  envDefault:"1000"`
}

// CacheConfig represents option cache configuration
type CacheConfig struct {
	Enabled    bool `json:"enabled"     env:"CACHE_ENABLED"     envDefault:"true"`
	TTLSeconds int  `json:"ttl_seconds" env:"CACHE_TTL_SECONDS" envDefault:"300"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"`   // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"`   // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stderr"` // stdout, stderr
}

// DatasourceConfig describes one tenant datasource. The map key in
// Config.Datasources is the system identifier.
type DatasourceConfig struct {
	Driver  string `json:"driver"`
	DSN     string `json:"dsn"`
	Dialect string `json:"dialect"`
}

// StaticOption is one entry of a fixed option list. The map key in
// Config.StaticOptions is the source key callers pass to skip SQL
// generation entirely.
type StaticOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag overrides
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	config := &Config{}

	// Load from config file if it exists
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Apply environment variable overrides using env library (also sets defaults)
	if err := env.ParseWithOptions(config, env.Options{
		Prefix: "NL2SQL_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if flagOverrides != nil {
		applyFlagOverrides(config, flagOverrides)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "model":
			if str, ok := value.(string); ok && str != "" {
				config.LLM.Model = str
			}
		case "filter-threshold":
			if n, ok := value.(int); ok && n > 0 {
				config.Engine.SchemaFilterThreshold = n
			}
		case "max-rows":
			if n, ok := value.(int); ok && n > 0 {
				config.Engine.ExecutionMaxRows = n
			}
		}
	}
}

// mergeConfigs merges source configuration into target configuration
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := 0; i < s.NumField(); i++ {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if s.Kind() == reflect.Bool {
			t.Set(s)
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout or stderr)",
			config.Logging.Output,
		)
	}

	if config.Engine.SchemaFilterThreshold <= 0 {
		return fmt.Errorf(
			"schema filter threshold must be positive: %d",
			config.Engine.SchemaFilterThreshold,
		)
	}

	if config.Engine.ExecutionMaxRows <= 0 {
		return fmt.Errorf(
			"execution max rows must be positive: %d",
			config.Engine.ExecutionMaxRows,
		)
	}

	if config.LLM.Temperature < 0 || config.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature out of range: %f", config.LLM.Temperature)
	}

	if config.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache ttl must be positive: %d", config.Cache.TTLSeconds)
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv("NL2SQL_CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", "nl2sql", "config.json")
}

// expandPath expands ~ to home directory in file paths
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// GetConfigDir returns the configuration directory
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".config/nl2sql"
	}

	return filepath.Join(homeDir, ".config", "nl2sql")
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	tempConfigPath := filepath.Join(t.TempDir(), "missing.json")
	t.Setenv("NL2SQL_CONFIG", tempConfigPath)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Engine.Enabled)
	assert.Equal(t, 10, cfg.Engine.SchemaFilterThreshold)
	assert.Equal(t, "mysql", cfg.Engine.DefaultDialect)
	assert.Equal(t, 1000, cfg.Engine.ExecutionMaxRows)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 0.001)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadConfigFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	testConfig := map[string]interface{}{
		"engine": map[string]interface{}{
			"schema_filter_threshold": 20,
			"default_dialect":         "postgresql",
		},
		"logging": map[string]interface{}{
			"level":  "debug",
			"format": "json",
		},
		"datasources": map[string]interface{}{
			"hr": map[string]interface{}{
				"driver":  "postgres",
				"dsn":     "postgres://localhost/hr",
				"dialect": "postgresql",
			},
		},
		"static_options": map[string]interface{}{
			"yes_no": []map[string]interface{}{
				{"label": "Yes", "value": "1"},
				{"label": "No", "value": "0"},
			},
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	require.NoError(t, err)

	err = os.WriteFile(configPath, data, 0600)
	require.NoError(t, err)

	config := &Config{}
	err = loadConfigFromFile(config, configPath)
	require.NoError(t, err)

	assert.Equal(t, 20, config.Engine.SchemaFilterThreshold)
	assert.Equal(t, "postgresql", config.Engine.DefaultDialect)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	require.Contains(t, config.Datasources, "hr")
	assert.Equal(t, "postgres", config.Datasources["hr"].Driver)
	assert.Equal(t, "postgresql", config.Datasources["hr"].Dialect)
	require.Contains(t, config.StaticOptions, "yes_no")
	assert.Equal(t, StaticOption{Label: "Yes", Value: "1"}, config.StaticOptions["yes_no"][0])
}

func TestLoadConfigFromFileInvalidJSON(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	err := os.WriteFile(configPath, []byte("invalid json"), 0600)
	require.NoError(t, err)

	config := &Config{}
	err = loadConfigFromFile(config, configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestEnvironmentOverrides(t *testing.T) {
	tempConfigPath := filepath.Join(t.TempDir(), "missing.json")
	t.Setenv("NL2SQL_CONFIG", tempConfigPath)

	envVars := map[string]string{
		"NL2SQL_SCHEMA_FILTER_THRESHOLD": "25",
		"NL2SQL_DEFAULT_DIALECT":         "postgresql",
		"NL2SQL_EXECUTION_MAX_ROWS":      "500",
		"NL2SQL_LLM_PROVIDER":            "ollama",
		"NL2SQL_LLM_MODEL":               "codellama",
		"NL2SQL_LLM_MAX_TOKENS":          "2000",
		"NL2SQL_CACHE_TTL_SECONDS":       "60",
		"NL2SQL_LOG_LEVEL":               "warn",
		"NL2SQL_LOG_FORMAT":              "json",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, config.Engine.SchemaFilterThreshold)
	assert.Equal(t, "postgresql", config.Engine.DefaultDialect)
	assert.Equal(t, 500, config.Engine.ExecutionMaxRows)
	assert.Equal(t, "ollama", config.LLM.Provider)
	assert.Equal(t, "codellama", config.LLM.Model)
	assert.Equal(t, 2000, config.LLM.MaxTokens)
	assert.Equal(t, 60, config.Cache.TTLSeconds)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestApplyFlagOverrides(t *testing.T) {
	tempConfigPath := filepath.Join(t.TempDir(), "missing.json")
	t.Setenv("NL2SQL_CONFIG", tempConfigPath)

	overrides := map[string]interface{}{
		"log-level":        "error",
		"model":            "gpt-3.5-turbo",
		"filter-threshold": 15,
		"max-rows":         100,
	}

	config, err := LoadConfigWithOverrides(overrides)
	require.NoError(t, err)

	assert.Equal(t, "error", config.Logging.Level)
	assert.Equal(t, "gpt-3.5-turbo", config.LLM.Model)
	assert.Equal(t, 15, config.Engine.SchemaFilterThreshold)
	assert.Equal(t, 100, config.Engine.ExecutionMaxRows)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Engine: EngineConfig{
				Enabled:               true,
				SchemaFilterThreshold: 10,
				DefaultDialect:        "mysql",
				ExecutionMaxRows:      1000,
			},
			LLM:     LLMConfig{Provider: "openai", Model: "gpt-4", Temperature: 0.1, MaxTokens: 1000},
			Cache:   CacheConfig{Enabled: true, TTLSeconds: 300},
			Logging: LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
		}
	}

	tests := []struct {
		name          string
		modifyConfig  func(*Config)
		expectError   bool
		errorContains string
	}{
		{
			name:         "valid config",
			modifyConfig: func(_ *Config) {},
			expectError:  false,
		},
		{
			name: "invalid log level",
			modifyConfig: func(c *Config) {
				c.Logging.Level = "invalid"
			},
			expectError:   true,
			errorContains: "invalid log level",
		},
		{
			name: "invalid log format",
			modifyConfig: func(c *Config) {
				c.Logging.Format = "invalid"
			},
			expectError:   true,
			errorContains: "invalid log format",
		},
		{
			name: "invalid log output",
			modifyConfig: func(c *Config) {
				c.Logging.Output = "file"
			},
			expectError:   true,
			errorContains: "invalid log output",
		},
		{
			name: "non-positive filter threshold",
			modifyConfig: func(c *Config) {
				c.Engine.SchemaFilterThreshold = 0
			},
			expectError:   true,
			errorContains: "schema filter threshold must be positive",
		},
		{
			name: "non-positive max rows",
			modifyConfig: func(c *Config) {
				c.Engine.ExecutionMaxRows = -1
			},
			expectError:   true,
			errorContains: "execution max rows must be positive",
		},
		{
			name: "temperature out of range",
			modifyConfig: func(c *Config) {
				c.LLM.Temperature = 3.0
			},
			expectError:   true,
			errorContains: "temperature out of range",
		},
		{
			name: "non-positive cache ttl",
			modifyConfig: func(c *Config) {
				c.Cache.TTLSeconds = 0
			},
			expectError:   true,
			errorContains: "cache ttl must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.modifyConfig(config)

			err := validateConfig(config)
			if tt.expectError {
				assert.Error(t, err)

				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "absolute path",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:     "relative path",
			input:    "relative/path",
			expected: "relative/path",
		},
		{
			name:     "home directory with path",
			input:    "~/config/file.json",
			expected: filepath.Join(os.Getenv("HOME"), "config/file.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expected == "" {
				t.Skip("HOME environment variable not set")
			}

			assert.Equal(t, tt.expected, expandPath(tt.input))
		})
	}
}

func TestSaveConfig(t *testing.T) {
	tempConfigPath := filepath.Join(t.TempDir(), "test_config.json")
	t.Setenv("NL2SQL_CONFIG", tempConfigPath)

	config := &Config{
		Engine:  EngineConfig{Enabled: true, SchemaFilterThreshold: 12, DefaultDialect: "mysql", ExecutionMaxRows: 1000},
		Logging: LoggingConfig{Level: "debug", Format: "text", Output: "stderr"},
	}

	err := SaveConfig(config)
	require.NoError(t, err)

	data, err := os.ReadFile(tempConfigPath)
	require.NoError(t, err)

	var loadedConfig Config
	err = json.Unmarshal(data, &loadedConfig)
	require.NoError(t, err)

	assert.Equal(t, 12, loadedConfig.Engine.SchemaFilterThreshold)
	assert.Equal(t, "debug", loadedConfig.Logging.Level)
}

func TestMergeConfigs(t *testing.T) {
	target := &Config{
		Engine:  EngineConfig{SchemaFilterThreshold: 10, DefaultDialect: "mysql", ExecutionMaxRows: 1000},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
	source := &Config{
		Engine:  EngineConfig{SchemaFilterThreshold: 30},
		Logging: LoggingConfig{Level: "debug"},
	}

	mergeConfigs(target, source)

	assert.Equal(t, 30, target.Engine.SchemaFilterThreshold)
	assert.Equal(t, "debug", target.Logging.Level)
	// Other values remain from target
	assert.Equal(t, "mysql", target.Engine.DefaultDialect)
	assert.Equal(t, "text", target.Logging.Format)
}

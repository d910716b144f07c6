package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestInitializeConfigDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "PLN", cfg.Currency.Reporting)
	assert.Equal(t, 5, cfg.Currency.TimeoutSeconds)
	assert.Equal(t, 60, cfg.Currency.CacheTTLMinutes)
	assert.Equal(t, 4.2, cfg.Currency.FallbackRates["USD"])
	assert.Equal(t, 4.5, cfg.Currency.FallbackRates["EUR"])
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, 5, cfg.Rules.CacheTTLMinutes)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxSizeBytes)
}

func TestInitializeConfigFromFile(t *testing.T) {
	chdirTemp(t)

	yamlBody := `log:
  level: debug
  format: json
currency:
  reporting: eur
  timeout_seconds: 10
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yamlBody), 0600))

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Reporting currency is normalized to upper case.
	assert.Equal(t, "EUR", cfg.Currency.Reporting)
	assert.Equal(t, 10, cfg.Currency.TimeoutSeconds)
	// Untouched keys keep their defaults.
	assert.Equal(t, "rules.yaml", cfg.Store.RulesFile)
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PNL_LOG_LEVEL", "warn")
	t.Setenv("PNL_CURRENCY_REPORTING", "usd")

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "USD", cfg.Currency.Reporting)
}

func TestInitializeConfigGeminiKeyBinding(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PNL_AI_ENABLED", "true")

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
}

func TestInitializeConfigAIEnabledWithoutKey(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PNL_AI_ENABLED", "true")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := InitializeConfig()
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestInitializeConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad log level", key: "PNL_LOG_LEVEL", value: "loud"},
		{name: "bad log format", key: "PNL_LOG_FORMAT", value: "xml"},
		{name: "bad reporting currency", key: "PNL_CURRENCY_REPORTING", value: "ZLOTY"},
		{name: "timeout too large", key: "PNL_CURRENCY_TIMEOUT_SECONDS", value: "90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(tt.key, tt.value)

			_, err := InitializeConfig()
			assert.Error(t, err)
		})
	}
}

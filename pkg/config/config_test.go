package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entrhq/pilot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DriverPlaywright, cfg.Driver)
	assert.Equal(t, 4000, cfg.ContextLimit)
	assert.Equal(t, 400, cfg.ElementLimit)
	assert.Equal(t, 6*time.Second, cfg.NavigationTimeout)
	assert.InDelta(t, 0.09, cfg.CostNoticeThreshold, 1e-9)
	assert.Equal(t, "presearch", cfg.Search.DefaultEngine)
	assert.Nil(t, cfg.Functions)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
model: gpt-3.5-turbo-16k
driver: chromedp
navigation_timeout: 10s
autopilot: true
functions: [goto_url, click_link, communicate]
search:
  default_engine: Google
files:
  allowed_patterns: ["docs/**"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo-16k", cfg.Model)
	assert.Equal(t, DriverChromedp, cfg.Driver)
	assert.Equal(t, 10*time.Second, cfg.NavigationTimeout)
	assert.True(t, cfg.Autopilot)
	assert.Equal(t, []string{"goto_url", "click_link", "communicate"}, cfg.Functions)
	assert.Equal(t, "google", cfg.Search.DefaultEngine)
	assert.Equal(t, []string{"docs/**"}, cfg.Files.AllowedPatterns)

	// untouched keys keep their defaults
	assert.Equal(t, 4000, cfg.ContextLimit)
	assert.True(t, cfg.Headless)
	assert.NotEmpty(t, cfg.Files.DeniedPatterns)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "model: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{name: "empty model", mutate: func(c *Config) { c.Model = " " }, wantKey: "model"},
		{name: "unknown driver", mutate: func(c *Config) { c.Driver = "selenium" }, wantKey: "driver"},
		{name: "negative context limit", mutate: func(c *Config) { c.ContextLimit = -1 }, wantKey: "context_limit"},
		{name: "negative element limit", mutate: func(c *Config) { c.ElementLimit = -1 }, wantKey: "element_limit"},
		{name: "negative navigation timeout", mutate: func(c *Config) { c.NavigationTimeout = -time.Second }, wantKey: "navigation_timeout"},
		{name: "negative max steps", mutate: func(c *Config) { c.MaxSteps = -2 }, wantKey: "max_steps"},
		{name: "negative rate", mutate: func(c *Config) { c.RequestsPerMinute = -1 }, wantKey: "requests_per_minute"},
		{name: "valid", mutate: func(*Config) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			var ce *types.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantKey, ce.Key)
		})
	}
}

func TestValidateFillsZeroValues(t *testing.T) {
	cfg := &Config{Model: "gpt-4"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DriverPlaywright, cfg.Driver)
	assert.Equal(t, DefaultContextLimit, cfg.ContextLimit)
	assert.Equal(t, DefaultElementLimit, cfg.ElementLimit)
	assert.Equal(t, DefaultNavigationTimeout, cfg.NavigationTimeout)
	assert.Equal(t, DefaultSearchEngine, cfg.Search.DefaultEngine)
	assert.Equal(t, ".", cfg.Files.Workspace)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.APIKeyEnv)
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("PILOT_TEST_KEY", "sk-test")
	cfg := Default()
	cfg.APIKeyEnv = "PILOT_TEST_KEY"
	assert.Equal(t, "sk-test", cfg.APIKey())
}

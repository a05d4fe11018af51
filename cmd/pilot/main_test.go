package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/types"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"goto_url", "click_link"}, splitList(" goto_url, click_link ,,"))
	assert.Equal(t, []string{}, splitList(""), "an explicit empty list offers no actions")
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: gpt-3.5-turbo\ncontext_limit: 2000\nautopilot: true\n"), 0600))

	cfg, err := loadConfig(&Flags{
		ConfigPath:   path,
		Model:        "gpt-4",
		ContextLimit: 8000,
		Headful:      true,
		Functions:    "goto_url",
		set:          map[string]bool{"context-limit": true, "headful": true, "functions": true},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", cfg.Model, "unset flags keep the file value")
	assert.Equal(t, 8000, cfg.ContextLimit)
	assert.True(t, cfg.Autopilot)
	assert.False(t, cfg.Headless)
	assert.Equal(t, []string{"goto_url"}, cfg.Functions)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(&Flags{set: map[string]bool{}})
	require.NoError(t, err)
	assert.Equal(t, config.Default().Model, cfg.Model)
	assert.Nil(t, cfg.Functions)
}

func TestLoadConfigInvalidDriver(t *testing.T) {
	_, err := loadConfig(&Flags{Driver: "selenium", set: map[string]bool{"driver": true}})
	var cerr *types.ConfigurationError
	assert.ErrorAs(t, err, &cerr)
}

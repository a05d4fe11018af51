// Package config loads the session configuration from YAML and applies the
// defaults every other package relies on.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/entrhq/pilot/pkg/types"
	"gopkg.in/yaml.v3"
)

// Driver selects the browser automation backend.
type Driver string

const (
	DriverPlaywright Driver = "playwright"
	DriverChromedp   Driver = "chromedp"
)

// Defaults shared with the packages that consume the config.
const (
	DefaultModel               = "gpt-4"
	DefaultAPIKeyEnv           = "OPENAI_API_KEY"
	DefaultContextLimit        = 4000
	DefaultElementLimit        = 400
	DefaultNavigationTimeout   = 6 * time.Second
	DefaultCostNoticeThreshold = 0.09
	DefaultSearchEngine        = "presearch"
	DefaultViewportWidth       = 1280
	DefaultViewportHeight      = 720
)

// Config is the full configuration of one browsing session.
type Config struct {
	// Model endpoint
	Model             string        `yaml:"model" json:"model"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	APIKeyEnv         string        `yaml:"api_key_env" json:"api_key_env"`
	ModelTimeout      time.Duration `yaml:"model_timeout" json:"model_timeout"`             // 0 disables the per-call bound
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"` // 0 disables rate limiting

	// Browser
	Driver            Driver         `yaml:"driver" json:"driver"`
	Headless          bool           `yaml:"headless" json:"headless"`
	Viewport          ViewportConfig `yaml:"viewport" json:"viewport"`
	NavigationTimeout time.Duration  `yaml:"navigation_timeout" json:"navigation_timeout"`

	// Page budget
	ContextLimit int `yaml:"context_limit" json:"context_limit"`
	ElementLimit int `yaml:"element_limit" json:"element_limit"`

	// Session behavior
	Autopilot           bool     `yaml:"autopilot" json:"autopilot"`
	OneShot             bool     `yaml:"one_shot" json:"one_shot"`
	MaxSteps            int      `yaml:"max_steps" json:"max_steps"`
	CostNoticeThreshold float64  `yaml:"cost_notice_threshold" json:"cost_notice_threshold"`
	Functions           []string `yaml:"functions" json:"functions"` // nil advertises every action

	Search SearchConfig `yaml:"search" json:"search"`
	Files  FilesConfig  `yaml:"files" json:"files"`
	Debug  DebugConfig  `yaml:"debug" json:"debug"`
}

// ViewportConfig sets the browser window size.
type ViewportConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// SearchConfig configures the search action.
type SearchConfig struct {
	DefaultEngine string `yaml:"default_engine" json:"default_engine"`
}

// FilesConfig gates the read_file and take_screenshot actions.
type FilesConfig struct {
	Workspace       string   `yaml:"workspace" json:"workspace"`
	AllowedPatterns []string `yaml:"allowed_patterns" json:"allowed_patterns"`
	DeniedPatterns  []string `yaml:"denied_patterns" json:"denied_patterns"`
}

// DebugConfig controls diagnostic output.
type DebugConfig struct {
	// DumpPath receives the conversation history after every step.
	DumpPath string `yaml:"dump_path" json:"dump_path"`
	// ElementsPath receives the element list of every scrape.
	ElementsPath string `yaml:"elements_path" json:"elements_path"`
}

// Default returns a config with every default applied.
func Default() *Config {
	return &Config{
		Model:               DefaultModel,
		APIKeyEnv:           DefaultAPIKeyEnv,
		Driver:              DriverPlaywright,
		Headless:            true,
		Viewport:            ViewportConfig{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		NavigationTimeout:   DefaultNavigationTimeout,
		ContextLimit:        DefaultContextLimit,
		ElementLimit:        DefaultElementLimit,
		CostNoticeThreshold: DefaultCostNoticeThreshold,
		Search:              SearchConfig{DefaultEngine: DefaultSearchEngine},
		Files: FilesConfig{
			Workspace:      ".",
			DeniedPatterns: []string{"**/.env", "**/*.pem", "**/id_rsa*"},
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config and fills zero values that have defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return types.NewConfigurationError("model", "model is required")
	}

	switch c.Driver {
	case "":
		c.Driver = DriverPlaywright
	case DriverPlaywright, DriverChromedp:
	default:
		return types.NewConfigurationError("driver", fmt.Sprintf("unknown driver %q (must be 'playwright' or 'chromedp')", c.Driver))
	}

	if c.ContextLimit < 0 {
		return types.NewConfigurationError("context_limit", "cannot be negative")
	}
	if c.ContextLimit == 0 {
		c.ContextLimit = DefaultContextLimit
	}

	if c.ElementLimit < 0 {
		return types.NewConfigurationError("element_limit", "cannot be negative")
	}
	if c.ElementLimit == 0 {
		c.ElementLimit = DefaultElementLimit
	}

	if c.NavigationTimeout < 0 {
		return types.NewConfigurationError("navigation_timeout", "cannot be negative")
	}
	if c.NavigationTimeout == 0 {
		c.NavigationTimeout = DefaultNavigationTimeout
	}

	if c.ModelTimeout < 0 {
		return types.NewConfigurationError("model_timeout", "cannot be negative")
	}
	if c.RequestsPerMinute < 0 {
		return types.NewConfigurationError("requests_per_minute", "cannot be negative")
	}
	if c.MaxSteps < 0 {
		return types.NewConfigurationError("max_steps", "cannot be negative")
	}
	if c.CostNoticeThreshold < 0 {
		return types.NewConfigurationError("cost_notice_threshold", "cannot be negative")
	}

	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		c.Viewport = ViewportConfig{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}

	if c.Search.DefaultEngine == "" {
		c.Search.DefaultEngine = DefaultSearchEngine
	}
	c.Search.DefaultEngine = strings.ToLower(c.Search.DefaultEngine)

	if c.Files.Workspace == "" {
		c.Files.Workspace = "."
	}

	if c.APIKeyEnv == "" {
		c.APIKeyEnv = DefaultAPIKeyEnv
	}
	return nil
}

// APIKey resolves the key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

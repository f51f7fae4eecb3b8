// Package config loads the verifier's TOML configuration and resolves the
// XDG locations for config and cache data.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const appDirName = "nuverify"

// ParamSupport mirrors the per-model capability entries so the built-in
// table can be overridden from the config file.
type ParamSupport struct {
	Temperature bool `toml:"temperature"`
	MaxTokens   bool `toml:"max_tokens"`
	TopP        bool `toml:"top_p"`
}

// Config is the user-facing configuration.
type Config struct {
	LLMProvider     string             `toml:"llm_provider"`
	LLMModel        string             `toml:"llm_model"`
	APIKey          string             `toml:"api_key"`
	GitHubToken     string             `toml:"github_token"`
	ScanDirectories []string           `toml:"scan_directories"`
	Temperature     *float64           `toml:"temperature"`
	LLMParams       map[string]float64 `toml:"llm_params"`
	CacheEnabled    bool               `toml:"cache_enabled"`

	// ModelCapabilities overrides the built-in parameter-support table,
	// keyed by "provider/model".
	ModelCapabilities map[string]ParamSupport `toml:"model_capabilities"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		LLMProvider:     "openai",
		LLMModel:        "gpt-4",
		ScanDirectories: []string{"~/dots/bin", "~/dots/config/nushell"},
		LLMParams:       map[string]float64{},
		CacheEnabled:    true,
	}
}

// ModelID returns the "provider/model" identifier used for oracle calls and
// cache keys.
func (c *Config) ModelID() string {
	return c.LLMProvider + "/" + c.LLMModel
}

// ConfigDir returns the XDG config directory for the verifier.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(home, ".config", appDirName)
}

// CacheDir returns the XDG cache directory for the verifier.
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(home, ".cache", appDirName)
}

// Load reads the config file at path, or the default location when path is
// empty. When no file exists at the default location, a starter file is
// written there and the defaults are returned; an explicitly given missing
// path just yields the defaults. A malformed file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = filepath.Join(ConfigDir(), "config.toml")
	}

	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !explicit {
			if werr := writeDefaultFile(path); werr != nil {
				return nil, fmt.Errorf("failed to create default config at %s: %w", path, werr)
			}
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cfg, nil
}

// defaultConfigFile is the starter file written on first run. It mirrors
// Default(); commented keys document the optional settings.
const defaultConfigFile = `# nuverify configuration (created with defaults, edit as needed)

llm_provider = "openai"
llm_model = "gpt-4"
scan_directories = ["~/dots/bin", "~/dots/config/nushell"]
cache_enabled = true

# api_key = ""        # or set the provider's environment variable
# github_token = ""   # or authenticate the gh CLI
# temperature = 0.1

# [llm_params]
# max_tokens = 32000

# [model_capabilities."provider/model"]
# temperature = true
# max_tokens = true
# top_p = true
`

func writeDefaultFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigFile), 0o644)
}

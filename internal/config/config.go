package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config represents the entire manimator configuration
type Config struct {
	Port        int            `toml:"port"`
	VideoDir    string         `toml:"video_dir,omitempty"`
	LogLevel    string         `toml:"log_level"`
	LogFormat   string         `toml:"log_format"` // "json" or "console"
	CORSOrigins []string       `toml:"cors_origins,omitempty"`
	Model       ModelConfig    `toml:"model"`
	Renderer    RendererConfig `toml:"renderer"`
}

// ModelConfig selects the LLM that writes scene code
type ModelConfig struct {
	Provider       string  `toml:"provider"` // "gemini", "openai", "anthropic", "ollama"
	Model          string  `toml:"model"`
	APIKey         string  `toml:"api_key,omitempty"`  // Environment variables take precedence
	BaseURL        string  `toml:"base_url,omitempty"` // Proxy or self-hosted endpoint; ollama uses OLLAMA_HOST
	Temperature    float64 `toml:"temperature,omitempty"`
	MaxTokens      int     `toml:"max_tokens,omitempty"`
	TimeoutSeconds int     `toml:"timeout_seconds,omitempty"` // 0 disables the timeout
}

// RendererConfig describes how the manim CLI is invoked
type RendererConfig struct {
	Command        string `toml:"command"`
	Quality        string `toml:"quality"` // manim -q flag value: l, m, h, p, k
	Format         string `toml:"format"`
	Scene          string `toml:"scene"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"` // 0 disables the timeout
}

// Provider defaults, used when a provider is chosen without a model
var defaultModels = map[string]string{
	"gemini":    "gemini-2.0-flash-exp",
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-haiku-20241022",
	"ollama":    "llama3.2:latest",
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port:      5000,
		LogLevel:  "info",
		LogFormat: "json",
		Model: ModelConfig{
			Provider:  "gemini",
			Model:     defaultModels["gemini"],
			MaxTokens: 4096,
		},
		Renderer: RendererConfig{
			Command: "manim",
			Quality: "l",
			Format:  "mp4",
			Scene:   "GeneratedScene",
		},
	}
}

// DefaultModel returns the default model for a provider, or "" if unknown
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// Load reads the configuration from the config file and environment variables.
// An empty path means the XDG config location.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = GetConfigPath()
	}

	// Check if config file exists
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		defaults := cfg.Model
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// A provider chosen without a model gets that provider's default
		if cfg.Model.Provider != defaults.Provider && cfg.Model.Model == defaults.Model {
			cfg.Model.Model = DefaultModel(cfg.Model.Provider)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() {
	for _, name := range []string{"MANIM_PORT", "PORT"} {
		if v := os.Getenv(name); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				c.Port = port
				break
			}
		}
	}
	if dir := os.Getenv("MANIMATOR_VIDEO_DIR"); dir != "" {
		c.VideoDir = dir
	}
	if provider := os.Getenv("MANIMATOR_PROVIDER"); provider != "" {
		c.setProvider(provider)
	}
	if model := os.Getenv("MANIMATOR_MODEL"); model != "" {
		c.Model.Model = model
	}
}

// ApplyFlags overrides the configuration with flags bound to viper.
// Priority: CLI flag > env var > config file > default
func (c *Config) ApplyFlags() {
	if viper.IsSet("port") {
		c.Port = viper.GetInt("port")
	}
	if viper.IsSet("video-dir") {
		c.VideoDir = viper.GetString("video-dir")
	}
	if viper.IsSet("provider") {
		c.setProvider(viper.GetString("provider"))
	}
	if viper.IsSet("model") {
		c.Model.Model = viper.GetString("model")
	}
	if viper.IsSet("log-level") {
		c.LogLevel = viper.GetString("log-level")
	}
}

// setProvider switches provider and resets the model to that provider's default
func (c *Config) setProvider(provider string) {
	if provider == c.Model.Provider {
		return
	}
	c.Model.Provider = provider
	c.Model.Model = DefaultModel(provider)
}

// Validate checks the configuration for values that would fail at runtime
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, ok := defaultModels[c.Model.Provider]; !ok {
		return fmt.Errorf("unsupported provider: %s", c.Model.Provider)
	}
	if c.Model.Model == "" {
		return fmt.Errorf("no model configured for provider %s", c.Model.Provider)
	}
	if c.Renderer.Command == "" {
		return fmt.Errorf("renderer command is empty")
	}
	if c.Renderer.Scene == "" {
		return fmt.Errorf("renderer scene name is empty")
	}
	return nil
}

// Save writes the configuration to the given path
func Save(cfg *Config, path string) error {
	if path == "" {
		path = GetConfigPath()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// API keys may end up in here, keep it private
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetAPIKey returns the API key for the configured provider.
// Checks environment variables first, then the config file.
func (c *Config) GetAPIKey() string {
	switch c.Model.Provider {
	case "gemini":
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if key := os.Getenv(name); key != "" {
				return key
			}
		}
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key
		}
	case "anthropic":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return key
		}
	case "ollama":
		// Ollama doesn't need API key
		return ""
	}
	return c.Model.APIKey
}

// APIKeyEnv names the environment variable that holds the provider's key
func APIKeyEnv(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// ModelTimeout returns the model call timeout, zero meaning none
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// RenderTimeout returns the renderer timeout, zero meaning none
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.Renderer.TimeoutSeconds) * time.Second
}

// GetVideoDir returns the directory holding rendered videos
func (c *Config) GetVideoDir() string {
	if c.VideoDir != "" {
		return c.VideoDir
	}
	return filepath.Join(xdg.DataHome, "manimator", "videos")
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	configPath, err := xdg.ConfigFile("manimator/config.toml")
	if err != nil {
		// Fallback to home directory
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "manimator", "config.toml")
	}
	return configPath
}

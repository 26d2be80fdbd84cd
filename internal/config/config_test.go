package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"MANIM_PORT", "PORT", "MANIMATOR_VIDEO_DIR", "MANIMATOR_PROVIDER", "MANIMATOR_MODEL",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "gemini", cfg.Model.Provider)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.Model.Model)
	assert.Equal(t, "manim", cfg.Renderer.Command)
	assert.Equal(t, "GeneratedScene", cfg.Renderer.Scene)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
port = 7000
video_dir = "/srv/videos"

[model]
provider = "openai"
model = "gpt-4o"

[renderer]
command = "/opt/manim/bin/manim"
quality = "m"
timeout_seconds = 90
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "/srv/videos", cfg.GetVideoDir())
	assert.Equal(t, "gpt-4o", cfg.Model.Model)
	assert.Equal(t, "m", cfg.Renderer.Quality)
	// Unset keys keep their defaults
	assert.Equal(t, "mp4", cfg.Renderer.Format)
	assert.Equal(t, int64(90), int64(cfg.RenderTimeout().Seconds()))

	t.Setenv("MANIM_PORT", "5100")
	t.Setenv("MANIMATOR_PROVIDER", "anthropic")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5100, cfg.Port)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.Model.Model)
}

func TestLoad_FileProviderWithoutModel(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		file string
		want string
	}{
		{"[model]\nprovider = \"openai\"\n", "gpt-4o-mini"},
		{"[model]\nprovider = \"anthropic\"\n", "claude-3-5-haiku-20241022"},
		{"[model]\nprovider = \"ollama\"\n", "llama3.2:latest"},
		{"[model]\nprovider = \"openai\"\nmodel = \"gpt-4o\"\n", "gpt-4o"},
		{"[model]\nprovider = \"gemini\"\nmodel = \"gemini-2.5-pro\"\n", "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(tt.file), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, cfg.Model.Model, tt.file)
		assert.NoError(t, cfg.Validate())
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = = 1"), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Port = 8123
	cfg.CORSOrigins = []string{"http://localhost:5173"}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, loaded.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, loaded.CORSOrigins)
}

func TestApplyFlags(t *testing.T) {
	clearEnv(t)
	t.Cleanup(viper.Reset)

	viper.Set("port", 9001)
	viper.Set("provider", "ollama")

	cfg := Default()
	cfg.ApplyFlags()
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, "ollama", cfg.Model.Provider)
	assert.Equal(t, "llama3.2:latest", cfg.Model.Model)
}

func TestGetAPIKey(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	cfg.Model.APIKey = "from-file"
	assert.Equal(t, "from-file", cfg.GetAPIKey())

	t.Setenv("GOOGLE_API_KEY", "google")
	assert.Equal(t, "google", cfg.GetAPIKey())

	t.Setenv("GEMINI_API_KEY", "gemini")
	assert.Equal(t, "gemini", cfg.GetAPIKey())

	cfg.Model.Provider = "ollama"
	assert.Empty(t, cfg.GetAPIKey())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Model.Provider = "bard"
	assert.ErrorContains(t, cfg.Validate(), "unsupported provider")

	cfg = Default()
	cfg.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "invalid port")

	cfg = Default()
	cfg.Renderer.Command = ""
	assert.Error(t, cfg.Validate())
}

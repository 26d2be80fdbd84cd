package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecf/manimator/internal/animation"
	"github.com/alecf/manimator/internal/config"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"MANIM_PORT", "PORT", "MANIMATOR_VIDEO_DIR", "MANIMATOR_PROVIDER", "MANIMATOR_MODEL",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
	t.Cleanup(viper.Reset)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test", "none", "unknown")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedVideos(t *testing.T, dir string) {
	t.Helper()
	for name, body := range map[string]string{
		"animation_aaa.mp4": "one",
		"animation_bbb.mp4": "two",
		"notes.txt":         "not a video",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	isolate(t)
	videoDir := t.TempDir()
	seedVideos(t, videoDir)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "cache-stats", "--config", cfgPath, "--video-dir", videoDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Total videos:     2")
	assert.Contains(t, out, videoDir)

	out, err = execute(t, "clear-cache", "--config", cfgPath, "--video-dir", videoDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 2 cached videos")
	assert.NoFileExists(t, filepath.Join(videoDir, "animation_aaa.mp4"))
	assert.FileExists(t, filepath.Join(videoDir, "notes.txt"))
}

func TestInit(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "manimator", "config.toml")

	out, err := execute(t, "init", "--config", cfgPath, "--provider", "openai", "--port", "8080")
	require.NoError(t, err)
	assert.Contains(t, out, "OPENAI_API_KEY")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Model)
	assert.Equal(t, 8080, cfg.Port)

	_, err = execute(t, "init", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "init", "--config", cfgPath, "--force")
	require.NoError(t, err)
}

func TestTestConfig_ReportsProblems(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[model]
provider = "anthropic"
model = "claude-3-5-haiku-20241022"

[renderer]
command = "manimator-test-no-such-renderer"
quality = "l"
format = "mp4"
scene = "GeneratedScene"
`), 0644))

	out, err := execute(t, "test-config", "--config", cfgPath, "--video-dir", filepath.Join(dir, "videos"))
	require.Error(t, err)
	assert.Contains(t, out, "Missing ANTHROPIC_API_KEY")
	assert.Contains(t, out, "Not found on PATH")
	assert.DirExists(t, filepath.Join(dir, "videos"))
}

func TestRender_RequiresStepText(t *testing.T) {
	isolate(t)
	_, err := execute(t, "render")
	require.Error(t, err)
}

func TestLoadConfig_InvalidProvider(t *testing.T) {
	isolate(t)
	_, err := execute(t, "cache-stats", "--config", filepath.Join(t.TempDir(), "c.toml"), "--provider", "watson")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestCreateProvider(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	cfg := config.Default()
	cfg.Model.Provider = "openai"
	_, err := CreateProvider(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	p, err := CreateProvider(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	cfg.Model.Provider = "anthropic"
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	p, err = CreateProvider(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	cfg.Model.Provider = "gemini"
	_, err = CreateProvider(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	cfg.Model.Provider = "ollama"
	p, err = CreateProvider(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	cfg.Model.Provider = "watson"
	_, err = CreateProvider(ctx, cfg)
	require.Error(t, err)
}

func TestStageMessage(t *testing.T) {
	assert.Equal(t, "Writing scene with gpt-4o-mini...", stageMessage(animation.StageModelCall, "gpt-4o-mini"))
	assert.Equal(t, "Rendering with manim...", stageMessage(animation.StageRendering, "m"))
	assert.Equal(t, "Starting...", stageMessage(animation.StageReceived, "m"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}

func TestCheckWritable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "videos")
	require.NoError(t, checkWritable(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

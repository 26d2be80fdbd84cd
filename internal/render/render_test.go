package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeManim writes a shell script that stands in for the manim CLI
func fakeManim(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manim")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

// succeedingManim mimics manim's output layout, partial fragments included
const succeedingManim = `
name="${3#--output_file=}"
out=media/videos/scene/480p15
mkdir -p "$out/partial_movie_files/$5"
printf 'fragment' > "$out/partial_movie_files/$5/00000.mp4"
cat "$4" > "$out/$name"
echo "File ready at $out/$name"
`

func TestInvoker_RenderAndLocate(t *testing.T) {
	inv := NewInvoker(Options{Command: fakeManim(t, succeedingManim)}, zap.NewNop())

	source := "from manim import *\nclass GeneratedScene(Scene): pass\n"
	res, err := inv.Render(context.Background(), source, "animation_abc.mp4")
	require.NoError(t, err)
	require.NotNil(t, res)
	defer res.Cleanup()

	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "File ready")
	assert.FileExists(t, res.ScriptPath)

	video, err := Locate(res.OutputDir)
	require.NoError(t, err)
	assert.Equal(t, "animation_abc.mp4", filepath.Base(video))

	data, err := os.ReadFile(video)
	require.NoError(t, err)
	assert.Equal(t, source, string(data))

	require.NoError(t, res.Cleanup())
	assert.NoDirExists(t, res.OutputDir)
}

func TestInvoker_Args(t *testing.T) {
	inv := NewInvoker(Options{}, nil)
	assert.Equal(t, []string{"-ql", "--format=mp4", "--output_file=out.mp4", "/tmp/scene.py", "GeneratedScene"},
		inv.Args("/tmp/scene.py", "out.mp4"))
	assert.Equal(t, "GeneratedScene", inv.Scene())

	inv = NewInvoker(Options{Quality: "h", Format: "webm", Scene: "Intro"}, nil)
	assert.Equal(t, []string{"-qh", "--format=webm", "--output_file=x", "s.py", "Intro"}, inv.Args("s.py", "x"))
}

func TestInvoker_NonZeroExit(t *testing.T) {
	inv := NewInvoker(Options{Command: fakeManim(t, `echo "NameError: name 'Circl' is not defined" >&2
exit 2
`)}, zap.NewNop())

	res, err := inv.Render(context.Background(), "broken", "out.mp4")
	require.Error(t, err)
	require.NotNil(t, res)
	defer res.Cleanup()

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 2, rerr.ExitCode)
	assert.Contains(t, err.Error(), "NameError: name 'Circl' is not defined")
	assert.Equal(t, 2, res.ExitCode)

	// Temp tree is still reclaimable on failure
	require.NoError(t, res.Cleanup())
	assert.NoDirExists(t, res.OutputDir)
}

func TestInvoker_MissingBinary(t *testing.T) {
	inv := NewInvoker(Options{Command: filepath.Join(t.TempDir(), "no-such-manim")}, zap.NewNop())

	res, err := inv.Render(context.Background(), "x", "out.mp4")
	require.Error(t, err)
	defer res.Cleanup()

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, -1, rerr.ExitCode)
	assert.Contains(t, err.Error(), "failed to start")

	_, err = inv.LookPath()
	assert.Error(t, err)
}

func TestInvoker_Timeout(t *testing.T) {
	inv := NewInvoker(Options{
		Command: fakeManim(t, "exec sleep 5\n"),
		Timeout: 100 * time.Millisecond,
	}, zap.NewNop())

	res, err := inv.Render(context.Background(), "x", "out.mp4")
	require.Error(t, err)
	defer res.Cleanup()

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.True(t, rerr.TimedOut)
	assert.Equal(t, exitTimeout, rerr.ExitCode)
	assert.Contains(t, err.Error(), "timed out")
}

func TestLocate_NoVideo(t *testing.T) {
	dir := t.TempDir()
	_, err := Locate(dir)
	assert.ErrorIs(t, err, ErrVideoNotFound)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "media", "videos", "scene", "480p15", "partial_movie_files", "S"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "videos", "scene", "480p15", "partial_movie_files", "S", "0.mp4"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "videos", "scene", "480p15", "log.txt"), nil, 0644))

	_, err = Locate(dir)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestLocate_LexicalFirst(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "media", "videos")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "b"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "a"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "b", "one.mp4"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "a", "two.MP4"), nil, 0644))

	video, err := Locate(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "a", "two.MP4"), video)
}

func TestResultCleanup_Nil(t *testing.T) {
	var r *Result
	assert.NoError(t, r.Cleanup())
}

package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrVideoNotFound means the renderer exited cleanly but left no video behind
var ErrVideoNotFound = errors.New("video file not found after rendering")

// Options controls the renderer command line
type Options struct {
	Command string        // manim binary
	Quality string        // -q flag value, "l" renders fast at 480p15
	Format  string        // --format value
	Scene   string        // scene class to render
	Timeout time.Duration // 0 means no timeout
}

// Error is a failed renderer run. Its message carries the captured stderr.
type Error struct {
	ExitCode int
	Stderr   string
	TimedOut bool
	Cause    error
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("Manim rendering failed: %v", e.Cause)
	case e.TimedOut:
		return fmt.Sprintf("Manim rendering timed out: %s", e.Stderr)
	default:
		return fmt.Sprintf("Manim rendering failed: %s", e.Stderr)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Result describes one renderer run. OutputDir holds the script and the
// media tree until Cleanup is called.
type Result struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	OutputDir  string
	ScriptPath string
	Duration   time.Duration
}

// Cleanup removes the run's temp directory, including the generated source
func (r *Result) Cleanup() error {
	if r == nil || r.OutputDir == "" {
		return nil
	}
	return os.RemoveAll(r.OutputDir)
}

// Invoker runs the manim CLI against generated scene source
type Invoker struct {
	opts   Options
	logger *zap.Logger
}

// NewInvoker creates an invoker, filling unset options with manim defaults
func NewInvoker(opts Options, logger *zap.Logger) *Invoker {
	if opts.Command == "" {
		opts.Command = "manim"
	}
	if opts.Quality == "" {
		opts.Quality = "l"
	}
	if opts.Format == "" {
		opts.Format = "mp4"
	}
	if opts.Scene == "" {
		opts.Scene = "GeneratedScene"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{
		opts:   opts,
		logger: logger.With(zap.String("component", "render")),
	}
}

// Scene returns the scene class name the invoker renders
func (i *Invoker) Scene() string {
	return i.opts.Scene
}

// LookPath reports where the renderer binary resolves on PATH
func (i *Invoker) LookPath() (string, error) {
	return exec.LookPath(i.opts.Command)
}

// Args returns the renderer arguments for a script and output filename
func (i *Invoker) Args(scriptPath, outputFile string) []string {
	return []string{
		"-q" + i.opts.Quality,
		"--format=" + i.opts.Format,
		"--output_file=" + outputFile,
		scriptPath,
		i.opts.Scene,
	}
}

// Render writes source into a fresh temp directory and runs the renderer there.
// The returned Result is non-nil whenever the temp directory was created, even
// on failure, so callers can always defer Cleanup.
func (i *Invoker) Render(ctx context.Context, source, outputFile string) (*Result, error) {
	dir, err := os.MkdirTemp("", "manimator-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create render directory: %w", err)
	}

	result := &Result{
		OutputDir:  dir,
		ScriptPath: filepath.Join(dir, "scene.py"),
	}

	if err := os.WriteFile(result.ScriptPath, []byte(source), 0600); err != nil {
		return result, fmt.Errorf("failed to write scene source: %w", err)
	}

	i.logger.Debug("rendering scene",
		zap.String("command", i.opts.Command),
		zap.String("dir", dir),
		zap.String("output_file", outputFile),
	)

	start := time.Now()
	proc := run(ctx, i.opts.Command, i.Args(result.ScriptPath, outputFile), dir, i.opts.Timeout)
	result.Duration = time.Since(start)
	result.ExitCode = proc.ExitCode
	result.Stdout = proc.Stdout
	result.Stderr = proc.Stderr

	if proc.StartErr != nil {
		return result, &Error{ExitCode: proc.ExitCode, Cause: fmt.Errorf("failed to start %s: %w", i.opts.Command, proc.StartErr)}
	}

	if proc.ExitCode != 0 {
		i.logger.Warn("renderer failed",
			zap.Int("exit_code", proc.ExitCode),
			zap.Bool("timed_out", proc.TimedOut),
			zap.String("stderr", tail(proc.Stderr, 2000)),
		)
		return result, &Error{ExitCode: proc.ExitCode, Stderr: proc.Stderr, TimedOut: proc.TimedOut}
	}

	i.logger.Debug("renderer finished", zap.Duration("duration", result.Duration))
	return result, nil
}

// Locate finds the rendered video under outputDir/media/videos.
// Entries are walked in lexical order so the pick is stable for a given tree;
// manim's partial_movie_files fragments are skipped.
func Locate(outputDir string) (string, error) {
	mediaDir := filepath.Join(outputDir, "media", "videos")

	var found string
	err := filepath.WalkDir(mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "partial_movie_files" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".mp4") {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to scan render output: %w", err)
	}

	if found == "" {
		return "", ErrVideoNotFound
	}
	return found, nil
}

// tail keeps the last n bytes of s for log fields
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

package render

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// exitTimeout is reported when the renderer is killed for running too long
const exitTimeout = 124

// procResult is the captured outcome of one subprocess run
type procResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	StartErr error
}

// run executes a process in dir and captures stdout/stderr.
// A zero timeout leaves only ctx in control of the process lifetime.
func run(ctx context.Context, name string, args []string, dir string, timeout time.Duration) procResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// Don't hang on grandchildren (ffmpeg) holding our pipes after a kill
	cmd.WaitDelay = 5 * time.Second

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Start(); err != nil {
		return procResult{ExitCode: -1, StartErr: err}
	}

	waitErr := cmd.Wait()
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)

	exitCode := 0
	switch {
	case timedOut:
		exitCode = exitTimeout
	case waitErr != nil:
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) && ee.ProcessState != nil && ee.ProcessState.ExitCode() >= 0 {
			exitCode = ee.ProcessState.ExitCode()
		} else {
			// Killed by signal or ctx cancellation
			exitCode = 1
		}
	}

	return procResult{
		ExitCode: exitCode,
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		TimedOut: timedOut,
	}
}

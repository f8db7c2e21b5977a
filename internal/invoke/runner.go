package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/gianting/bilingual-book-maker/internal/apperrors"
	"github.com/gianting/bilingual-book-maker/internal/logger"
)

// Runner launches the translator and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, argv []string) error

func (f RunnerFunc) Run(ctx context.Context, argv []string) error { return f(ctx, argv) }

const stderrTailBytes = 8 << 10

// ExecRunner runs argv with os/exec. Output is streamed to Stdout/Stderr when
// set; the tail of stderr is kept for the failure message only.
type ExecRunner struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func (r ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return apperrors.New(apperrors.KindProcess, "No translator command configured.", nil)
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	tail := &tailBuffer{limit: stderrTailBytes}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(tail, r.Stderr)
	} else {
		cmd.Stderr = tail
	}

	if err := cmd.Start(); err != nil {
		return apperrors.New(apperrors.KindProcess,
			fmt.Sprintf("Failed to start translator %q: %v", argv[0], unwrapExecError(err)), err)
	}
	if err := cmd.Wait(); err != nil {
		return exitFailure(err, tail.String())
	}
	return nil
}

func unwrapExecError(err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return execErr.Err
	}
	return err
}

func exitFailure(err error, stderr string) error {
	status := "an error"
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			status = fmt.Sprintf("status %d", code)
		} else {
			status = exitErr.String()
		}
	}
	msg := "Translator exited with " + status
	if line := lastLine(stderr); line != "" {
		msg += ": " + logger.RedactString(line)
	}
	return apperrors.New(apperrors.KindProcess, msg, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n\t "), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(p)
	if len(p) > t.limit {
		p = p[len(p)-t.limit:]
	}
	if over := t.buf.Len() + len(p) - t.limit; over > 0 {
		t.buf.Next(over)
	}
	t.buf.Write(p)
	return n, nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

package invoke

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gianting/bilingual-book-maker/internal/apperrors"
	"github.com/gianting/bilingual-book-maker/internal/progress"
	"github.com/gianting/bilingual-book-maker/internal/settings"
)

// TestHelperProcess stands in for make_book.py when re-executed by the tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		os.Exit(2)
	}
	switch args[0] {
	case "ok":
		fmt.Fprintln(os.Stdout, strings.Join(args[1:], " "))
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "Traceback (most recent call last):")
		fmt.Fprintln(os.Stderr, "openai.RateLimitError: quota exceeded")
		os.Exit(1)
	case "leak":
		fmt.Fprintln(os.Stderr, "invalid key sk-abcdef1234567890")
		os.Exit(3)
	default:
		os.Exit(2)
	}
}

func helperCommand(mode string) Command {
	return Command{
		Executable: os.Args[0],
		Prefix:     []string{"-test.run=TestHelperProcess", "--", mode},
	}
}

func TestExecRunner_Success(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	var stdout bytes.Buffer
	r := ExecRunner{Stdout: &stdout}

	argv := helperCommand("ok").Argv(completeState().Request())
	if err := r.Run(context.Background(), argv); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(stdout.String(), "--book_name /books/a.epub") {
		t.Fatalf("stdout = %q, want forwarded arguments", stdout.String())
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	var stderr bytes.Buffer
	r := ExecRunner{Stderr: &stderr}

	err := r.Run(context.Background(), helperCommand("fail").Argv(completeState().Request()))
	if err == nil {
		t.Fatalf("expected error")
	}
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindProcess {
		t.Fatalf("kind = %q, want process", kind)
	}
	msg := apperrors.PublicMessage(err)
	if !strings.Contains(msg, "status 1") || !strings.Contains(msg, "quota exceeded") {
		t.Fatalf("message = %q", msg)
	}
	if !strings.Contains(stderr.String(), "Traceback") {
		t.Fatalf("stderr was not streamed: %q", stderr.String())
	}
}

func TestExecRunner_RedactsStderr(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	err := ExecRunner{}.Run(context.Background(), helperCommand("leak").Argv(completeState().Request()))
	if err == nil {
		t.Fatalf("expected error")
	}
	if msg := apperrors.PublicMessage(err); strings.Contains(msg, "sk-abcdef1234567890") {
		t.Fatalf("message leaked credential: %q", msg)
	}
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-python")
	err := ExecRunner{}.Run(context.Background(), []string{missing, "make_book.py"})
	if err == nil {
		t.Fatalf("expected start error")
	}
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindProcess {
		t.Fatalf("kind = %q, want process", kind)
	}
	if !strings.Contains(apperrors.PublicMessage(err), "Failed to start translator") {
		t.Fatalf("message = %q", apperrors.PublicMessage(err))
	}
}

func TestExecRunner_EmptyArgv(t *testing.T) {
	if err := (ExecRunner{}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty argv")
	}
}

func TestController_ExitFailureEndToEnd(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	store := settings.NewStore(filepath.Join(t.TempDir(), settings.DefaultPath))
	c := NewController(Config{
		Runner:   ExecRunner{},
		Store:    store,
		Command:  helperCommand("fail"),
		Schedule: progress.DefaultSchedule(0),
	})

	out, _, err := c.Run(context.Background(), completeState())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != ProcessFailed || !strings.Contains(out.Detail, "quota exceeded") {
		t.Fatalf("outcome = %v detail=%q", out.Kind, out.Detail)
	}
	if c.Progress() != 0 {
		t.Fatalf("progress = %d, want 0", c.Progress())
	}
	if _, err := store.Load(); err == nil {
		t.Fatalf("settings must not be written after a failed run")
	}
}

func TestTailBuffer_KeepsLastBytes(t *testing.T) {
	tb := &tailBuffer{limit: 8}
	tb.Write([]byte("0123456789"))
	tb.Write([]byte("ab"))
	if got := tb.String(); got != "456789ab" {
		t.Fatalf("tail = %q, want %q", got, "456789ab")
	}
}

func TestLastLine(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"one\n":                   "one",
		"first\nsecond\n\n  \n":   "second",
		"a\r\nquota exceeded\r\n": "quota exceeded",
	}
	for in, want := range cases {
		if got := lastLine(in); got != want {
			t.Errorf("lastLine(%q) = %q, want %q", in, got, want)
		}
	}
}

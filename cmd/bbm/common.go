package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/gianting/bilingual-book-maker/internal/auth"
	"github.com/gianting/bilingual-book-maker/internal/invoke"
	"github.com/gianting/bilingual-book-maker/internal/logger"
	"github.com/gianting/bilingual-book-maker/internal/notify"
	"github.com/gianting/bilingual-book-maker/internal/prompt"
)

var (
	isTerminal     = term.IsTerminal
	lookupEnv      = os.LookupEnv
	getKey         = auth.GetKey
	hasKey         = auth.HasKey
	saveKey        = auth.SaveKey
	deleteKey      = auth.DeleteKey
	promptForKey   = auth.PromptForKey
	newConfirmer   = prompt.DefaultConfirmer
	notifyFinished = notify.Finished
	newRunner      = func(stdout, stderr io.Writer) invoke.Runner {
		return invoke.ExecRunner{Stdout: stdout, Stderr: stderr}
	}
)

func stdinIsTerminal() bool {
	return isTerminal(int(os.Stdin.Fd()))
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}

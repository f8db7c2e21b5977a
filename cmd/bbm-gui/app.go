package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/gianting/bilingual-book-maker/internal/invoke"
	"github.com/gianting/bilingual-book-maker/internal/logger"
	"github.com/gianting/bilingual-book-maker/internal/notify"
	"github.com/gianting/bilingual-book-maker/internal/progress"
	"github.com/gianting/bilingual-book-maker/internal/session"
)

var notifyFinished = notify.Finished

// closeWaitTimeout bounds how long closing the window waits for a canceled
// run to write its last record.
const closeWaitTimeout = 5 * time.Second

type launcherApp struct {
	window fyne.Window
	ctrl   *invoke.Controller

	// state is only touched on the UI goroutine.
	state      session.State
	phase      AppState
	statusLine *widget.Label

	fileEntry   *widget.Entry
	browseBtn   *widget.Button
	keyEntry    *widget.Entry
	langEntry   *widget.SelectEntry
	modelEntry  *widget.SelectEntry
	keepOnTop   *widget.Check
	startBtn    *widget.Button
	progressBar *widget.ProgressBar

	cancelMu        sync.Mutex
	activeCancel    context.CancelFunc
	runDone         chan struct{}
	panicNoticeOnce sync.Once
}

func newLauncherApp(w fyne.Window, ctrl *invoke.Controller, initial session.State) *launcherApp {
	a := &launcherApp{window: w, ctrl: ctrl, state: initial}
	a.setupUI()
	a.applyState(initial)
	a.setState(StateIdle)
	return a
}

func (a *launcherApp) setupUI() {
	a.fileEntry = widget.NewEntry()
	a.fileEntry.SetPlaceHolder("Path to .epub or .srt")
	a.fileEntry.OnChanged = func(s string) { a.state.FilePath = s }
	a.browseBtn = widget.NewButton("Browse…", a.showFilePicker)

	a.keyEntry = widget.NewPasswordEntry()
	a.keyEntry.SetPlaceHolder("OpenAI API key")
	a.keyEntry.OnChanged = func(s string) { a.state.Credential = s }

	a.langEntry = widget.NewSelectEntry(languageOptions())
	a.langEntry.SetPlaceHolder("e.g. zh-hant")
	a.langEntry.OnChanged = func(s string) { a.state.Language = s }

	a.modelEntry = widget.NewSelectEntry(modelOptions())
	a.modelEntry.SetPlaceHolder("e.g. gpt4o")
	a.modelEntry.OnChanged = func(s string) { a.state.Model = s }

	a.keepOnTop = widget.NewCheck("Keep window on top", func(b bool) { a.state.KeepOnTop = b })

	a.startBtn = widget.NewButton("Start Translation", a.startTranslation)
	a.startBtn.Importance = widget.HighImportance

	a.progressBar = widget.NewProgressBar()
	a.progressBar.Min = 0
	a.progressBar.Max = progress.Done

	a.statusLine = widget.NewLabel(statusText(StateIdle))

	form := widget.NewForm(
		widget.NewFormItem("Book file", container.NewBorder(nil, nil, nil, a.browseBtn, a.fileEntry)),
		widget.NewFormItem("API key", a.keyEntry),
		widget.NewFormItem("Target language", a.langEntry),
		widget.NewFormItem("Model", a.modelEntry),
	)

	a.window.SetContent(container.NewPadded(container.NewVBox(
		form,
		a.keepOnTop,
		a.startBtn,
		a.progressBar,
		a.statusLine,
	)))
}

// applyState copies s into the widgets. Must run on the UI goroutine.
func (a *launcherApp) applyState(s session.State) {
	a.state = s
	a.fileEntry.SetText(s.FilePath)
	a.keyEntry.SetText(s.Credential)
	a.langEntry.SetText(s.Language)
	a.modelEntry.SetText(s.Model)
	a.keepOnTop.SetChecked(s.KeepOnTop)
}

// widgetState reads the form back from the widgets.
func (a *launcherApp) widgetState() session.State {
	return session.State{
		FilePath:   a.fileEntry.Text,
		Credential: a.keyEntry.Text,
		Language:   a.langEntry.Text,
		Model:      a.modelEntry.Text,
		KeepOnTop:  a.keepOnTop.Checked,
	}
}

// setState must run on the UI goroutine. Every input is locked while running.
func (a *launcherApp) setState(s AppState) {
	a.phase = s
	a.statusLine.SetText(statusText(s))
	inputs := []fyne.Disableable{a.fileEntry, a.browseBtn, a.keyEntry, a.langEntry, a.modelEntry, a.keepOnTop, a.startBtn}
	for _, w := range inputs {
		if s == StateRunning {
			w.Disable()
		} else {
			w.Enable()
		}
	}
}

func (a *launcherApp) setProgress(p int) {
	a.progressBar.SetValue(float64(p))
}

func (a *launcherApp) startTranslation() {
	if a.phase == StateRunning {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	events, err := a.ctrl.Start(ctx, a.state)
	if err != nil {
		cancel()
		if errors.Is(err, invoke.ErrBusy) {
			logger.Debug("Start ignored while busy")
			return
		}
		dialog.ShowError(err, a.window)
		return
	}
	done := a.beginRun(cancel)
	a.setState(StateRunning)

	a.goGuarded("app.translate.events", func() {
		defer close(done)
		defer a.clearActiveCancel()
		for ev := range events {
			switch {
			case ev.Progress != nil:
				p := *ev.Progress
				a.onUI("app.translate.progress", func() { a.setProgress(p) })
			case ev.Completed != nil:
				c := *ev.Completed
				a.onUI("app.translate.done", func() { a.finish(c) })
			}
		}
	})
}

func (a *launcherApp) finish(c invoke.Completion) {
	next := c.State
	// Keep-on-top is not part of the invocation, so the live value wins.
	next.KeepOnTop = a.state.KeepOnTop
	a.applyState(next)
	a.setProgress(a.ctrl.Progress())
	a.setState(stateAfter(c.Outcome))

	a.showNotice(noticeFor(c.Outcome))
	if c.Outcome.Kind != invoke.ValidationFailed {
		notifyFinished(c.Outcome, next.FilePath)
	}
}

func (a *launcherApp) showNotice(n notice) {
	if n.isError {
		dialog.ShowError(errors.New(n.message), a.window)
		return
	}
	dialog.ShowInformation(n.title, n.message, a.window)
}

func (a *launcherApp) showFilePicker() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			logger.Warn("File picker failed", "error", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()
		a.fileEntry.SetText(reader.URI().Path())
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter(bookExtensions))
	fd.Show()
}

func (a *launcherApp) handleDropped(uri fyne.URI) {
	if a.phase == StateRunning {
		return
	}
	path := uri.Path()
	if !isBookPath(path) {
		dialog.ShowInformation("Unsupported file", "Drop an .epub or .srt file.", a.window)
		return
	}
	a.fileEntry.SetText(path)
}

// beginRun records cancel for the new run and returns the channel its event
// loop closes once the controller is done with it.
func (a *launcherApp) beginRun(cancel context.CancelFunc) chan struct{} {
	done := make(chan struct{})
	a.cancelMu.Lock()
	if a.activeCancel != nil {
		a.activeCancel()
	}
	a.activeCancel = cancel
	a.runDone = done
	a.cancelMu.Unlock()
	return done
}

// waitForRun blocks until the current run, if any, has delivered its
// completion or timeout passes. It reports whether the run finished.
func (a *launcherApp) waitForRun(timeout time.Duration) bool {
	a.cancelMu.Lock()
	done := a.runDone
	a.cancelMu.Unlock()
	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (a *launcherApp) clearActiveCancel() {
	a.cancelMu.Lock()
	if a.activeCancel != nil {
		a.activeCancel()
		a.activeCancel = nil
	}
	a.cancelMu.Unlock()
}

func (a *launcherApp) cancelActive(reason string) {
	a.cancelMu.Lock()
	cancel := a.activeCancel
	a.activeCancel = nil
	a.cancelMu.Unlock()
	if cancel != nil {
		logger.Warn("Cancellation requested", "reason", reason)
		cancel()
	}
}

// close stops a running translator, waits for it to settle, then writes the
// close-time record so that record is always the last one written.
func (a *launcherApp) close() {
	a.cancelActive("window closed")
	if !a.waitForRun(closeWaitTimeout) {
		logger.Warn("Translator did not stop before close", "timeout", closeWaitTimeout)
	}
	a.ctrl.Close(a.widgetState())
}

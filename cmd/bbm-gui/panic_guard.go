package main

import (
	"fmt"

	"fyne.io/fyne/v2"

	"github.com/gianting/bilingual-book-maker/internal/apperrors"
	"github.com/gianting/bilingual-book-maker/internal/invoke"
	"github.com/gianting/bilingual-book-maker/internal/logger"
)

const internalErrorDetail = "An internal error stopped the translation. Please retry, and restart the app if it happens again."

// guard runs fn and turns a panic into a failed run on the form instead of
// taking the window down with it. onUI tells whether fn runs on the UI
// goroutine.
func (a *launcherApp) guard(scope string, onUI bool, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic", "scope", scope, "panic", fmt.Sprint(r))
			a.recoverRun(scope, onUI, r)
		}
	}()
	fn()
}

// goGuarded runs fn on a new goroutine under guard.
func (a *launcherApp) goGuarded(scope string, fn func()) {
	go a.guard(scope, false, fn)
}

// onUI hands fn to the UI goroutine under guard.
func (a *launcherApp) onUI(scope string, fn func()) {
	fyne.Do(func() { a.guard(scope, true, fn) })
}

// recoverRun stops the active translator and reports the panic the same way
// a translator failure is reported.
func (a *launcherApp) recoverRun(scope string, onUI bool, r any) {
	a.cancelActive("panic recovered: " + scope)
	out := panicOutcome(scope, r)
	if onUI {
		a.failRun(out)
		return
	}
	fyne.Do(func() { a.failRun(out) })
}

// panicOutcome reports a recovered panic as a failed translation.
func panicOutcome(scope string, r any) invoke.Outcome {
	return invoke.Outcome{
		Kind:   invoke.ProcessFailed,
		Detail: internalErrorDetail,
		Err:    apperrors.Process(fmt.Errorf("panic in %s: %v", scope, r)),
	}
}

// failRun resets the form after a recovered panic. Only the first panic
// shows a dialog.
func (a *launcherApp) failRun(out invoke.Outcome) {
	// The widgets are the only trustworthy copy after a panic mid-update.
	a.state = a.widgetState()
	a.setProgress(0)
	a.setState(stateAfter(out))
	a.panicNoticeOnce.Do(func() { a.showNotice(noticeFor(out)) })
}

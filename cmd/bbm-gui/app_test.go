package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"github.com/gianting/bilingual-book-maker/internal/invoke"
	"github.com/gianting/bilingual-book-maker/internal/progress"
	"github.com/gianting/bilingual-book-maker/internal/session"
	"github.com/gianting/bilingual-book-maker/internal/settings"
)

const runTimeout = 5 * time.Second

type memoryStore struct {
	mu    sync.Mutex
	saved []settings.Record
}

func (m *memoryStore) Save(rec settings.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, rec)
	return nil
}

func (m *memoryStore) records() []settings.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]settings.Record(nil), m.saved...)
}

// newTestLauncher builds a form on the fyne test driver. A nil runner means
// no translation is expected to start.
func newTestLauncher(t *testing.T, initial session.State, runner invoke.Runner) (*launcherApp, *memoryStore) {
	t.Helper()
	test.NewTempApp(t)
	if runner == nil {
		runner = invoke.RunnerFunc(func(context.Context, []string) error {
			t.Errorf("translator launched unexpectedly")
			return nil
		})
	}
	store := &memoryStore{}
	ctrl := invoke.NewController(invoke.Config{
		Runner:   runner,
		Store:    store,
		Schedule: progress.Schedule{{Percent: 0}},
	})
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)
	return newLauncherApp(w, ctrl, initial), store
}

// stubNotify records desktop notifications instead of posting them.
func stubNotify(t *testing.T) *[]invoke.OutcomeKind {
	t.Helper()
	prev := notifyFinished
	t.Cleanup(func() { notifyFinished = prev })
	var kinds []invoke.OutcomeKind
	notifyFinished = func(out invoke.Outcome, _ string) { kinds = append(kinds, out.Kind) }
	return &kinds
}

func readyState() session.State {
	s := session.Defaults()
	s.FilePath = "/books/a.epub"
	s.Credential = "sk-typed"
	return s
}

func startAndWait(t *testing.T, a *launcherApp) {
	t.Helper()
	a.startTranslation()
	if !a.waitForRun(runTimeout) {
		t.Fatalf("translation did not finish")
	}
}

func assertInputsEnabled(t *testing.T, a *launcherApp) {
	t.Helper()
	if a.fileEntry.Disabled() || a.browseBtn.Disabled() || a.keyEntry.Disabled() ||
		a.langEntry.Disabled() || a.modelEntry.Disabled() || a.keepOnTop.Disabled() || a.startBtn.Disabled() {
		t.Fatalf("inputs still disabled after the run")
	}
}

func TestLauncher_ShowsInitialState(t *testing.T) {
	initial := session.Defaults()
	initial.FilePath = "/books/a.epub"
	a, _ := newTestLauncher(t, initial, nil)

	if a.fileEntry.Text != "/books/a.epub" || a.langEntry.Text != "zh-hant" || a.modelEntry.Text != "gpt4o" {
		t.Fatalf("widgets not populated: file=%q lang=%q model=%q", a.fileEntry.Text, a.langEntry.Text, a.modelEntry.Text)
	}
	if !a.keepOnTop.Checked {
		t.Fatalf("keep on top should default to checked")
	}
}

func TestLauncher_EditsUpdateState(t *testing.T) {
	a, _ := newTestLauncher(t, session.Defaults(), nil)

	a.keyEntry.SetText("sk-typed")
	a.langEntry.SetText("ko")
	a.keepOnTop.SetChecked(false)

	if a.state.Credential != "sk-typed" || a.state.Language != "ko" || a.state.KeepOnTop {
		t.Fatalf("state not updated from widgets: %+v", a.state)
	}
}

func TestLauncher_CloseOmitsCredential(t *testing.T) {
	a, store := newTestLauncher(t, readyState(), nil)

	a.close()
	saved := store.records()
	if len(saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(saved))
	}
	if rec := saved[0]; rec.Credential != "" || rec.FilePath != "/books/a.epub" {
		t.Fatalf("close record = %+v", rec)
	}
}

func TestLauncher_TranslateSuccess(t *testing.T) {
	notified := stubNotify(t)
	var gotArgv []string
	a, store := newTestLauncher(t, readyState(), invoke.RunnerFunc(func(_ context.Context, argv []string) error {
		gotArgv = argv
		return nil
	}))

	startAndWait(t, a)

	if a.progressBar.Value != progress.Done {
		t.Fatalf("progress = %v, want %d", a.progressBar.Value, progress.Done)
	}
	if a.phase != StateSuccess || a.statusLine.Text != statusText(StateSuccess) {
		t.Fatalf("phase = %v, status = %q", a.phase, a.statusLine.Text)
	}
	assertInputsEnabled(t, a)
	if !strings.Contains(strings.Join(gotArgv, " "), "--book_name /books/a.epub") {
		t.Fatalf("argv = %q", gotArgv)
	}
	saved := store.records()
	if len(saved) != 1 || saved[0].Credential != "sk-typed" {
		t.Fatalf("success record = %+v", saved)
	}
	if len(*notified) != 1 || (*notified)[0] != invoke.Success {
		t.Fatalf("notifications = %v", *notified)
	}
	if a.window.Canvas().Overlays().Top() == nil {
		t.Fatalf("no completion dialog shown")
	}
}

func TestLauncher_TranslateFailure(t *testing.T) {
	notified := stubNotify(t)
	a, store := newTestLauncher(t, readyState(), invoke.RunnerFunc(func(context.Context, []string) error {
		return errors.New("quota exceeded")
	}))

	startAndWait(t, a)

	if a.progressBar.Value != 0 {
		t.Fatalf("progress = %v, want 0", a.progressBar.Value)
	}
	if a.phase != StateFailure {
		t.Fatalf("phase = %v, want failure", a.phase)
	}
	assertInputsEnabled(t, a)
	if saved := store.records(); len(saved) != 0 {
		t.Fatalf("failure should not save: %+v", saved)
	}
	if len(*notified) != 1 || (*notified)[0] != invoke.ProcessFailed {
		t.Fatalf("notifications = %v", *notified)
	}
	if a.window.Canvas().Overlays().Top() == nil {
		t.Fatalf("no error dialog shown")
	}
}

func TestLauncher_MissingFieldsWarnWithoutLaunch(t *testing.T) {
	notified := stubNotify(t)
	var launches atomic.Int32
	a, store := newTestLauncher(t, session.Defaults(), invoke.RunnerFunc(func(context.Context, []string) error {
		launches.Add(1)
		return nil
	}))

	startAndWait(t, a)

	if launches.Load() != 0 {
		t.Fatalf("translator launched %d times", launches.Load())
	}
	if a.phase != StateIdle || a.progressBar.Value != 0 {
		t.Fatalf("phase = %v, progress = %v", a.phase, a.progressBar.Value)
	}
	assertInputsEnabled(t, a)
	if len(store.records()) != 0 || len(*notified) != 0 {
		t.Fatalf("validation failure should neither save nor notify")
	}
	if a.window.Canvas().Overlays().Top() == nil {
		t.Fatalf("no missing-fields dialog shown")
	}
}

func TestLauncher_KeepOnTopSurvivesRun(t *testing.T) {
	stubNotify(t)
	started := make(chan struct{})
	release := make(chan struct{})
	a, store := newTestLauncher(t, readyState(), invoke.RunnerFunc(func(context.Context, []string) error {
		close(started)
		<-release
		return nil
	}))

	a.startTranslation()
	<-started
	if !a.keepOnTop.Disabled() || !a.fileEntry.Disabled() {
		t.Fatalf("inputs should be locked while running")
	}
	a.keepOnTop.SetChecked(false)
	close(release)
	if !a.waitForRun(runTimeout) {
		t.Fatalf("translation did not finish")
	}

	if a.keepOnTop.Checked || a.state.KeepOnTop {
		t.Fatalf("keep on top reverted by completion: checked=%v state=%v", a.keepOnTop.Checked, a.state.KeepOnTop)
	}
	a.close()
	saved := store.records()
	last := saved[len(saved)-1]
	if last.KeepOnTop == nil || *last.KeepOnTop {
		t.Fatalf("close record keepOnTop = %v", last.KeepOnTop)
	}
}

func TestLauncher_CloseWaitsForRun(t *testing.T) {
	stubNotify(t)
	started := make(chan struct{})
	a, store := newTestLauncher(t, readyState(), invoke.RunnerFunc(func(ctx context.Context, _ []string) error {
		close(started)
		<-ctx.Done()
		// The translator had already exited cleanly.
		return nil
	}))

	a.startTranslation()
	<-started
	a.close()

	saved := store.records()
	if len(saved) != 2 {
		t.Fatalf("saved %d records, want success then close", len(saved))
	}
	if saved[0].Credential != "sk-typed" {
		t.Fatalf("first record should be the success record: %+v", saved[0])
	}
	if saved[1].Credential != "" {
		t.Fatalf("last record must be the close record: %+v", saved[1])
	}
}

func TestLauncher_WaitForRunWithoutRun(t *testing.T) {
	a, _ := newTestLauncher(t, session.Defaults(), nil)
	if !a.waitForRun(time.Millisecond) {
		t.Fatalf("waitForRun should return at once when nothing ran")
	}
}

// Package invoke runs the external translator for a session and classifies
// the result.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gianting/bilingual-book-maker/internal/apperrors"
	"github.com/gianting/bilingual-book-maker/internal/logger"
	"github.com/gianting/bilingual-book-maker/internal/progress"
	"github.com/gianting/bilingual-book-maker/internal/session"
	"github.com/gianting/bilingual-book-maker/internal/settings"
)

// ErrBusy is returned when an invocation is already in flight.
var ErrBusy = errors.New("a translation is already running")

// RecordStore is the subset of settings.Store the controller writes to.
type RecordStore interface {
	Save(settings.Record) error
}

type Config struct {
	Runner   Runner
	Store    RecordStore
	Command  Command
	Schedule progress.Schedule
	// OnProgress, when set, observes every progress change.
	OnProgress func(percent int)
}

// Event is sent from a worker started by Start. Exactly one of the fields is set.
type Event struct {
	Progress  *int
	Completed *Completion
}

// Completion carries the outcome together with the state to display next.
type Completion struct {
	Outcome Outcome
	State   session.State
}

type Controller struct {
	runner     Runner
	store      RecordStore
	command    Command
	schedule   progress.Schedule
	onProgress func(int)
	reporter   *progress.Reporter

	busy atomic.Bool

	listenerMu sync.Mutex
	listener   chan<- Event
}

func NewController(cfg Config) *Controller {
	c := &Controller{
		runner:     cfg.Runner,
		store:      cfg.Store,
		command:    cfg.Command,
		schedule:   cfg.Schedule,
		onProgress: cfg.OnProgress,
	}
	if c.runner == nil {
		c.runner = ExecRunner{}
	}
	if c.command.Executable == "" {
		c.command = DefaultCommand()
	}
	if c.schedule == nil {
		c.schedule = progress.DefaultSchedule(progress.DefaultStepDelay)
	}
	c.reporter = progress.NewReporter(c.forwardProgress)
	return c
}

// Progress returns the current synthetic progress value.
func (c *Controller) Progress() int { return c.reporter.Value() }

// Busy reports whether an invocation is in flight.
func (c *Controller) Busy() bool { return c.busy.Load() }

// Run validates state, launches the translator and blocks until it exits.
// The returned state is what the form should show afterwards.
func (c *Controller) Run(ctx context.Context, state session.State) (Outcome, session.State, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return Outcome{}, state, ErrBusy
	}
	defer c.busy.Store(false)
	out, next := c.run(ctx, state)
	return out, next, nil
}

// Start runs the invocation on a worker goroutine. The channel receives
// progress events followed by one Completed event and is then closed.
func (c *Controller) Start(ctx context.Context, state session.State) (<-chan Event, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	events := make(chan Event, 32)
	c.setListener(events)

	go func() {
		defer close(events)
		defer c.busy.Store(false)

		var completion Completion
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Recovered panic", "scope", "invoke.worker", "panic", fmt.Sprint(r))
					c.reporter.Reset()
					err := apperrors.Process(fmt.Errorf("panic: %v", r))
					completion = Completion{
						Outcome: Outcome{Kind: ProcessFailed, Detail: apperrors.PublicMessage(err), Err: err},
						State:   state,
					}
				}
			}()
			out, next := c.run(ctx, state)
			completion = Completion{Outcome: out, State: next}
		}()
		c.setListener(nil)
		events <- Event{Completed: &completion}
	}()
	return events, nil
}

// Close flushes the close-time record, which never carries the credential.
func (c *Controller) Close(state session.State) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(state.CloseRecord()); err != nil {
		logger.Warn("Failed to save settings on close", "error", err)
		return
	}
	logger.Debug("Settings saved on close")
}

func (c *Controller) run(ctx context.Context, state session.State) (Outcome, session.State) {
	log := logger.With("run_id", newRunID())

	if missing := state.Missing(); len(missing) > 0 {
		c.reporter.Reset()
		err := apperrors.New(apperrors.KindValidation,
			"Missing required fields: "+strings.Join(missing, ", "), nil)
		log.Warn("Validation failed", "missing", missing)
		return Outcome{Kind: ValidationFailed, Missing: missing, Err: err}, state
	}

	c.reporter.Begin()
	req := state.Request()
	argv := c.command.Argv(req)
	log.Info("Starting translator",
		"command", c.command.String(),
		"book", req.SourcePath,
		"language", req.TargetLanguage,
		"model", req.ModelID)

	progressCtx, stopProgress := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.reporter.Advance(progressCtx, c.schedule)
	}()

	err := func() error {
		defer func() {
			stopProgress()
			wg.Wait()
		}()
		return c.runner.Run(ctx, argv)
	}()

	if err != nil {
		c.reporter.Reset()
		if _, ok := apperrors.KindOf(err); !ok {
			err = apperrors.New(apperrors.KindProcess, "Translator failed: "+err.Error(), err)
		}
		detail := TruncateGraphemes(logger.RedactString(apperrors.PublicMessage(err)), maxDetailGraphemes)
		log.Error("Translation failed", "detail", detail)
		return Outcome{Kind: ProcessFailed, Detail: detail, Err: err}, state
	}

	c.reporter.Complete()
	next := session.State{
		FilePath:   req.SourcePath,
		Credential: req.Credential,
		Language:   req.TargetLanguage,
		Model:      req.ModelID,
		KeepOnTop:  state.KeepOnTop,
	}
	if c.store != nil {
		if err := c.store.Save(next.SuccessRecord()); err != nil {
			log.Warn("Failed to save settings after success", "error", err)
		}
	}
	log.Info("Translation finished")
	return Outcome{Kind: Success}, next
}

func (c *Controller) setListener(ch chan<- Event) {
	c.listenerMu.Lock()
	c.listener = ch
	c.listenerMu.Unlock()
}

// forwardProgress runs under the reporter lock. Progress events are lossy:
// a slow reader drops intermediate values, never the completion.
func (c *Controller) forwardProgress(p int) {
	if c.onProgress != nil {
		c.onProgress(p)
	}
	c.listenerMu.Lock()
	ch := c.listener
	c.listenerMu.Unlock()
	if ch == nil {
		return
	}
	v := p
	select {
	case ch <- Event{Progress: &v}:
	default:
	}
}

func newRunID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

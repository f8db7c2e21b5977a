// Package progress drives the form's progress bar.
//
// The translator reports nothing back while it runs, so the values produced
// here follow a fixed time schedule. They are a UX affordance only and carry
// no information about how much of the book has been translated.
package progress

import (
	"context"
	"sync"
	"time"
)

const (
	// MaxSynthetic is the highest value the schedule may reach; 100 is
	// reserved for a confirmed success.
	MaxSynthetic = 80
	Done         = 100

	DefaultStepDelay = 500 * time.Millisecond
)

type Step struct {
	Percent int
	Delay   time.Duration
}

type Schedule []Step

// DefaultSchedule returns 0, 20, 40, 60, 80 separated by delay.
func DefaultSchedule(delay time.Duration) Schedule {
	s := make(Schedule, 0, 5)
	for p := 0; p <= MaxSynthetic; p += 20 {
		s = append(s, Step{Percent: p, Delay: delay})
	}
	return s
}

// Sink receives every change of value. It is called with the reporter's lock
// held, so it must not call back into the Reporter.
type Sink func(percent int)

// Reporter holds the current percent in [0, 100].
type Reporter struct {
	mu       sync.Mutex
	percent  int
	inFlight bool
	sink     Sink
}

func NewReporter(sink Sink) *Reporter {
	return &Reporter{sink: sink}
}

func (r *Reporter) Value() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.percent
}

// Begin resets to 0 and opens an invocation; only then does Advance move the value.
func (r *Reporter) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight = true
	r.storeLocked(0)
}

// Reset returns to 0 and closes any open invocation.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight = false
	r.storeLocked(0)
}

// Complete sets 100 and closes the invocation.
func (r *Reporter) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight = false
	r.storeLocked(Done)
}

// Advance walks schedule until it ends or ctx is done. Values are capped at
// MaxSynthetic and never move backwards.
func (r *Reporter) Advance(ctx context.Context, schedule Schedule) {
	for i, step := range schedule {
		if ctx.Err() != nil {
			return
		}
		r.raise(step.Percent)
		if i == len(schedule)-1 || step.Delay <= 0 {
			continue
		}
		timer := time.NewTimer(step.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (r *Reporter) raise(p int) {
	if p > MaxSynthetic {
		p = MaxSynthetic
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFlight || p <= r.percent {
		return
	}
	r.storeLocked(p)
}

func (r *Reporter) storeLocked(p int) {
	if p < 0 {
		p = 0
	}
	if p > Done {
		p = Done
	}
	changed := p != r.percent
	r.percent = p
	if r.sink != nil && changed {
		r.sink(p)
	}
}

// Package cleanup runs shutdown hooks registered while the CLI runs, such as
// closing the JSONL log file.
package cleanup

import (
	"errors"
	"fmt"
	"sync"
)

type hook struct {
	name string
	fn   func() error
}

var (
	mu    sync.Mutex
	hooks []hook
)

// Register adds fn under name. Hooks run in reverse registration order.
func Register(name string, fn func() error) {
	if fn == nil {
		return
	}
	mu.Lock()
	hooks = append(hooks, hook{name: name, fn: fn})
	mu.Unlock()
}

// RunAll executes and forgets all registered hooks. Every hook runs; the
// failures are joined, each prefixed with its hook name.
func RunAll() error {
	mu.Lock()
	pending := hooks
	hooks = nil
	mu.Unlock()

	var errs []error
	for i := len(pending) - 1; i >= 0; i-- {
		if err := pending[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", pending[i].name, err))
		}
	}
	return errors.Join(errs...)
}

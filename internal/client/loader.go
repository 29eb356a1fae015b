package client

import (
	"context"
	"sync"
)

// State is the lifecycle of one data-bound view: Idle until the first load,
// Loading while a fetch is in flight, then Success or Error.
type State int

const (
	Idle State = iota
	Loading
	Success
	Error
)

// Loader runs at most one fetch per distinct input key. Calling Load again
// with the same key while that fetch is outstanding is a no-op; calling it
// with a new key cancels the old fetch and its late result is dropped, so a
// stale response can never overwrite the state for the current key.
type Loader struct {
	mu     sync.Mutex
	key    string
	cancel context.CancelFunc
	state  State
	data   any
	err    error
}

func NewLoader() *Loader {
	return &Loader{state: Idle}
}

// Load starts fetch for key unless an identical load is already in flight.
// The fetch runs on its own goroutine with a context cancelled when a newer
// key supersedes it.
func (l *Loader) Load(ctx context.Context, key string, fetch func(context.Context) (any, error)) {
	l.mu.Lock()
	if l.key == key && l.state == Loading {
		l.mu.Unlock()
		return
	}
	if l.cancel != nil {
		l.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	l.key = key
	l.cancel = cancel
	l.state = Loading
	l.mu.Unlock()

	go func() {
		data, err := fetch(fctx)

		l.mu.Lock()
		defer l.mu.Unlock()
		// The view moved on to a different input while we were fetching.
		if l.key != key || fctx.Err() != nil {
			return
		}
		if err != nil {
			l.state = Error
			l.err = err
			return
		}
		l.state = Success
		l.data = data
		l.err = nil
	}()
}

// Snapshot returns the current state, data, and error for the current key.
func (l *Loader) Snapshot() (State, any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state, l.data, l.err
}

// Key returns the input key of the most recent Load call.
func (l *Loader) Key() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key
}

// Stop cancels any in-flight fetch.
func (l *Loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
}

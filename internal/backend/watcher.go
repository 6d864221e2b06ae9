package backend

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/atomicstack/vislevel/internal/tmux"
)

// Event carries a fresh tree or the error from a failed poll.
type Event struct {
	Tree tmux.Tree
	Err  error
}

type fetchFunc func(ctx context.Context) (tmux.Tree, error)

// Watcher polls tmux at a fixed interval and publishes a tree whenever it
// changes.
type Watcher struct {
	interval time.Duration
	fetch    fetchFunc

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher that polls the server at socketPath every
// interval. Fetches never start closer together than interval.
func NewWatcher(socketPath string, interval time.Duration) *Watcher {
	gate := newFetchGate(interval)
	return newWatcher(interval, gate.gated(func(context.Context) (tmux.Tree, error) {
		return tmux.FetchTree(socketPath)
	}))
}

func newWatcher(interval time.Duration, fetch fetchFunc) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		interval: interval,
		fetch:    fetch,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.wg.Add(1)
	go w.poll()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events. It is closed once the watcher
// has stopped.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. The poller exits after its current fetch
// completes; use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the poller has exited and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) poll() {
	defer w.wg.Done()

	var (
		last    tmux.Tree
		lastErr string
		sent    bool
	)
	emit := func() bool {
		tree, err := w.fetch(w.ctx)
		if w.ctx.Err() != nil {
			return false
		}
		evt := Event{Tree: tree, Err: err}
		if err != nil {
			if err.Error() == lastErr {
				return true
			}
			lastErr = err.Error()
		} else {
			if sent && lastErr == "" && reflect.DeepEqual(tree, last) {
				return true
			}
			last, lastErr, sent = tree, "", true
		}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}

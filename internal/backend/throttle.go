package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/vislevel/internal/tmux"
)

// fetchGate keeps tree fetches at least one poll interval apart, so ticks
// that queued up behind a slow fetch do not hit the server back to back.
type fetchGate struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func newFetchGate(interval time.Duration) *fetchGate {
	if interval <= 0 {
		return &fetchGate{}
	}
	return &fetchGate{interval: interval}
}

// wait blocks until the next fetch may start. It returns ctx's error if ctx
// ends first.
func (g *fetchGate) wait(ctx context.Context) error {
	if g == nil || g.interval <= 0 {
		return ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.last.IsZero() {
		if d := time.Until(g.last.Add(g.interval)); d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	g.last = time.Now()
	return nil
}

// gated wraps fetch so each call passes the gate first.
func (g *fetchGate) gated(fetch fetchFunc) fetchFunc {
	return func(ctx context.Context) (tmux.Tree, error) {
		if err := g.wait(ctx); err != nil {
			return tmux.Tree{}, err
		}
		return fetch(ctx)
	}
}

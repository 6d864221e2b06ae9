package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atomicstack/vislevel/internal/tmux"
)

func TestFetchGateSpacesFetches(t *testing.T) {
	gate := newFetchGate(20 * time.Millisecond)
	calls := 0
	fetch := gate.gated(func(context.Context) (tmux.Tree, error) {
		calls++
		return tmux.Tree{}, nil
	})
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := fetch(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected at least 40ms across three fetches, got %s", elapsed)
	}
	if calls != 3 {
		t.Fatalf("expected 3 fetches, got %d", calls)
	}
}

func TestFetchGateGivesUpWhenCancelled(t *testing.T) {
	gate := newFetchGate(time.Hour)
	calls := 0
	fetch := gate.gated(func(context.Context) (tmux.Tree, error) {
		calls++
		return tmux.Tree{}, nil
	})
	if _, err := fetch(context.Background()); err != nil {
		t.Fatalf("first fetch must pass immediately: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := fetch(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the gated fetch to be skipped, got %d calls", calls)
	}
}

func TestFetchGateDisabled(t *testing.T) {
	var gate *fetchGate
	if err := gate.wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zero := newFetchGate(0)
	for i := 0; i < 3; i++ {
		if err := zero.wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

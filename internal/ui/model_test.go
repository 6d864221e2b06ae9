package ui

import (
	"reflect"
	"strings"
	"testing"

	"github.com/atomicstack/vislevel/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModelListsTreeInDisplayOrder(t *testing.T) {
	h, _ := newLayoutHarness(t, Options{})
	want := []string{
		"home", "home/Home", "home/Live", "home/Me",
		"live", "live/Hot", "live/Follow", "live/Nearby",
		"me", "me/Profile", "me/Settings",
	}
	if got := rowIDs(h); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected rows %v, got %v", want, got)
	}
	if selectedID(h) != "home" {
		t.Fatalf("expected cursor on the root level, got %q", selectedID(h))
	}
}

func TestSelectMakesItemCurrentAndCascades(t *testing.T) {
	h, reg := newLayoutHarness(t, Options{})
	h.Keys("down", "down")
	if selectedID(h) != "home/Live" {
		t.Fatalf("expected cursor on home/Live, got %q", selectedID(h))
	}
	h.Keys("enter")

	if got := mustLevel(t, reg, "home").CurrentItem().Name(); got != "Live" {
		t.Fatalf("expected Live current, got %q", got)
	}
	hot, ok := mustLevel(t, reg, "live").LookupItem("Hot")
	if !ok || !hot.IsVisible() {
		t.Fatalf("expected live/Hot to become visible")
	}
	if selectedID(h) != "home/Live" {
		t.Fatalf("expected cursor to stay on home/Live, got %q", selectedID(h))
	}
	row, _ := h.Model().list.Selected()
	if !row.Current || !row.Visible {
		t.Fatalf("expected refreshed row to be current and visible, got %+v", row)
	}

	var paths []string
	for _, e := range h.Model().Feed().Recent(0) {
		mark := "-"
		if e.Visible {
			mark = "+"
		}
		paths = append(paths, mark+e.Path)
	}
	want := []string{"+home/Home", "-home/Home", "+home/Live", "+live/Hot"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("expected feed %v, got %v", want, paths)
	}
}

func TestSelectOnLevelRowOnlyInforms(t *testing.T) {
	h, reg := newLayoutHarness(t, Options{})
	h.Keys("enter")
	if got := mustLevel(t, reg, "home").CurrentItem().Name(); got != "Home" {
		t.Fatalf("expected selection unchanged, got %q", got)
	}
	if !strings.Contains(h.View(), "Pick an item row") {
		t.Fatalf("expected hint in view, got:\n%s", h.View())
	}
}

func TestToggleFlipsLevelVisibility(t *testing.T) {
	h, reg := newLayoutHarness(t, Options{})
	h.Keys("v")
	home := mustLevel(t, reg, "home")
	if home.IsVisible() {
		t.Fatalf("expected home hidden after toggle")
	}
	if home.CurrentItem().IsVisible() {
		t.Fatalf("expected current item hidden with its level")
	}
	h.Keys("v")
	if !home.IsVisible() || !home.CurrentItem().IsVisible() {
		t.Fatalf("expected home and its current item visible again")
	}
}

func TestResetClearsLevelItems(t *testing.T) {
	h, reg := newLayoutHarness(t, Options{})
	h.Keys("down", "down", "down", "down")
	if selectedID(h) != "live" {
		t.Fatalf("expected cursor on live, got %q", selectedID(h))
	}
	h.Keys("r")
	live := mustLevel(t, reg, "live")
	if live.State().String() != "uninitialized" || len(live.ItemNames()) != 0 {
		t.Fatalf("expected live reset, got state %s items %v", live.State(), live.ItemNames())
	}
	for _, id := range rowIDs(h) {
		if strings.HasPrefix(id, "live/") {
			t.Fatalf("expected no live item rows after reset, got %v", rowIDs(h))
		}
	}
	if !strings.Contains(h.View(), "uninitialized") {
		t.Fatalf("expected level state in view, got:\n%s", h.View())
	}
}

func TestRemoveDropsLevelFromRegistry(t *testing.T) {
	h, reg := newLayoutHarness(t, Options{})
	h.Keys("end", "up", "up")
	if selectedID(h) != "me" {
		t.Fatalf("expected cursor on me, got %q", selectedID(h))
	}
	h.Keys("x")
	if _, ok := reg.Lookup("me"); ok {
		t.Fatalf("expected me removed from registry")
	}
	for _, id := range rowIDs(h) {
		if id == "me" || strings.HasPrefix(id, "me/") {
			t.Fatalf("expected me rows gone, got %v", rowIDs(h))
		}
	}
}

func TestOperationsApplyDuringUpdate(t *testing.T) {
	h, reg := newLayoutHarness(t, Options{})
	h.Keys("end", "up", "up")
	if selectedID(h) != "me" {
		t.Fatalf("expected cursor on me, got %q", selectedID(h))
	}

	_, cmd := h.Model().Update(keyMsg("x"))
	if _, ok := reg.Lookup("me"); ok {
		t.Fatalf("expected me removed before the returned command runs")
	}
	if cmd == nil {
		t.Fatalf("expected a command carrying the result")
	}
	res, ok := cmd().(command.Result)
	if !ok || res.ID != "remove" || res.Label != "me" || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := cmd().(command.Result); got != res {
		t.Fatalf("expected the command to replay the same result, got %+v", got)
	}
}

func TestRemoveOfVanishedLevelReportsError(t *testing.T) {
	h, reg := newLayoutHarness(t, Options{})
	h.Keys("end", "up", "up")
	reg.Remove("me")
	h.Keys("x")
	if !strings.Contains(h.View(), "Error: level no longer exists: me") {
		t.Fatalf("expected error in view, got:\n%s", h.View())
	}
}

func TestCursorWrapsAround(t *testing.T) {
	h, _ := newLayoutHarness(t, Options{})
	h.Keys("k")
	if selectedID(h) != "me/Settings" {
		t.Fatalf("expected wrap to the last row, got %q", selectedID(h))
	}
	h.Keys("j")
	if selectedID(h) != "home" {
		t.Fatalf("expected wrap to the first row, got %q", selectedID(h))
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c", "esc"} {
		h, _ := newLayoutHarness(t, Options{})
		h.Keys(k)
		if !h.Quit() {
			t.Fatalf("expected %s to quit", k)
		}
	}
}

func TestCommandResultErrorClearedBySuccess(t *testing.T) {
	h, _ := newLayoutHarness(t, Options{})
	h.Send(command.Result{ID: "reset", Label: "x", Err: errLevelGone})
	if h.Model().errMsg == "" {
		t.Fatalf("expected error recorded")
	}
	h.Send(command.Result{ID: "toggle", Label: "home"})
	if h.Model().errMsg != "" {
		t.Fatalf("expected error cleared, got %q", h.Model().errMsg)
	}
}

func TestWindowSizeRespectsFixedDimensions(t *testing.T) {
	h, _ := newLayoutHarness(t, Options{Width: 40})
	h.Send(tea.WindowSizeMsg{Width: 100, Height: 12})
	if h.Model().width != 40 || h.Model().height != 12 {
		t.Fatalf("expected fixed width and resized height, got %dx%d", h.Model().width, h.Model().height)
	}
}

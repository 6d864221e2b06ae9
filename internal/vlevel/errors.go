package vlevel

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

var (
	// ErrInvalidName is returned for empty or blank item names.
	ErrInvalidName = errors.New("invalid item name")
	// ErrUnknownItem is returned when a name was never declared on an active level.
	ErrUnknownItem = errors.New("unknown item")
	// ErrCyclicNesting is returned when nesting would make a level its own ancestor.
	ErrCyclicNesting = errors.New("cyclic level nesting")
)

// InvalidNameError reports a rejected item name.
type InvalidNameError struct {
	Level string
	Name  string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("level %s: invalid item name %q", e.Level, e.Name)
}

func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// UnknownItemError reports a lookup of an undeclared item. Suggestion holds
// the closest declared name, if any is close enough.
type UnknownItemError struct {
	Level      string
	Name       string
	Suggestion string
}

func (e *UnknownItemError) Error() string {
	msg := fmt.Sprintf("level %s: unknown item %q", e.Level, e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownItemError) Unwrap() error { return ErrUnknownItem }

// CyclicNestingError reports an attempt to nest Child beneath Parent when
// Parent already sits inside Child.
type CyclicNestingError struct {
	Parent string
	Child  string
}

func (e *CyclicNestingError) Error() string {
	return fmt.Sprintf("cannot nest level %s under item %s: level would contain itself", e.Child, e.Parent)
}

func (e *CyclicNestingError) Unwrap() error { return ErrCyclicNesting }

func validName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// suggest returns the declared name closest to name, or "" when nothing is
// within a third of the name's length (minimum two edits).
func suggest(name string, declared []string) string {
	limit := utf8.RuneCountInString(name) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	for _, candidate := range declared {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(candidate))
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

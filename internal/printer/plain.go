package printer

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/atomicstack/vislevel/internal/vlevel"
)

// Plain prints one line per item transition. Use Hook as a registry item
// hook so every item is followed from the moment it is created.
type Plain struct {
	w     io.Writer
	now   func() time.Time
	scope vlevel.Scope

	mu sync.Mutex
}

func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w, now: time.Now}
}

// Hook subscribes to item.
func (p *Plain) Hook(item *vlevel.Item) {
	p.scope.Subscribe(item, p.print)
}

// Close stops following every item.
func (p *Plain) Close() {
	p.scope.Close()
}

func (p *Plain) print(item *vlevel.Item, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stamp := color.New(color.Faint).Sprint(p.now().Format("15:04:05.000"))
	if visible {
		fmt.Fprintf(p.w, "%s %s %s\n", stamp, color.New(color.FgGreen, color.Bold).Sprint("+"), item.Path())
		return
	}
	fmt.Fprintf(p.w, "%s %s %s\n", stamp, color.New(color.FgRed).Sprint("-"), item.Path())
}

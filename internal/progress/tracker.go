package progress

import (
	"fmt"
	"io"

	"github.com/klauern/workspace-architect/internal/sync"
	"github.com/klauern/workspace-architect/internal/ui"
)

// Tracker turns sync events into output. With a drawn bar only failures are
// printed as lines; without one every item gets a status line.
type Tracker struct {
	out    io.Writer
	barOut io.Writer
	bar    *Bar
}

// NewTracker prints item lines to out and draws bars on barOut.
func NewTracker(out, barOut io.Writer) *Tracker {
	return &Tracker{out: out, barOut: barOut}
}

// Handle is a sync.Options.Progress callback.
func (t *Tracker) Handle(ev sync.Event) {
	switch ev.Kind {
	case sync.EventState:
		if ev.State.Terminal() && t.bar != nil {
			_ = t.bar.Finish()
			t.bar = nil
		}
	case sync.EventItem:
		if ev.Item == nil {
			return
		}
		if t.bar == nil && ev.Total > 0 {
			t.bar = New(Options{
				Max:         int64(ev.Total),
				Description: ev.Resource,
				Writer:      t.barOut,
			})
		}
		t.item(ev)
	}
}

func (t *Tracker) item(ev sync.Event) {
	line := ui.ItemLine(*ev.Item)
	if t.bar == nil || !t.bar.Enabled() {
		fmt.Fprintln(t.out, "  "+line)
		return
	}
	if !ev.Item.Success() {
		_ = t.bar.Clear()
		fmt.Fprintln(t.out, "  "+line)
	}
	t.bar.Describe(fmt.Sprintf("%s %s", ev.Resource, ev.Item.Path))
	_ = t.bar.Add(1)
}

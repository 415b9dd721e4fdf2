package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klauern/workspace-architect/internal/sync"
	"github.com/klauern/workspace-architect/internal/ui"
)

func TestTrackerPrintsLinesWithoutTerminal(t *testing.T) {
	ui.DisableColors()
	defer ui.EnableColors()

	var out, barOut bytes.Buffer
	tr := NewTracker(&out, &barOut)

	tr.Handle(sync.Event{Kind: sync.EventState, Resource: "agents", State: sync.StateExecuting})
	tr.Handle(sync.Event{Kind: sync.EventItem, Resource: "agents", Index: 1, Total: 2,
		Item: &sync.ItemResult{Path: "a.md", Action: sync.ActionDownloaded, Size: 5, Files: 1}})
	tr.Handle(sync.Event{Kind: sync.EventItem, Resource: "agents", Index: 2, Total: 2,
		Item: &sync.ItemResult{Path: "b.md", Action: sync.ActionFailed, Error: errors.New("boom")}})
	tr.Handle(sync.Event{Kind: sync.EventState, Resource: "agents", State: sync.StateDone})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "a.md")
	assert.Contains(t, lines[1], "b.md: boom")
	assert.Empty(t, barOut.String(), "no bar on a non-terminal writer")
	assert.Nil(t, tr.bar, "bar is reset after the run")
}

func TestTrackerIgnoresEmptyItem(t *testing.T) {
	var out bytes.Buffer
	tr := NewTracker(&out, &out)
	tr.Handle(sync.Event{Kind: sync.EventItem})
	assert.Empty(t, out.String())
}

func TestBarDisabledIsNoop(t *testing.T) {
	var buf bytes.Buffer
	b := New(Options{Max: 3, Description: "test", Writer: &buf})
	assert.False(t, b.Enabled())
	assert.NoError(t, b.Add(1))
	b.Describe("other")
	assert.NoError(t, b.Clear())
	assert.NoError(t, b.Finish())
	assert.Empty(t, buf.String())
}

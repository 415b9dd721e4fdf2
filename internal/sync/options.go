package sync

import (
	"errors"
	"fmt"
	"time"
)

// EventKind classifies a progress event.
type EventKind string

const (
	// EventState is emitted on every state transition.
	EventState EventKind = "state"
	// EventItem is emitted once per processed item.
	EventItem EventKind = "item"
)

// Event is a progress notification.
type Event struct {
	Kind     EventKind
	Resource string
	State    State
	Item     *ItemResult
	// Index and Total locate an item event within the planned work.
	Index int
	Total int
}

// Options configures one sync run.
type Options struct {
	// DryRun plans and reports without writing anything.
	DryRun bool

	// Progress, when set, receives events synchronously.
	Progress func(Event)

	// Clock returns the time stamped into the record. Defaults to time.Now.
	Clock func() time.Time
}

func (o Options) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

func (o Options) emit(ev Event) {
	if o.Progress != nil {
		o.Progress(ev)
	}
}

// PartialError reports a run that completed with some failed items. The
// record was still persisted.
type PartialError struct {
	Resource string
	Failed   []ItemResult
}

// Error implements error.
func (e *PartialError) Error() string {
	noun := "items"
	if len(e.Failed) == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%s: %d %s failed to sync", e.Resource, len(e.Failed), noun)
}

// Unwrap exposes the item errors to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		if f.Error != nil {
			errs = append(errs, f.Error)
		}
	}
	return errs
}

// IsPartial reports whether err carries a *PartialError.
func IsPartial(err error) bool {
	var pe *PartialError
	return errors.As(err, &pe)
}

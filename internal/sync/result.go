package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/record"
)

// Action represents what happened to one item during sync.
type Action string

const (
	// ActionDownloaded indicates the item was fetched and written locally.
	ActionDownloaded Action = "downloaded"

	// ActionDeleted indicates a previously synced item was removed.
	ActionDeleted Action = "deleted"

	// ActionSkipped indicates an upstream directory was ignored, for example
	// because it lacks the marker file.
	ActionSkipped Action = "skipped"

	// ActionFailed indicates an error occurred processing the item.
	ActionFailed Action = "failed"

	// ActionWouldDownload is the dry-run form of ActionDownloaded.
	ActionWouldDownload Action = "would-download"

	// ActionWouldDelete is the dry-run form of ActionDeleted.
	ActionWouldDelete Action = "would-delete"
)

// ItemResult represents the outcome of one file or directory asset.
type ItemResult struct {
	// Path is the item key: a relative file path, or an asset name in
	// directory mode.
	Path string

	// Action is the action that was taken.
	Action Action

	// Size is the number of bytes written, or the listed size in dry-run.
	Size int64

	// Files counts the files written for a directory asset.
	Files int

	// Error contains any error that occurred during processing.
	Error error

	// Message provides additional context about the action.
	Message string
}

// Success returns true if the item was processed without error.
func (ir *ItemResult) Success() bool {
	return ir.Action != ActionFailed
}

// Result contains the complete outcome of syncing one resource.
type Result struct {
	// Resource is the configured resource name.
	Resource string

	// Source is the upstream source ID the record is keyed by.
	Source string

	// Upstream is a short human description of the upstream.
	Upstream string

	// LocalDir is the target directory.
	LocalDir string

	// Mode is the sync mode used.
	Mode model.SyncMode

	// DryRun indicates no changes were made.
	DryRun bool

	// State is the final state of the run.
	State State

	// Items contains the result for each processed item, downloads first.
	Items []ItemResult

	// Entry is the record entry that was persisted, or would be in dry-run.
	Entry model.SourceEntry

	// Shape is the layout the record was read from.
	Shape record.Shape

	// RecordWarning is set when the previous record could not be parsed and
	// the run proceeded without prior state.
	RecordWarning error

	// Err is the error that moved the run to StateFailed.
	Err error

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Downloaded returns items that were written.
func (r *Result) Downloaded() []ItemResult {
	return r.filterByAction(ActionDownloaded)
}

// Deleted returns items that were removed.
func (r *Result) Deleted() []ItemResult {
	return r.filterByAction(ActionDeleted)
}

// Skipped returns items that were ignored.
func (r *Result) Skipped() []ItemResult {
	return r.filterByAction(ActionSkipped)
}

// Failed returns items that failed.
func (r *Result) Failed() []ItemResult {
	return r.filterByAction(ActionFailed)
}

// WouldDownload returns items a dry run would write.
func (r *Result) WouldDownload() []ItemResult {
	return r.filterByAction(ActionWouldDownload)
}

// WouldDelete returns items a dry run would remove.
func (r *Result) WouldDelete() []ItemResult {
	return r.filterByAction(ActionWouldDelete)
}

// filterByAction returns items with the given action.
func (r *Result) filterByAction(action Action) []ItemResult {
	var filtered []ItemResult
	for _, ir := range r.Items {
		if ir.Action == action {
			filtered = append(filtered, ir)
		}
	}
	return filtered
}

// Success returns true if the run completed and every item succeeded.
func (r *Result) Success() bool {
	return r.State == StateDone && len(r.Failed()) == 0
}

// BytesWritten sums the sizes of downloaded items.
func (r *Result) BytesWritten() int64 {
	var n int64
	for _, ir := range r.Downloaded() {
		n += ir.Size
	}
	return n
}

func (r *Result) add(ir ItemResult) {
	r.Items = append(r.Items, ir)
}

// Summary returns a human-readable summary of the sync result.
func (r *Result) Summary() string {
	var sb strings.Builder
	title := cases.Title(language.English).String(r.Resource)

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	fmt.Fprintf(&sb, "%s sync from %s -> %s\n", title, r.Upstream, r.LocalDir)

	if r.State == StateFailed {
		fmt.Fprintf(&sb, "  Aborted: %v\n", r.Err)
		return sb.String()
	}

	if r.DryRun {
		fmt.Fprintf(&sb, "  Would download: %d\n", len(r.WouldDownload()))
		fmt.Fprintf(&sb, "  Would delete:   %d\n", len(r.WouldDelete()))
	} else {
		fmt.Fprintf(&sb, "  Downloaded: %d (%s)\n", len(r.Downloaded()), humanize.Bytes(uint64(r.BytesWritten()))) // #nosec G115 - sizes are non-negative
		fmt.Fprintf(&sb, "  Deleted:    %d\n", len(r.Deleted()))
	}
	fmt.Fprintf(&sb, "  Skipped:    %d\n", len(r.Skipped()))
	fmt.Fprintf(&sb, "  Failed:     %d\n", len(r.Failed()))

	if r.RecordWarning != nil {
		fmt.Fprintf(&sb, "\nWarning: previous sync record ignored: %v\n", r.RecordWarning)
	}

	if failed := r.Failed(); len(failed) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, f := range failed {
			fmt.Fprintf(&sb, "  - %s: %v\n", f.Path, f.Error)
		}
	}

	return sb.String()
}

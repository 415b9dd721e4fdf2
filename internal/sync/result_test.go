package sync

import (
	"errors"
	"strings"
	"testing"
)

func TestItemResult_Success(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   bool
	}{
		{"downloaded is success", ActionDownloaded, true},
		{"deleted is success", ActionDeleted, true},
		{"skipped is success", ActionSkipped, true},
		{"would-download is success", ActionWouldDownload, true},
		{"would-delete is success", ActionWouldDelete, true},
		{"failed is not success", ActionFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir := &ItemResult{Action: tt.action}
			if got := ir.Success(); got != tt.want {
				t.Errorf("ItemResult.Success() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResult_Filters(t *testing.T) {
	r := &Result{
		State: StateDone,
		Items: []ItemResult{
			{Path: "a.md", Action: ActionDownloaded, Size: 1500},
			{Path: "b.md", Action: ActionDownloaded, Size: 500},
			{Path: "c.md", Action: ActionDeleted},
			{Path: "d", Action: ActionSkipped},
			{Path: "e.md", Action: ActionFailed, Error: errors.New("boom")},
		},
	}

	if got := len(r.Downloaded()); got != 2 {
		t.Errorf("Downloaded() = %d, want 2", got)
	}
	if got := len(r.Deleted()); got != 1 {
		t.Errorf("Deleted() = %d, want 1", got)
	}
	if got := len(r.Skipped()); got != 1 {
		t.Errorf("Skipped() = %d, want 1", got)
	}
	if got := len(r.Failed()); got != 1 {
		t.Errorf("Failed() = %d, want 1", got)
	}
	if got := r.BytesWritten(); got != 2000 {
		t.Errorf("BytesWritten() = %d, want 2000", got)
	}
	if r.Success() {
		t.Error("Success() should be false with a failed item")
	}
}

func TestResult_SuccessRequiresDone(t *testing.T) {
	r := &Result{State: StateFailed}
	if r.Success() {
		t.Error("a failed run is never a success")
	}
	r.State = StateDone
	if !r.Success() {
		t.Error("a done run with no failures is a success")
	}
}

func TestResult_Summary(t *testing.T) {
	r := &Result{
		Resource: "agents",
		Upstream: "github/awesome-copilot/agents",
		LocalDir: "assets/agents",
		State:    StateDone,
		Items: []ItemResult{
			{Path: "a.md", Action: ActionDownloaded, Size: 2000},
			{Path: "x.md", Action: ActionFailed, Error: errors.New("download failed: 500")},
		},
		RecordWarning: errors.New("metadata corrupt"),
	}

	summary := r.Summary()
	for _, want := range []string{
		"Agents sync from github/awesome-copilot/agents -> assets/agents",
		"Downloaded: 1 (2.0 kB)",
		"Failed:     1",
		"Warning: previous sync record ignored",
		"x.md: download failed: 500",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "Dry run") {
		t.Error("Summary() should not mention dry run")
	}
}

func TestResult_SummaryDryRun(t *testing.T) {
	r := &Result{
		Resource: "skills",
		DryRun:   true,
		State:    StateDone,
		Items: []ItemResult{
			{Path: "pdf", Action: ActionWouldDownload},
			{Path: "old", Action: ActionWouldDelete},
		},
	}
	summary := r.Summary()
	for _, want := range []string{"Dry run - no changes made", "Would download: 1", "Would delete:   1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() missing %q:\n%s", want, summary)
		}
	}
}

func TestPartialError(t *testing.T) {
	cause := errors.New("boom")
	err := &PartialError{Resource: "agents", Failed: []ItemResult{{Path: "a.md", Action: ActionFailed, Error: cause}}}

	if err.Error() != "agents: 1 item failed to sync" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("PartialError should unwrap to item errors")
	}
	if !IsPartial(err) {
		t.Error("IsPartial() = false")
	}
	if IsPartial(cause) {
		t.Error("IsPartial() should be false for plain errors")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateListing, true},
		{StateListing, StatePlanning, true},
		{StateListing, StateFailed, true},
		{StatePlanning, StateExecuting, true},
		{StatePlanning, StateFailed, false},
		{StateExecuting, StatePersisting, true},
		{StateExecuting, StateDone, true},
		{StatePersisting, StateFailed, true},
		{StateDone, StateListing, false},
		{StateIdle, StateDone, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
	if !StateDone.Terminal() || !StateFailed.Terminal() || StateExecuting.Terminal() {
		t.Error("Terminal() mismatch")
	}
}

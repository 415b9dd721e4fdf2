package ui

import (
	"strings"
	"testing"
)

func TestStatusSymbols(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := map[string]struct {
		fn   func(string) string
		msg  string
		want string
	}{
		"written file":       {StatusSuccess, "agents/a.agent.md", "✓ agents/a.agent.md"},
		"aborted resource":   {StatusError, "skills: aborted", "✗ skills: aborted"},
		"ignored record":     {StatusWarning, "previous sync record ignored", "⚠ previous sync record ignored"},
		"asset without mark": {StatusSkipped, "draft", "- draft"},
		"dry-run action":     {StatusPending, "would delete old.md", "○ would delete old.md"},
		"removed upstream":   {StatusDeleted, "old.md", "✂ old.md"},
		"bare symbol":        {StatusDeleted, "", SymbolDelete},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.fn(tt.msg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusSymbolsDistinct(t *testing.T) {
	// Item lines are read by symbol alone when colors are off.
	seen := map[string]string{}
	for name, sym := range map[string]string{
		"success": SymbolSuccess,
		"error":   SymbolError,
		"warning": SymbolWarning,
		"skipped": SymbolSkipped,
		"pending": SymbolPending,
		"delete":  SymbolDelete,
	} {
		if other, ok := seen[sym]; ok {
			t.Errorf("%s and %s share symbol %q", name, other, sym)
		}
		seen[sym] = name
	}
}

func TestStatusColored(t *testing.T) {
	initial := IsColorEnabled()
	defer func() {
		if initial {
			EnableColors()
		} else {
			DisableColors()
		}
	}()

	EnableColors()
	got := StatusError("c.md: boom")
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected an ANSI sequence with colors on, got %q", got)
	}
	if !strings.HasSuffix(got, " c.md: boom") {
		t.Errorf("message must follow the colored symbol unstyled, got %q", got)
	}

	DisableColors()
	if IsColorEnabled() {
		t.Error("expected colors to be disabled")
	}
	if got := Header("Resource"); got != "Resource" {
		t.Errorf("Header() = %q with colors off", got)
	}
}

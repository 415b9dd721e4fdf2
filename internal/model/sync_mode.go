package model

import (
	"fmt"
	"strings"
)

// SyncMode selects how a resource's upstream tree maps onto local assets.
type SyncMode string

const (
	// SyncModeFile reconciles individual files (agents, prompts, instructions).
	SyncModeFile SyncMode = "file"

	// SyncModeDirectory reconciles whole directories, one per asset (skills,
	// hooks, plugins).
	SyncModeDirectory SyncMode = "directory"
)

// IsValid returns true if the mode is recognized.
func (m SyncMode) IsValid() bool {
	switch m {
	case SyncModeFile, SyncModeDirectory:
		return true
	default:
		return false
	}
}

// String returns the string representation of the mode.
func (m SyncMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SyncMode) Description() string {
	switch m {
	case SyncModeFile:
		return "Each file is an asset and is reconciled by its relative path"
	case SyncModeDirectory:
		return "Each top-level directory is an asset and is kept or deleted as a whole"
	default:
		return "Unknown sync mode"
	}
}

// ParseSyncMode converts a string to a SyncMode. The empty string selects
// SyncModeFile.
func ParseSyncMode(s string) (SyncMode, error) {
	if s == "" {
		return SyncModeFile, nil
	}

	normalized := strings.ToLower(strings.TrimSpace(s))
	m := SyncMode(normalized)
	if m.IsValid() {
		return m, nil
	}

	switch normalized {
	case "files", "flat":
		return SyncModeFile, nil
	case "dir", "directories", "tree":
		return SyncModeDirectory, nil
	default:
		return "", fmt.Errorf("unknown sync mode %q (valid: file, directory)", s)
	}
}

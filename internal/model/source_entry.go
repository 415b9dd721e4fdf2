package model

import (
	"slices"
	"sort"
	"time"
)

// TimeLayout is the timestamp format written to sync records: UTC with
// millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// SourceEntry is what a sync record remembers about one source: the files
// placed from it and when that set last changed. LastSync is kept as the
// original string so an unchanged entry round-trips byte for byte.
type SourceEntry struct {
	Source   string   `json:"source"`
	LastSync string   `json:"lastSync"`
	Files    []string `json:"files"`
}

// IsZero reports whether the entry records nothing.
func (e SourceEntry) IsZero() bool {
	return e.Source == "" && e.LastSync == "" && len(e.Files) == 0
}

// Has reports whether key is among the recorded files.
func (e SourceEntry) Has(key string) bool {
	for _, f := range e.Files {
		if f == key {
			return true
		}
	}
	return false
}

// SortedFiles returns a sorted copy of Files with duplicates removed.
func (e SourceEntry) SortedFiles() []string {
	out := make([]string, len(e.Files))
	copy(out, e.Files)
	sort.Strings(out)
	return slices.Compact(out)
}

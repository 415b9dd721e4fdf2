// Package reconcile decides what a sync run does. It is pure: no I/O, no
// clock. Callers supply the remote listing, the local listing, the previous
// record entry and the current time.
//
// The rules are:
//
//   - every remote item is downloaded (content is never compared)
//   - a local file is deleted only if it is gone upstream and the previous
//     run placed it; anything else in the directory belongs to the user
//   - the recorded file list is the sorted remote key set
//   - the timestamp moves only when that set changes
package reconcile

import (
	"slices"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/klauern/workspace-architect/internal/model"
)

// Keyed is an upstream item identified by a relative path or asset name.
type Keyed interface {
	Key() string
}

// Plan is the outcome of Compute.
type Plan[T Keyed] struct {
	// ToDownload holds every remote item in discovery order.
	ToDownload []T
	// ToDelete holds local keys to remove, sorted.
	ToDelete []string
	// Entry is the record entry to persist if every action succeeds.
	Entry model.SourceEntry
	// Previous is the entry the plan was computed against.
	Previous model.SourceEntry
}

// Compute builds the plan for one source. Duplicate remote keys keep their
// first occurrence.
func Compute[T Keyed](sourceID string, remote []T, local []string, prev model.SourceEntry, now time.Time) Plan[T] {
	seen := mapset.NewThreadUnsafeSet[string]()
	download := make([]T, 0, len(remote))
	for _, item := range remote {
		if seen.Add(item.Key()) {
			download = append(download, item)
		}
	}

	previous := mapset.NewThreadUnsafeSet(prev.Files...)
	stale := mapset.NewThreadUnsafeSet(local...).Difference(seen).Intersect(previous)
	toDelete := stale.ToSlice()
	sort.Strings(toDelete)

	files := seen.ToSlice()
	sort.Strings(files)

	return Plan[T]{
		ToDownload: download,
		ToDelete:   toDelete,
		Entry:      entry(sourceID, files, prev, now),
		Previous:   prev,
	}
}

// Settle folds the execution outcome into the entry to persist. Held keys
// (failed, or skipped upstream) stay recorded only if the previous run had
// placed them and they are still on disk, so a later run can still delete
// them; held keys that were never placed are dropped. The timestamp rule is
// applied to the settled set.
func Settle[T Keyed](plan Plan[T], held []string, present func(key string) bool, now time.Time) model.SourceEntry {
	if len(held) == 0 {
		return plan.Entry
	}

	heldSet := mapset.NewThreadUnsafeSet(held...)
	previous := mapset.NewThreadUnsafeSet(plan.Previous.Files...)

	kept := mapset.NewThreadUnsafeSet[string]()
	for _, f := range plan.Entry.Files {
		if !heldSet.Contains(f) {
			kept.Add(f)
		}
	}
	heldSet.Each(func(k string) bool {
		if previous.Contains(k) && present != nil && present(k) {
			kept.Add(k)
		}
		return false
	})

	files := kept.ToSlice()
	sort.Strings(files)
	return entry(plan.Entry.Source, files, plan.Previous, now)
}

func entry(sourceID string, files []string, prev model.SourceEntry, now time.Time) model.SourceEntry {
	if files == nil {
		files = []string{}
	}
	lastSync := prev.LastSync
	if lastSync == "" || !slices.Equal(files, prev.SortedFiles()) {
		lastSync = model.FormatTime(now)
	}
	return model.SourceEntry{
		Source:   sourceID,
		LastSync: lastSync,
		Files:    files,
	}
}

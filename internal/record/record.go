// Package record persists what each sync placed in a target directory.
//
// A record lives in RecordFile inside the target directory and holds one
// entry per upstream source, so several sources can share a directory
// without deleting each other's files. Older tools wrote a single-source
// shape; it is read transparently and rewritten in the current shape on the
// next save.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/klauern/workspace-architect/internal/localfs"
	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/syncerr"
)

// Shape is the on-disk layout a record was read from.
type Shape int

const (
	// ShapeNone means no record file existed or it could not be used.
	ShapeNone Shape = iota
	// ShapeLegacy is the single-source {"lastSync","source","files"} layout.
	ShapeLegacy
	// ShapeMultiSource is the {"sources":[...]} layout.
	ShapeMultiSource
)

// String returns a short name for the shape.
func (s Shape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeMultiSource:
		return "multi-source"
	default:
		return "none"
	}
}

// Record is the normalized in-memory form of a record file.
type Record struct {
	Sources []model.SourceEntry `json:"sources"`

	shape Shape
}

// Shape reports the layout the record was loaded from.
func (r *Record) Shape() Shape {
	return r.shape
}

// onDisk accepts both layouts; pointer fields tell absent from empty.
type onDisk struct {
	Sources  *[]model.SourceEntry `json:"sources"`
	Source   *string              `json:"source"`
	LastSync *string              `json:"lastSync"`
	Files    *[]string            `json:"files"`
}

// Path returns the record file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, localfs.RecordFile)
}

// Load reads the record in dir. A missing file yields an empty record and no
// error. A file that cannot be parsed yields an empty record together with an
// ErrMetadataCorrupt error; callers treat that as a warning and continue with
// no prior state.
func Load(dir string) (*Record, error) {
	p := Path(dir)
	// #nosec G304 - path is built from the configured target directory
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return &Record{}, nil
	}
	if err != nil {
		return &Record{}, syncerr.LocalIO("read", p, err)
	}

	rec, err := decode(data)
	if err != nil {
		return &Record{}, syncerr.New(syncerr.ErrMetadataCorrupt, "parse", p, err)
	}
	return rec, nil
}

func decode(data []byte) (*Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty file")
	}

	var raw onDisk
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch {
	case raw.Sources != nil:
		rec := &Record{shape: ShapeMultiSource}
		for _, e := range *raw.Sources {
			rec.Upsert(e)
		}
		return rec, nil
	case raw.Source != nil && raw.Files != nil:
		e := model.SourceEntry{Source: *raw.Source, Files: *raw.Files}
		if raw.LastSync != nil {
			e.LastSync = *raw.LastSync
		}
		return &Record{Sources: []model.SourceEntry{e}, shape: ShapeLegacy}, nil
	default:
		return nil, errors.New("unrecognized record layout")
	}
}

// Entry returns the entry for sourceID, or an empty entry carrying the ID.
func (r *Record) Entry(sourceID string) model.SourceEntry {
	for _, e := range r.Sources {
		if e.Source == sourceID {
			return e
		}
	}
	return model.SourceEntry{Source: sourceID, Files: []string{}}
}

// Upsert replaces the entry with the same source ID or appends it. A later
// entry for an ID already present wins.
func (r *Record) Upsert(entry model.SourceEntry) {
	for i := range r.Sources {
		if r.Sources[i].Source == entry.Source {
			r.Sources[i] = entry
			return
		}
	}
	r.Sources = append(r.Sources, entry)
}

// Marshal renders the record in the multi-source layout: two-space indent,
// sorted file lists, trailing newline.
func (r *Record) Marshal() ([]byte, error) {
	out := Record{Sources: make([]model.SourceEntry, len(r.Sources))}
	for i, e := range r.Sources {
		e.Files = e.SortedFiles()
		out.Sources[i] = e
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes rec to dir atomically.
func Save(dir string, rec *Record) error {
	data, err := rec.Marshal()
	if err != nil {
		return err
	}
	return localfs.WriteFile(Path(dir), data)
}

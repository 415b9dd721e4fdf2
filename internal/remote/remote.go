// Package remote reads the upstream side of a sync: a directory in a GitHub
// repository, or a directory on disk laid out the same way.
package remote

import (
	"context"

	"github.com/klauern/workspace-architect/internal/model"
)

// EntryType distinguishes files from directories in a listing.
type EntryType string

const (
	TypeFile EntryType = "file"
	TypeDir  EntryType = "dir"
)

// DirEntry is one child of a listed upstream directory.
type DirEntry struct {
	Name        string
	Type        EntryType
	DownloadURL string
	SHA         string
	Size        int64
}

// Source lists and fetches upstream content. Implementations must honor ctx
// cancellation on every call.
type Source interface {
	// ListDirectory returns the direct children of relPath below the source's
	// remote root.
	ListDirectory(ctx context.Context, src model.AssetSource, relPath string) ([]DirEntry, error)

	// FetchFile returns the full content behind a locator previously
	// returned as DirEntry.DownloadURL.
	FetchFile(ctx context.Context, locator string) ([]byte, error)
}

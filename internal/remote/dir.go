package remote

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/syncerr"
)

// Dir serves a directory on disk as an upstream. Locators are absolute file
// paths.
type Dir struct{}

// NewDir returns a local-directory upstream.
func NewDir() *Dir {
	return &Dir{}
}

// ListDirectory implements Source.
func (d *Dir) ListDirectory(ctx context.Context, src model.AssetSource, relPath string) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !src.IsLocal() {
		return nil, syncerr.Invalid("source %s is not a local directory", src.ID())
	}

	root, err := filepath.Abs(src.LocalRoot)
	if err != nil {
		return nil, syncerr.Upstream("list", src.LocalRoot, "", err)
	}
	dir := filepath.Join(root, filepath.FromSlash(src.Join(relPath)))

	info, err := os.Stat(dir)
	if err != nil {
		status := ""
		if errors.Is(err, fs.ErrNotExist) {
			status = "not found"
		}
		return nil, syncerr.Upstream("list", dir, status, err)
	}
	if !info.IsDir() {
		return nil, syncerr.Upstream("list", dir, "", fmt.Errorf("not a directory"))
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, syncerr.Upstream("list", dir, "", err)
	}

	entries := make([]DirEntry, 0, len(children))
	for _, c := range children {
		p := filepath.Join(dir, c.Name())
		switch {
		case c.IsDir():
			entries = append(entries, DirEntry{Name: c.Name(), Type: TypeDir})
		case c.Type().IsRegular():
			fi, err := c.Info()
			if err != nil {
				return nil, syncerr.Upstream("list", p, "", err)
			}
			entries = append(entries, DirEntry{
				Name:        c.Name(),
				Type:        TypeFile,
				DownloadURL: p,
				Size:        fi.Size(),
			})
		}
	}
	return entries, nil
}

// FetchFile implements Source.
func (d *Dir) FetchFile(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// #nosec G304 - locator comes from our own directory listing
	data, err := os.ReadFile(locator)
	if err != nil {
		return nil, syncerr.Upstream("fetch", locator, "", err)
	}
	return data, nil
}

// Package localfs reads and writes the local side of a sync: the target
// directory a resource type is mirrored into.
package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauern/workspace-architect/internal/logging"
	"github.com/klauern/workspace-architect/internal/pattern"
	"github.com/klauern/workspace-architect/internal/syncerr"
)

// Names of the bookkeeping files kept in every target directory. They are
// never reported as local entries.
const (
	RecordFile = ".upstream-sync.json"
	LockFile   = ".upstream-sync.lock"

	tempPrefix = ".wsa-tmp-"
)

// Directory and file modes for created entries.
const (
	DirMode  os.FileMode = 0o750
	FileMode os.FileMode = 0o644
)

// IsBookkeeping reports whether a base name is one of the sync's own files.
// Such files are skipped on both sides of a sync.
func IsBookkeeping(name string) bool {
	return name == RecordFile || name == LockFile || strings.HasPrefix(name, tempPrefix)
}

// ListRecursive returns every file below root whose name carries one of
// extensions, as sorted slash-separated relative paths. A missing root yields
// an empty list.
func ListRecursive(root string, extensions []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if IsBookkeeping(name) || !pattern.HasExtension(name, extensions) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, syncerr.LocalIO("list", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// ListDirs returns the names of root's immediate subdirectories, sorted.
// A missing root yields an empty list.
func ListDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, syncerr.LocalIO("list", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Exists reports whether p exists, without following a final symlink.
func Exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return syncerr.LocalIO("mkdir", dir, err)
	}
	return nil
}

// WriteFile writes data to p through a temporary file in the same directory
// and renames it into place. Parent directories are created as needed.
func WriteFile(p string, data []byte) error {
	dir := filepath.Dir(p)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+filepath.Base(p)+"-*")
	if err != nil {
		return syncerr.LocalIO("write", p, err)
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		if !done {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return syncerr.LocalIO("write", p, err)
	}
	if err := tmp.Chmod(FileMode); err != nil {
		return syncerr.LocalIO("chmod", p, err)
	}
	if err := tmp.Close(); err != nil {
		return syncerr.LocalIO("write", p, err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		return syncerr.LocalIO("rename", p, err)
	}
	done = true
	return nil
}

// RemoveFile deletes a single file. A missing file is not an error.
func RemoveFile(p string) error {
	err := os.Remove(p)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return syncerr.LocalIO("remove", p, err)
}

// RemovePath deletes a file, symlink or directory tree at p. Symlinks are
// removed as entries, never followed. A missing path is not an error.
func RemovePath(p string) error {
	info, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return syncerr.LocalIO("stat", p, err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(p); err != nil {
			return syncerr.LocalIO("remove", p, err)
		}
		logging.Debug("removed directory", logging.Path(p))
		return nil
	}
	if err := os.Remove(p); err != nil {
		return syncerr.LocalIO("remove", p, err)
	}
	logging.Debug("removed file", logging.Path(p))
	return nil
}

// Resolve joins a slash-separated relative path onto root, refusing paths
// that would escape it.
func Resolve(root, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", syncerr.New(syncerr.ErrLocalIO, "resolve", rel, fmt.Errorf("path escapes %s", root))
	}
	return filepath.Join(root, clean), nil
}

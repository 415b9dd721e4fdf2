package record

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/klauern/workspace-architect/internal/localfs"
	"github.com/klauern/workspace-architect/internal/syncerr"
)

// ErrLocked is returned when another process holds the directory lock.
var ErrLocked = errors.New("target directory is locked by another sync")

// Lock is an advisory lock on a target directory, held for one sync run.
type Lock struct {
	flock *flock.Flock
	// created is the directory Acquire had to create, if any.
	created string
}

// Acquire takes the lock for dir without blocking. The lock file lives in
// dir, so a missing dir is created; Release removes it again if the run left
// it empty.
func Acquire(dir string) (*Lock, error) {
	var created string
	if !localfs.Exists(dir) {
		created = dir
	}
	if err := localfs.EnsureDir(dir); err != nil {
		return nil, err
	}
	p := filepath.Join(dir, localfs.LockFile)
	fl := flock.New(p)

	locked, err := fl.TryLock()
	if err != nil {
		removeIfEmpty(created)
		return nil, syncerr.LocalIO("lock", p, err)
	}
	if !locked {
		removeIfEmpty(created)
		return nil, syncerr.LocalIO("lock", p, ErrLocked)
	}
	return &Lock{flock: fl, created: created}, nil
}

// Release removes the lock file and then unlocks it. It is safe to call
// twice.
func (l *Lock) Release() error {
	if l == nil || !l.flock.Locked() {
		return nil
	}
	// Unlink while held so the old inode is never locked again.
	if err := os.Remove(l.flock.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return syncerr.LocalIO("unlock", l.flock.Path(), err)
	}
	if err := l.flock.Unlock(); err != nil {
		return syncerr.LocalIO("unlock", l.flock.Path(), err)
	}
	removeIfEmpty(l.created)
	return nil
}

// removeIfEmpty deletes dir when it has no entries. Errors are ignored.
func removeIfEmpty(dir string) {
	if dir == "" {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		_ = os.Remove(dir)
	}
}

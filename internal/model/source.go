// Package model defines the core data types shared by the sync packages.
package model

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/klauern/workspace-architect/internal/syncerr"
)

// DefaultBranch is used when a source does not name a branch.
const DefaultBranch = "main"

// AssetSource identifies one upstream feed. It is constructed once per sync
// invocation from configuration and is not modified afterwards.
type AssetSource struct {
	Owner      string
	Repo       string
	Branch     string
	RemotePath string

	// LocalRoot, when set, makes the source a local directory instead of a
	// GitHub repository. RemotePath is then resolved below LocalRoot.
	LocalRoot string
}

// NewGitHubSource builds a source from an "owner/repo" string.
func NewGitHubSource(repo, branch, remotePath string) (AssetSource, error) {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return AssetSource{}, err
	}
	return AssetSource{
		Owner:      owner,
		Repo:       name,
		Branch:     branch,
		RemotePath: CleanRemotePath(remotePath),
	}, nil
}

// NewLocalSource builds a source reading from a directory on disk.
func NewLocalSource(root, remotePath string) (AssetSource, error) {
	if strings.TrimSpace(root) == "" {
		return AssetSource{}, syncerr.Invalid("local source root is empty")
	}
	return AssetSource{
		LocalRoot:  filepath.Clean(root),
		RemotePath: CleanRemotePath(remotePath),
	}, nil
}

// ParseRepo splits "owner/repo". Anything other than exactly two non-empty
// segments is a configuration error.
func ParseRepo(repo string) (owner, name string, err error) {
	if !strings.Contains(repo, "/") {
		return "", "", syncerr.Invalid("invalid repo format %q: expected owner/name", repo)
	}
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", syncerr.Invalid("invalid repo format %q: expected owner/name", repo)
	}
	return parts[0], parts[1], nil
}

// IsLocal reports whether the source reads from a local directory.
func (s AssetSource) IsLocal() bool {
	return s.LocalRoot != ""
}

// Ref returns the branch to read, falling back to DefaultBranch.
func (s AssetSource) Ref() string {
	if s.Branch == "" {
		return DefaultBranch
	}
	return s.Branch
}

// ID is the identifier used to namespace sync records. It matches the
// "<owner>/<repo>/<remoteDir>" form already present in existing records; a
// non-default branch is appended after "@".
func (s AssetSource) ID() string {
	if s.IsLocal() {
		return "local:" + filepath.ToSlash(s.LocalRoot) + "/" + s.RemotePath
	}
	id := s.Owner + "/" + s.Repo + "/" + s.RemotePath
	if s.Ref() != DefaultBranch {
		id += "@" + s.Ref()
	}
	return id
}

// String implements fmt.Stringer.
func (s AssetSource) String() string {
	if s.IsLocal() {
		return s.ID()
	}
	return s.Owner + "/" + s.Repo
}

// Join returns the slash-separated path of rel below the source's remote root.
func (s AssetSource) Join(rel string) string {
	rel = CleanRemotePath(rel)
	switch {
	case rel == "":
		return s.RemotePath
	case s.RemotePath == "":
		return rel
	default:
		return s.RemotePath + "/" + rel
	}
}

// CleanRemotePath normalizes a remote path to slash form without leading or
// trailing separators. "." and "" both become "".
func CleanRemotePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}

// Package pattern decides which upstream and local files take part in a sync.
package pattern

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Matches reports whether p matches at least one of patterns. An empty
// pattern list matches everything. Invalid patterns never match.
func Matches(p string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	p = Normalize(p)
	for _, pat := range patterns {
		ok, err := doublestar.Match(Normalize(pat), p)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Normalize converts p to the slash form patterns are matched against.
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// Validate returns an error naming the first malformed glob.
func Validate(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(Normalize(pat)) {
			return fmt.Errorf("invalid glob pattern %q", pat)
		}
	}
	return nil
}

// HasExtension reports whether name ends in one of exts. An empty list
// accepts every name.
func HasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Filter combines the extension, include and exclude rules of a resource.
// The zero value accepts every file.
type Filter struct {
	Extensions []string
	Include    []string
	exclude    *gitignore.GitIgnore
}

// NewFilter builds a Filter. Exclude lines use gitignore syntax.
func NewFilter(extensions, include, exclude []string) Filter {
	f := Filter{Extensions: extensions, Include: include}
	if len(exclude) > 0 {
		f.exclude = gitignore.CompileIgnoreLines(exclude...)
	}
	return f
}

// Accept reports whether a file is synced. rel is relative to the source
// root, full includes the remote directory prefix. Include patterns may be
// written against either form.
func (f Filter) Accept(rel, full string) bool {
	if !HasExtension(path.Base(Normalize(rel)), f.Extensions) {
		return false
	}
	if !Matches(full, f.Include) && !Matches(rel, f.Include) {
		return false
	}
	return !f.Excluded(rel)
}

// Excluded reports whether rel matches an exclude line.
func (f Filter) Excluded(rel string) bool {
	if f.exclude == nil {
		return false
	}
	return f.exclude.MatchesPath(Normalize(rel))
}

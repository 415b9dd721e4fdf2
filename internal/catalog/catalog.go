// Package catalog enumerates the assets installed in the local asset
// library, one directory per resource type.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/klauern/workspace-architect/internal/config"
	"github.com/klauern/workspace-architect/internal/frontmatter"
	"github.com/klauern/workspace-architect/internal/localfs"
	"github.com/klauern/workspace-architect/internal/model"
)

// ErrNotFound is returned by Find when no asset has the requested name.
var ErrNotFound = errors.New("asset not found")

// DefaultRoot is the library root used for types without a configured
// resource.
const DefaultRoot = "assets"

// Asset is one installed asset.
type Asset struct {
	Type model.ResourceType
	// Name identifies the asset within its type: the file path without the
	// type suffix, or the directory name for directory assets.
	Name string
	// Path is the asset file, or the asset directory.
	Path string
	// Rel is Path relative to the type directory, slash-separated.
	Rel string
	// Entry is the file carrying the asset's metadata.
	Entry string
	// Description comes from the asset's frontmatter or collection header.
	Description string
	// Files counts the files of a directory asset; 1 for file assets.
	Files int
	// Doc is the parsed metadata. ParseErr is set when it could not be read.
	Doc      frontmatter.Document
	ParseErr error
}

// IsDir reports whether the asset is a directory bundle.
func (a Asset) IsDir() bool {
	return a.Type.Mode() == model.SyncModeDirectory
}

// Library locates asset directories by type.
type Library struct {
	dirs map[model.ResourceType]string
	root string
}

// New returns a library with explicit per-type directories. Types missing
// from dirs resolve to root/<type>.
func New(root string, dirs map[model.ResourceType]string) *Library {
	if dirs == nil {
		dirs = map[model.ResourceType]string{}
	}
	return &Library{dirs: dirs, root: root}
}

// FromConfig maps each configured resource with a known type to its local
// directory. Other types fall back to assets/<type> below the config base.
func FromConfig(cfg *config.Config) *Library {
	dirs := map[model.ResourceType]string{}
	for _, name := range cfg.ResourceNames() {
		r := cfg.Resources[name]
		if rt := r.ResourceType(); rt != "" {
			if _, taken := dirs[rt]; !taken {
				dirs[rt] = r.TargetDir()
			}
		}
	}
	return New(cfg.ResolvePath(DefaultRoot), dirs)
}

// Dir returns the directory holding assets of type t.
func (l *Library) Dir(t model.ResourceType) string {
	if d, ok := l.dirs[t]; ok {
		return d
	}
	return filepath.Join(l.root, t.String())
}

// List returns the assets of type t sorted by name. A missing directory
// yields an empty list.
func (l *Library) List(t model.ResourceType) ([]Asset, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid type %q", t)
	}
	dir := l.Dir(t)

	var (
		assets []Asset
		err    error
	)
	if t.Mode() == model.SyncModeDirectory {
		assets, err = listDirs(t, dir)
	} else {
		assets, err = listFiles(t, dir)
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

// Find returns the asset of type t called name. The name may be given with
// or without the type suffix.
func (l *Library) Find(t model.ResourceType, name string) (Asset, error) {
	assets, err := l.List(t)
	if err != nil {
		return Asset{}, err
	}
	want := strings.Trim(filepath.ToSlash(name), "/")
	for _, a := range assets {
		if a.Name == want || a.Rel == want {
			return a, nil
		}
	}
	return Asset{}, fmt.Errorf("%s %q: %w", t.Singular(), name, ErrNotFound)
}

func listFiles(t model.ResourceType, dir string) ([]Asset, error) {
	rels, err := localfs.ListRecursive(dir, t.Extensions())
	if err != nil {
		return nil, err
	}
	assets := make([]Asset, 0, len(rels))
	for _, rel := range rels {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		a := Asset{
			Type:  t,
			Name:  path.Join(path.Dir(rel), t.AssetName(path.Base(rel))),
			Path:  p,
			Rel:   rel,
			Entry: p,
			Files: 1,
		}
		a.Doc, a.ParseErr = readMetadata(t, p)
		a.Description = a.Doc.String("description")
		assets = append(assets, a)
	}
	return assets, nil
}

func listDirs(t model.ResourceType, dir string) ([]Asset, error) {
	names, err := localfs.ListDirs(dir)
	if err != nil {
		return nil, err
	}
	marker := t.MarkerFile()
	assets := make([]Asset, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		files, err := localfs.ListRecursive(p, nil)
		if err != nil {
			return nil, err
		}
		a := Asset{
			Type:  t,
			Name:  name,
			Path:  p,
			Rel:   name,
			Entry: filepath.Join(p, marker),
			Files: len(files),
		}
		if localfs.Exists(a.Entry) {
			a.Doc, a.ParseErr = readMetadata(t, a.Entry)
		} else {
			a.Doc = frontmatter.Document{Fields: map[string]any{}}
			a.ParseErr = fmt.Errorf("%s not found", marker)
		}
		a.Description = a.Doc.String("description")
		assets = append(assets, a)
	}
	return assets, nil
}

// readMetadata decodes an asset's header. Collections are whole JSON or YAML
// documents; everything else carries YAML frontmatter.
func readMetadata(t model.ResourceType, p string) (frontmatter.Document, error) {
	empty := frontmatter.Document{Fields: map[string]any{}}
	// #nosec G304 - path comes from listing the library directory
	data, err := os.ReadFile(p)
	if err != nil {
		return empty, err
	}

	if t != model.ResourceCollections {
		return frontmatter.Parse(data)
	}

	fields := map[string]any{}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json":
		err = json.Unmarshal(data, &fields)
	default:
		err = yaml.Unmarshal(data, &fields)
	}
	if err != nil {
		return empty, fmt.Errorf("failed to parse collection: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return frontmatter.Document{Fields: fields, HasFrontmatter: true}, nil
}

// Package install copies assets from the local asset library into a
// consumer project.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauern/workspace-architect/internal/catalog"
	"github.com/klauern/workspace-architect/internal/localfs"
	"github.com/klauern/workspace-architect/internal/logging"
	"github.com/klauern/workspace-architect/internal/model"
)

// ErrExists is returned when a destination file exists and Force is unset.
var ErrExists = errors.New("destination already exists")

// DefaultOutputRoot is the project directory assets are installed below,
// one subdirectory per type.
const DefaultOutputRoot = ".github"

// ID names one asset as type and name.
type ID struct {
	Type model.ResourceType
	Name string
	// Legacy is set when the ID was given in the deprecated "type:name" form.
	Legacy bool
}

// String returns the ID in "type name" form.
func (id ID) String() string {
	return id.Type.String() + " " + id.Name
}

// ParseID reads the download arguments. Both "<type> <name>" and the
// deprecated single "<type>:<name>" argument are accepted.
func ParseID(typeArg, name string) (ID, error) {
	legacy := false
	if name == "" {
		t, n, ok := strings.Cut(typeArg, ":")
		if !ok {
			return ID{}, errors.New("invalid format. Use: download <type> <name>")
		}
		typeArg, name, legacy = t, n, true
	}
	if strings.TrimSpace(name) == "" {
		return ID{}, errors.New("asset name is required")
	}
	t, err := model.ParseResourceType(typeArg)
	if err != nil {
		return ID{}, fmt.Errorf("invalid type: %s", typeArg)
	}
	return ID{Type: t, Name: name, Legacy: legacy}, nil
}

// Options configures one install.
type Options struct {
	// Output is the directory the asset is written into. Defaults to
	// .github/<type> below ProjectDir.
	Output string
	// ProjectDir anchors the default output. Defaults to the working directory.
	ProjectDir string
	// Force overwrites existing files.
	Force bool
	// DryRun reports the writes without performing them.
	DryRun bool
}

// Write is one file copy.
type Write struct {
	Source string
	Dest   string
	// Exists is set when Dest was already present.
	Exists bool
}

// Result describes an install.
type Result struct {
	Asset  catalog.Asset
	Dest   string
	Writes []Write
	DryRun bool
}

// Overwrites returns the writes that replace an existing file.
func (r *Result) Overwrites() []Write {
	var out []Write
	for _, w := range r.Writes {
		if w.Exists {
			out = append(out, w)
		}
	}
	return out
}

// Install copies the asset named by id from lib into the output directory.
// File assets are written as a single file; directory assets keep their
// layout below a directory named after the asset.
func Install(ctx context.Context, lib *catalog.Library, id ID, opts Options) (*Result, error) {
	asset, err := lib.Find(id.Type, id.Name)
	if err != nil {
		return nil, err
	}

	out, err := outputDir(id.Type, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Asset: asset, DryRun: opts.DryRun}
	if asset.IsDir() {
		result.Dest = filepath.Join(out, asset.Name)
		rels, err := localfs.ListRecursive(asset.Path, nil)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			dest, err := localfs.Resolve(result.Dest, rel)
			if err != nil {
				return nil, err
			}
			result.Writes = append(result.Writes, Write{
				Source: filepath.Join(asset.Path, filepath.FromSlash(rel)),
				Dest:   dest,
			})
		}
	} else {
		result.Dest = filepath.Join(out, path.Base(asset.Rel))
		result.Writes = []Write{{Source: asset.Path, Dest: result.Dest}}
	}

	for i := range result.Writes {
		result.Writes[i].Exists = localfs.Exists(result.Writes[i].Dest)
	}
	if existing := result.Overwrites(); len(existing) > 0 && !opts.Force && !opts.DryRun {
		return result, fmt.Errorf("%s: %w (use --force to overwrite)", existing[0].Dest, ErrExists)
	}

	logger := logging.WithContext(ctx).With(
		logging.Resource(id.Type.String()),
		logging.Path(result.Dest),
		logging.DryRun(opts.DryRun),
	)
	if opts.DryRun {
		logger.Debug("install planned", logging.Count(len(result.Writes)))
		return result, nil
	}

	for _, w := range result.Writes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		// #nosec G304 - source comes from the asset library listing
		data, err := os.ReadFile(w.Source)
		if err != nil {
			return result, fmt.Errorf("read %s: %w", w.Source, err)
		}
		if err := localfs.WriteFile(w.Dest, data); err != nil {
			return result, err
		}
	}
	logger.Info("installed asset", logging.Count(len(result.Writes)))
	return result, nil
}

func outputDir(t model.ResourceType, opts Options) (string, error) {
	if opts.Output != "" {
		return filepath.Abs(opts.Output)
	}
	root := opts.ProjectDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		root = wd
	}
	return filepath.Join(root, DefaultOutputRoot, t.String()), nil
}

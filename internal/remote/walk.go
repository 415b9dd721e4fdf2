package remote

import (
	"context"
	"path"
	"sort"

	"github.com/klauern/workspace-architect/internal/localfs"
	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/pattern"
)

// ListRecursive walks the source's remote root depth-first, one directory at
// a time, and returns every file the filter accepts in discovery order. Paths
// are relative to the remote root. The first listing error aborts the walk.
func ListRecursive(ctx context.Context, s Source, src model.AssetSource, filter pattern.Filter) ([]model.RemoteEntry, error) {
	var out []model.RemoteEntry
	if err := walk(ctx, s, src, "", func(rel string, e DirEntry) {
		if filter.Accept(rel, src.Join(rel)) {
			out = append(out, model.RemoteEntry{
				Path:        rel,
				DownloadURL: e.DownloadURL,
				SHA:         e.SHA,
				Size:        e.Size,
			})
		}
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(ctx context.Context, s Source, src model.AssetSource, sub string, visit func(rel string, e DirEntry)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.ListDirectory(ctx, src, sub)
	if err != nil {
		return err
	}
	for _, e := range entries {
		rel := e.Name
		if sub != "" {
			rel = path.Join(sub, e.Name)
		}
		switch e.Type {
		case TypeFile:
			if localfs.IsBookkeeping(e.Name) {
				continue
			}
			visit(rel, e)
		case TypeDir:
			if err := walk(ctx, s, src, rel, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// AssetListing is the result of ListAssets.
type AssetListing struct {
	// Assets are directories containing the marker file, sorted by name.
	Assets []model.RemoteAsset
	// Skipped names directories that lack the marker file.
	Skipped []string
	// Failed maps directories whose tree could not be listed to the error.
	Failed map[string]error
}

// ListAssets treats each top-level directory of the remote root as one
// asset. Include and exclude patterns apply to the asset name; every file
// below an accepted asset is kept regardless of extension. Failure to list
// the root is returned as an error; failure inside one asset only marks
// that asset failed.
func ListAssets(ctx context.Context, s Source, src model.AssetSource, filter pattern.Filter, marker string) (AssetListing, error) {
	listing := AssetListing{Failed: map[string]error{}}

	top, err := s.ListDirectory(ctx, src, "")
	if err != nil {
		return listing, err
	}

	for _, e := range top {
		if e.Type != TypeDir {
			continue
		}
		name := e.Name
		if !pattern.Matches(name, filter.Include) && !pattern.Matches(src.Join(name), filter.Include) {
			continue
		}
		if filter.Excluded(name) {
			continue
		}

		asset := model.RemoteAsset{Name: name}
		err := walk(ctx, s, src, name, func(rel string, fe DirEntry) {
			inner := rel[len(name)+1:]
			if filter.Excluded(inner) || filter.Excluded(rel) {
				return
			}
			asset.Files = append(asset.Files, model.RemoteEntry{
				Path:        inner,
				DownloadURL: fe.DownloadURL,
				SHA:         fe.SHA,
				Size:        fe.Size,
			})
		})
		if err != nil {
			if ctx.Err() != nil {
				return listing, ctx.Err()
			}
			listing.Failed[name] = err
			continue
		}
		if marker != "" && !asset.HasFile(marker) {
			listing.Skipped = append(listing.Skipped, name)
			continue
		}
		listing.Assets = append(listing.Assets, asset)
	}

	sort.Slice(listing.Assets, func(i, j int) bool { return listing.Assets[i].Name < listing.Assets[j].Name })
	sort.Strings(listing.Skipped)
	return listing, nil
}

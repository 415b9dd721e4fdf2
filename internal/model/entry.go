package model

// RemoteEntry is one file discovered upstream.
type RemoteEntry struct {
	// Path is relative to the source's remote root (or to the asset directory
	// for files inside a RemoteAsset), slash-separated.
	Path string `json:"path"`
	// DownloadURL is the locator handed to the fetcher. For local sources it
	// is an absolute file path.
	DownloadURL string `json:"download_url"`
	// SHA is the upstream content identifier. It is carried for reporting
	// only; reconciliation diffs by path.
	SHA string `json:"sha,omitempty"`
	// Size in bytes as reported by the listing, 0 if unknown.
	Size int64 `json:"size,omitempty"`
}

// Key returns the reconciliation key of the entry.
func (e RemoteEntry) Key() string {
	return e.Path
}

// RemoteAsset is a directory-based asset (skill, hook, plugin): a named
// subtree that is kept or deleted as a whole.
type RemoteAsset struct {
	Name  string        `json:"name"`
	Files []RemoteEntry `json:"files"`
}

// Key returns the reconciliation key of the asset.
func (a RemoteAsset) Key() string {
	return a.Name
}

// HasFile reports whether the asset contains a file at rel.
func (a RemoteAsset) HasFile(rel string) bool {
	for _, f := range a.Files {
		if f.Path == rel {
			return true
		}
	}
	return false
}

// TotalSize sums the reported sizes of the asset's files.
func (a RemoteAsset) TotalSize() int64 {
	var n int64
	for _, f := range a.Files {
		n += f.Size
	}
	return n
}

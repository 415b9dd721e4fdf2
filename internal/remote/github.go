package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"

	"github.com/klauern/workspace-architect/internal/logging"
	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/syncerr"
)

// Defaults for the GitHub client.
const (
	DefaultAPIBase = "https://api.github.com"
	DefaultTimeout = 30 * time.Second

	acceptHeader = "application/vnd.github.v3+json"
)

// GitHubOptions configures a GitHub client.
type GitHubOptions struct {
	// APIBase is the REST API root. Defaults to DefaultAPIBase.
	APIBase string
	// Token is sent as a bearer token when non-empty.
	Token string
	// UserAgent identifies the tool, e.g. "wsa/1.2.0".
	UserAgent string
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// GitHub reads repository directories through the Contents API.
type GitHub struct {
	client  *req.Client
	apiBase string
}

// contentItem is one element of a Contents API directory response.
type contentItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// NewGitHub returns a client. Requests are never retried.
func NewGitHub(opts GitHubOptions) *GitHub {
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "wsa"
	}

	client := req.C().
		SetTimeout(opts.Timeout).
		SetUserAgent(opts.UserAgent).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)
	if opts.Token != "" {
		client.SetCommonBearerAuthToken(opts.Token)
	}

	return &GitHub{
		client:  client,
		apiBase: strings.TrimRight(opts.APIBase, "/"),
	}
}

// ContentsURL returns the Contents API URL for relPath in src, without the
// ref query. Each path segment is escaped.
func (g *GitHub) ContentsURL(src model.AssetSource, relPath string) string {
	u := fmt.Sprintf("%s/repos/%s/%s/contents", g.apiBase, url.PathEscape(src.Owner), url.PathEscape(src.Repo))
	if p := src.Join(relPath); p != "" {
		segments := strings.Split(p, "/")
		for i, seg := range segments {
			segments[i] = url.PathEscape(seg)
		}
		u += "/" + strings.Join(segments, "/")
	}
	return u
}

// ListDirectory implements Source.
func (g *GitHub) ListDirectory(ctx context.Context, src model.AssetSource, relPath string) ([]DirEntry, error) {
	if src.IsLocal() {
		return nil, syncerr.Invalid("source %s is not a GitHub repository", src.ID())
	}
	endpoint := g.ContentsURL(src, relPath)
	logging.WithContext(ctx).Debug("listing upstream directory", logging.URL(endpoint))

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Accept", acceptHeader).
		SetQueryParam("ref", src.Ref()).
		Get(endpoint)
	if err != nil {
		return nil, syncerr.Upstream("list", endpoint, "", err)
	}
	if !resp.IsSuccessState() {
		return nil, syncerr.Upstream("list", endpoint, resp.Status, nil)
	}

	body := bytes.TrimSpace(resp.Bytes())
	if len(body) == 0 || body[0] != '[' {
		return nil, syncerr.Upstream("list", endpoint, resp.Status, errors.New("not a directory"))
	}

	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, syncerr.Upstream("list", endpoint, resp.Status, fmt.Errorf("decode listing: %w", err))
	}

	entries := make([]DirEntry, 0, len(items))
	for _, it := range items {
		var t EntryType
		switch it.Type {
		case "file":
			t = TypeFile
		case "dir":
			t = TypeDir
		default:
			// symlinks and submodules are not followed
			continue
		}
		entries = append(entries, DirEntry{
			Name:        it.Name,
			Type:        t,
			DownloadURL: it.DownloadURL,
			SHA:         it.SHA,
			Size:        it.Size,
		})
	}
	return entries, nil
}

// FetchFile implements Source. The locator is a raw download URL.
func (g *GitHub) FetchFile(ctx context.Context, locator string) ([]byte, error) {
	if locator == "" {
		return nil, syncerr.Upstream("fetch", locator, "", errors.New("empty download url"))
	}
	resp, err := g.client.R().
		SetContext(ctx).
		Get(locator)
	if err != nil {
		return nil, syncerr.Upstream("fetch", locator, "", err)
	}
	if !resp.IsSuccessState() {
		return nil, syncerr.Upstream("fetch", locator, resp.Status, nil)
	}
	return resp.Bytes(), nil
}

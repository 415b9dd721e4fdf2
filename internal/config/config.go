// Package config loads the upstream resource configuration for wsa.
// It supports YAML, TOML and JSON files, environment overrides and built-in
// defaults that mirror the asset library's usual upstreams.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/pattern"
	"github.com/klauern/workspace-architect/internal/syncerr"
)

// Config is the complete configuration, built once at program entry.
type Config struct {
	// GitHub configures the Contents API client.
	GitHub GitHubConfig `yaml:"github" toml:"github" json:"github"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`

	// Resources maps a resource name (agents, skills, ...) to its upstream.
	Resources map[string]*Resource `yaml:"resources" toml:"resources" json:"resources"`

	// Token is the GitHub token. It is only ever read from the environment.
	Token string `yaml:"-" toml:"-" json:"-"`

	// BaseDir resolves relative local paths. Load sets it to the config
	// file's directory.
	BaseDir string `yaml:"-" toml:"-" json:"-"`

	// Path is the file the configuration was loaded from, if any.
	Path string `yaml:"-" toml:"-" json:"-"`
}

// GitHubConfig holds GitHub client settings.
type GitHubConfig struct {
	// APIBase is the REST API root.
	APIBase string `yaml:"api_base" toml:"api_base" json:"apiBase"`
	// Timeout bounds each HTTP request.
	Timeout Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level" json:"level"`
	// Format is text or json.
	Format string `yaml:"format" toml:"format" json:"format"`
	// File, when set, also writes rotated JSON logs there.
	File string `yaml:"file" toml:"file" json:"file"`
}

// Resource describes one upstream feed and the directory it is mirrored into.
type Resource struct {
	// Name is the key the resource is configured under.
	Name string `yaml:"-" toml:"-" json:"-"`

	// Type selects defaults (marker file, install directory). Defaults to
	// Name when Name is a known resource type.
	Type string `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`

	Repo      string `yaml:"repo,omitempty" toml:"repo,omitempty" json:"repo,omitempty"`
	Branch    string `yaml:"branch,omitempty" toml:"branch,omitempty" json:"branch,omitempty"`
	RemoteDir string `yaml:"remote_dir" toml:"remote_dir" json:"remoteDir"`
	LocalDir  string `yaml:"local_dir" toml:"local_dir" json:"localDir"`

	// LocalPath, when set, reads upstream content from this directory
	// instead of GitHub.
	LocalPath string `yaml:"local_path,omitempty" toml:"local_path,omitempty" json:"localPath,omitempty"`

	AcceptedExtensions []string `yaml:"accepted_extensions,omitempty" toml:"accepted_extensions,omitempty" json:"acceptedExtensions,omitempty"`
	SyncPatterns       []string `yaml:"sync_patterns,omitempty" toml:"sync_patterns,omitempty" json:"syncPatterns,omitempty"`
	Exclude            []string `yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude,omitempty"`

	SyncMode     string `yaml:"sync_mode,omitempty" toml:"sync_mode,omitempty" json:"syncMode,omitempty"`
	RequiredFile string `yaml:"required_file,omitempty" toml:"required_file,omitempty" json:"requiredFile,omitempty"`

	// target is LocalDir resolved against the config base directory.
	target string
	// upstream is LocalPath resolved the same way.
	upstream string
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults.
const (
	DefaultAPIBase = "https://api.github.com"
	DefaultTimeout = 30 * time.Second
)

// Default returns the built-in configuration: instructions, prompts, agents
// and collections from github/awesome-copilot and skills from
// anthropics/skills, mirrored below assets/.
func Default() *Config {
	cfg := &Config{
		GitHub: GitHubConfig{
			APIBase: DefaultAPIBase,
			Timeout: Duration{DefaultTimeout},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Resources: map[string]*Resource{
			"agents": {
				Repo:               "github/awesome-copilot",
				RemoteDir:          "agents",
				LocalDir:           "assets/agents",
				AcceptedExtensions: []string{".agent.md", ".md"},
			},
			"instructions": {
				Repo:               "github/awesome-copilot",
				RemoteDir:          "instructions",
				LocalDir:           "assets/instructions",
				AcceptedExtensions: []string{".instructions.md", ".md"},
			},
			"prompts": {
				Repo:               "github/awesome-copilot",
				RemoteDir:          "prompts",
				LocalDir:           "assets/prompts",
				AcceptedExtensions: []string{".prompt.md", ".md"},
			},
			"collections": {
				Repo:               "github/awesome-copilot",
				RemoteDir:          "collections",
				LocalDir:           "assets/collections",
				AcceptedExtensions: []string{".json", ".yml", ".yaml"},
			},
			"skills": {
				Repo:         "anthropics/skills",
				RemoteDir:    "skills",
				LocalDir:     "assets/skills",
				SyncMode:     string(model.SyncModeDirectory),
				RequiredFile: "SKILL.md",
			},
		},
	}
	cfg.normalize()
	return cfg
}

// normalize fills derived fields and per-resource defaults.
func (c *Config) normalize() {
	if c.GitHub.APIBase == "" {
		c.GitHub.APIBase = DefaultAPIBase
	}
	if c.GitHub.Timeout.Duration <= 0 {
		c.GitHub.Timeout = Duration{DefaultTimeout}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Resources == nil {
		c.Resources = map[string]*Resource{}
	}
	for name, r := range c.Resources {
		if r == nil {
			r = &Resource{}
			c.Resources[name] = r
		}
		r.Name = name
		if r.Type == "" {
			if rt, err := model.ParseResourceType(name); err == nil {
				r.Type = rt.String()
			}
		}
		if r.SyncMode == "" {
			r.SyncMode = r.ResourceType().Mode().String()
		}
		if r.Mode() == model.SyncModeDirectory && r.RequiredFile == "" {
			r.RequiredFile = r.ResourceType().MarkerFile()
			if r.RequiredFile == "" {
				r.RequiredFile = "SKILL.md"
			}
		}
		r.target = c.ResolvePath(r.LocalDir)
		if r.LocalPath != "" {
			r.upstream = c.ResolvePath(r.LocalPath)
		}
	}
}

// ResolvePath makes p absolute against BaseDir. Absolute paths are cleaned.
func (c *Config) ResolvePath(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	base := c.BaseDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, filepath.FromSlash(p))
}

// ApplyEnvironment applies overrides from lookup, which is normally
// os.LookupEnv. Variables follow the pattern WSA_<SECTION>_<KEY>; the token
// comes from GITHUB_TOKEN.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("GITHUB_TOKEN"); ok {
		c.Token = v
	}
	if v, ok := get("WSA_GITHUB_API_BASE"); ok {
		c.GitHub.APIBase = v
	}
	if v, ok := get("WSA_GITHUB_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.GitHub.Timeout = Duration{d}
		}
	}
	if v, ok := get("WSA_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := get("WSA_LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if v, ok := get("WSA_LOG_FILE"); ok {
		c.Logging.File = v
	}
}

// ResourceNames returns the configured resource names in sorted order.
func (c *Config) ResourceNames() []string {
	names := make([]string, 0, len(c.Resources))
	for name := range c.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resource returns the named resource or a configuration error listing the
// valid names.
func (c *Config) Resource(name string) (*Resource, error) {
	r, ok := c.Resources[name]
	if !ok {
		return nil, syncerr.Invalid("unknown resource type: %s. Valid types are: %s",
			name, strings.Join(c.ResourceNames(), ", "))
	}
	return r, nil
}

// Validate checks every resource and returns all problems at once.
func (c *Config) Validate() error {
	if len(c.Resources) == 0 {
		return syncerr.Invalid("configuration does not define any resources")
	}
	var errs []error
	for _, name := range c.ResourceNames() {
		if err := c.Resources[name].Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return syncerr.New(syncerr.ErrConfigurationInvalid, "validate", c.Path, errors.Join(errs...))
}

// Validate checks one resource without touching the network or disk.
func (r *Resource) Validate() error {
	if r.LocalPath == "" {
		if _, _, err := model.ParseRepo(r.Repo); err != nil {
			return fmt.Errorf("%s: invalid repo format %q: expected owner/name", r.Name, r.Repo)
		}
	}
	if strings.TrimSpace(r.LocalDir) == "" {
		return fmt.Errorf("%s: local_dir is required", r.Name)
	}
	if _, err := model.ParseSyncMode(r.SyncMode); err != nil {
		return fmt.Errorf("%s: %w", r.Name, err)
	}
	if err := pattern.Validate(r.SyncPatterns); err != nil {
		return fmt.Errorf("%s: %w", r.Name, err)
	}
	if r.Type != "" {
		if _, err := model.ParseResourceType(r.Type); err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
	}
	return nil
}

// ResourceType returns the resource's type, or "" if it is not a known one.
func (r *Resource) ResourceType() model.ResourceType {
	rt, err := model.ParseResourceType(r.Type)
	if err != nil {
		return ""
	}
	return rt
}

// Mode returns the parsed sync mode, defaulting to file mode.
func (r *Resource) Mode() model.SyncMode {
	m, err := model.ParseSyncMode(r.SyncMode)
	if err != nil {
		return model.SyncModeFile
	}
	return m
}

// AssetSource builds the upstream identity of the resource.
func (r *Resource) AssetSource() (model.AssetSource, error) {
	if r.LocalPath != "" {
		root := r.upstream
		if root == "" {
			root = r.LocalPath
		}
		return model.NewLocalSource(root, r.RemoteDir)
	}
	src, err := model.NewGitHubSource(r.Repo, r.Branch, r.RemoteDir)
	if err != nil {
		return model.AssetSource{}, syncerr.Invalid("invalid repo format for %s: %s. Expected format: owner/name", r.Name, r.Repo)
	}
	return src, nil
}

// Filter returns the listing filter for the resource.
func (r *Resource) Filter() pattern.Filter {
	return pattern.NewFilter(r.AcceptedExtensions, r.SyncPatterns, r.Exclude)
}

// TargetDir returns the absolute-or-base-relative directory the resource is
// mirrored into.
func (r *Resource) TargetDir() string {
	if r.target == "" {
		return filepath.FromSlash(r.LocalDir)
	}
	return r.target
}

// Upstream returns a short description of where the resource comes from.
func (r *Resource) Upstream() string {
	if r.LocalPath != "" {
		return r.upstream
	}
	s := r.Repo
	if r.RemoteDir != "" {
		s += "/" + strings.Trim(r.RemoteDir, "/")
	}
	if r.Branch != "" && r.Branch != model.DefaultBranch {
		s += "@" + r.Branch
	}
	return s
}

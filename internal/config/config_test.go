package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/syncerr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.GitHub.APIBase != DefaultAPIBase {
		t.Errorf("expected APIBase %q, got %q", DefaultAPIBase, cfg.GitHub.APIBase)
	}
	if cfg.GitHub.Timeout.Duration != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.GitHub.Timeout.Duration)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %q", cfg.Logging.Level)
	}

	want := []string{"agents", "collections", "instructions", "prompts", "skills"}
	got := cfg.ResourceNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ResourceNames() = %v, want %v", got, want)
	}

	skills, err := cfg.Resource("skills")
	if err != nil {
		t.Fatalf("Resource(skills) error = %v", err)
	}
	if skills.Mode() != model.SyncModeDirectory {
		t.Errorf("skills mode = %v, want directory", skills.Mode())
	}
	if skills.RequiredFile != "SKILL.md" {
		t.Errorf("skills required file = %q", skills.RequiredFile)
	}

	agents, _ := cfg.Resource("agents")
	if agents.Mode() != model.SyncModeFile {
		t.Errorf("agents mode = %v, want file", agents.Mode())
	}
	if agents.Type != "agents" {
		t.Errorf("agents type = %q, want inferred from name", agents.Type)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestResourceUnknown(t *testing.T) {
	cfg := Default()
	_, err := cfg.Resource("widgets")
	if err == nil {
		t.Fatal("expected error for unknown resource")
	}
	if !errors.Is(err, syncerr.ErrConfigurationInvalid) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "agents, collections") {
		t.Errorf("error should list valid types: %v", err)
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFormats(t *testing.T) {
	tests := map[string]struct {
		file    string
		content string
	}{
		"yaml": {
			file: "upstream.config.yaml",
			content: `github:
  timeout: 5s
resources:
  prompts:
    repo: octo/prompts
    branch: dev
    remote_dir: prompts
    local_dir: assets/prompts
    accepted_extensions: [".prompt.md"]
    sync_patterns: ["*.prompt.md"]
`,
		},
		"toml": {
			file: "upstream.config.toml",
			content: `[github]
timeout = "5s"

[resources.prompts]
repo = "octo/prompts"
branch = "dev"
remote_dir = "prompts"
local_dir = "assets/prompts"
accepted_extensions = [".prompt.md"]
sync_patterns = ["*.prompt.md"]
`,
		},
		"json": {
			file: "upstream.config.json",
			content: `{
  "github": {"timeout": "5s"},
  "resources": {
    "prompts": {
      "repo": "octo/prompts",
      "branch": "dev",
      "remoteDir": "prompts",
      "localDir": "assets/prompts",
      "acceptedExtensions": [".prompt.md"],
      "syncPatterns": ["*.prompt.md"]
    }
  }
}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := writeConfig(t, tt.file, tt.content)
			cfg, err := LoadFromPath(p)
			if err != nil {
				t.Fatalf("LoadFromPath() error = %v", err)
			}

			if cfg.GitHub.Timeout.Duration != 5*time.Second {
				t.Errorf("timeout = %v, want 5s", cfg.GitHub.Timeout.Duration)
			}
			if cfg.GitHub.APIBase != DefaultAPIBase {
				t.Errorf("APIBase should default, got %q", cfg.GitHub.APIBase)
			}
			if names := cfg.ResourceNames(); len(names) != 1 || names[0] != "prompts" {
				t.Fatalf("file resources should replace defaults, got %v", names)
			}

			r, _ := cfg.Resource("prompts")
			src, err := r.AssetSource()
			if err != nil {
				t.Fatalf("AssetSource() error = %v", err)
			}
			if src.ID() != "octo/prompts/prompts@dev" {
				t.Errorf("source ID = %q", src.ID())
			}
			wantDir := filepath.Join(filepath.Dir(p), "assets", "prompts")
			if r.TargetDir() != wantDir {
				t.Errorf("TargetDir() = %q, want %q", r.TargetDir(), wantDir)
			}
			f := r.Filter()
			if !f.Accept("a.prompt.md", "prompts/a.prompt.md") {
				t.Error("filter should accept matching prompt")
			}
			if f.Accept("a.md", "prompts/a.md") {
				t.Error("filter should reject other extensions")
			}
		})
	}
}

func TestLoadEmptyResourcesUsesDefaults(t *testing.T) {
	p := writeConfig(t, "upstream.config.yaml", "logging:\n  level: debug\n")
	cfg, err := LoadFromPath(p)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Resources) != len(Default().Resources) {
		t.Errorf("expected built-in resources, got %v", cfg.ResourceNames())
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, syncerr.ErrConfigurationInvalid) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})
	t.Run("malformed", func(t *testing.T) {
		p := writeConfig(t, "upstream.config.json", `{"resources": [`)
		_, err := LoadFromPath(p)
		if !errors.Is(err, syncerr.ErrConfigurationInvalid) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})
	t.Run("unsupported extension", func(t *testing.T) {
		p := writeConfig(t, "upstream.config.ini", "x=1")
		if _, err := LoadFromPath(p); err == nil {
			t.Error("expected error for .ini")
		}
	})
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if got := Find(dir); got != "" {
		t.Errorf("Find() on empty dir = %q", got)
	}

	for _, name := range []string{"upstream.config.json", "upstream.config.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if got := Find(dir); filepath.Base(got) != "upstream.config.yaml" {
		t.Errorf("Find() = %q, want yaml to take precedence", got)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		res     Resource
		wantErr string
	}{
		"valid": {
			res: Resource{Repo: "o/r", LocalDir: "x"},
		},
		"bad repo": {
			res:     Resource{Repo: "just-a-name", LocalDir: "x"},
			wantErr: "invalid repo format",
		},
		"missing local dir": {
			res:     Resource{Repo: "o/r"},
			wantErr: "local_dir is required",
		},
		"bad mode": {
			res:     Resource{Repo: "o/r", LocalDir: "x", SyncMode: "sideways"},
			wantErr: "unknown sync mode",
		},
		"bad pattern": {
			res:     Resource{Repo: "o/r", LocalDir: "x", SyncPatterns: []string{"[abc"}},
			wantErr: "pattern",
		},
		"local path without repo": {
			res: Resource{LocalPath: "/srv/mirror", LocalDir: "x"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{Resources: map[string]*Resource{"widgets": &tt.res}}
			cfg.normalize()
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, syncerr.ErrConfigurationInvalid) {
				t.Errorf("expected configuration error kind, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNoResources(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty config")
	}
}

func TestApplyEnvironment(t *testing.T) {
	env := map[string]string{
		"GITHUB_TOKEN":        "  secret ",
		"WSA_GITHUB_API_BASE": "http://localhost:9999",
		"WSA_GITHUB_TIMEOUT":  "2s",
		"WSA_LOG_LEVEL":       "debug",
		"WSA_LOG_FORMAT":      "json",
		"WSA_LOG_FILE":        "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	cfg.ApplyEnvironment(lookup)

	if cfg.Token != "secret" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.GitHub.APIBase != "http://localhost:9999" {
		t.Errorf("APIBase = %q", cfg.GitHub.APIBase)
	}
	if cfg.GitHub.Timeout.Duration != 2*time.Second {
		t.Errorf("Timeout = %v", cfg.GitHub.Timeout.Duration)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Logging.File != "" {
		t.Errorf("empty variable should not override, got %q", cfg.Logging.File)
	}
}

func TestApplyEnvironmentInvalidTimeout(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnvironment(func(k string) (string, bool) {
		if k == "WSA_GITHUB_TIMEOUT" {
			return "soon", true
		}
		return "", false
	})
	if cfg.GitHub.Timeout.Duration != DefaultTimeout {
		t.Errorf("invalid timeout should be ignored, got %v", cfg.GitHub.Timeout.Duration)
	}
}

func TestLocalPathSource(t *testing.T) {
	p := writeConfig(t, "upstream.config.yaml", `resources:
  agents:
    local_path: mirror
    remote_dir: agents
    local_dir: out
`)
	cfg, err := LoadFromPath(p)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := cfg.Resource("agents")
	src, err := r.AssetSource()
	if err != nil {
		t.Fatalf("AssetSource() error = %v", err)
	}
	if !src.IsLocal() {
		t.Error("expected local source")
	}
	if want := filepath.Join(filepath.Dir(p), "mirror"); src.LocalRoot != want {
		t.Errorf("LocalRoot = %q, want %q", src.LocalRoot, want)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			data, err := Encode(ext, Default())
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			cfg := &Config{}
			if err := Decode(ext, data, cfg); err != nil {
				t.Fatalf("Decode() error = %v\n%s", err, data)
			}
			cfg.normalize()
			if len(cfg.Resources) != 5 {
				t.Errorf("got %d resources", len(cfg.Resources))
			}
			if cfg.GitHub.Timeout.Duration != DefaultTimeout {
				t.Errorf("timeout = %v", cfg.GitHub.Timeout.Duration)
			}
		})
	}
}

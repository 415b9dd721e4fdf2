package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/klauern/workspace-architect/internal/syncerr"
)

// FileBase is the config file name without extension.
const FileBase = "upstream.config"

// Extensions lists the recognized config file extensions in lookup order.
var Extensions = []string{".yaml", ".yml", ".toml", ".json"}

// Find returns the first config file in dir, or "" when there is none.
func Find(dir string) string {
	for _, ext := range Extensions {
		p := filepath.Join(dir, FileBase+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads the config at path. An empty path loads the file found in the
// working directory, falling back to Default when none exists. Environment
// overrides are not applied here; see ApplyEnvironment.
func Load(path string) (*Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path = Find(wd)
		if path == "" {
			cfg := Default()
			cfg.BaseDir = wd
			cfg.normalize()
			return cfg, nil
		}
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and decodes a specific config file. The format is
// chosen by extension. Resources defined in the file replace the built-in
// set; when the file defines none, the built-in set is used.
func LoadFromPath(path string) (*Config, error) {
	// #nosec G304 - path is provided by the user via flag or environment
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, syncerr.New(syncerr.ErrConfigurationInvalid, "load", path, err)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := Decode(filepath.Ext(path), data, cfg); err != nil {
		return nil, syncerr.New(syncerr.ErrConfigurationInvalid, "parse", path, err)
	}
	if len(cfg.Resources) == 0 {
		cfg.Resources = Default().Resources
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Path = abs
	cfg.BaseDir = filepath.Dir(abs)
	cfg.normalize()
	return cfg, nil
}

// Decode unmarshals data in the format named by ext into cfg. Unknown keys
// are ignored so a config file can be shared with other tools.
func Decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q (use .yaml, .toml or .json)", ext)
	}
}

// Encode renders cfg in the format named by ext.
func Encode(ext string, cfg *Config) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".toml", "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".json", "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (use yaml, toml or json)", ext)
	}
}

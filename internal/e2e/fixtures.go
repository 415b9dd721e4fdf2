package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture provides helpers for creating test fixtures in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, filepath.FromSlash(relPath))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// WriteDoc writes a markdown asset with a frontmatter header built from
// alternating key, value pairs.
func (f *Fixture) WriteDoc(relPath, body string, fields ...string) string {
	f.t.Helper()

	var sb strings.Builder
	sb.WriteString("---\n")
	for i := 0; i+1 < len(fields); i += 2 {
		sb.WriteString(fields[i] + ": " + fields[i+1] + "\n")
	}
	sb.WriteString("---\n\n")
	sb.WriteString(body)

	return f.WriteFile(relPath, sb.String())
}

// Remove deletes a file or directory tree relative to the base.
func (f *Fixture) Remove(relPath string) {
	f.t.Helper()
	if err := os.RemoveAll(f.Path(relPath)); err != nil {
		f.t.Fatalf("failed to remove %s: %v", relPath, err)
	}
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, filepath.FromSlash(relPath))
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	_, err := os.Stat(f.Path(relPath))
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := f.Path(relPath)

	// #nosec G304 - fullPath is constructed from trusted test fixture base and test-provided path
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// Workspace returns a fixture rooted at the workspace.
func (h *Harness) Workspace() *Fixture {
	return NewFixture(h.t, h.dir)
}

// Upstream returns a fixture rooted at the local upstream directory the
// default config reads from.
func (h *Harness) Upstream() *Fixture {
	return NewFixture(h.t, filepath.Join(h.dir, "upstream"))
}

// DefaultConfig mirrors upstream/agents and upstream/skills into assets/.
const DefaultConfig = `resources:
  agents:
    local_path: upstream
    remote_dir: agents
    local_dir: assets/agents
    accepted_extensions: [".agent.md", ".md"]
  skills:
    local_path: upstream
    remote_dir: skills
    local_dir: assets/skills
`

// WriteConfig writes the workspace config file.
func (h *Harness) WriteConfig(content string) {
	h.t.Helper()
	h.Workspace().WriteFile("upstream.config.yaml", content)
}

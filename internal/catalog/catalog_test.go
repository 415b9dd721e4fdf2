package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/workspace-architect/internal/config"
	"github.com/klauern/workspace-architect/internal/model"
)

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	// #nosec G301 - test directory permissions are acceptable
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// #nosec G306 - test file permissions are acceptable
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

func TestList_FileAssets(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "agents")
	writeFile(t, filepath.Join(dir, "reviewer.agent.md"), "---\ndescription: Reviews code\n---\nbody")
	writeFile(t, filepath.Join(dir, "nested", "planner.md"), "no frontmatter")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, ".upstream-sync.json"), "{}")

	lib := New(root, nil)
	assets, err := lib.List(model.ResourceAgents)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("List() returned %d assets, want 2: %+v", len(assets), assets)
	}

	if assets[0].Name != "nested/planner" || assets[0].Description != "" {
		t.Errorf("assets[0] = %+v", assets[0])
	}
	if assets[1].Name != "reviewer" || assets[1].Description != "Reviews code" {
		t.Errorf("assets[1] = %+v", assets[1])
	}
	if assets[1].Rel != "reviewer.agent.md" || assets[1].Files != 1 || assets[1].IsDir() {
		t.Errorf("assets[1] = %+v", assets[1])
	}
}

func TestList_Collections(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "collections")
	writeFile(t, filepath.Join(dir, "web.collection.json"), `{"id":"web","description":"Web tooling","items":[]}`)
	writeFile(t, filepath.Join(dir, "ops.collection.yml"), "id: ops\ndescription: Ops helpers\n")
	writeFile(t, filepath.Join(dir, "broken.json"), "{not json")

	assets, err := New(root, nil).List(model.ResourceCollections)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("List() returned %d assets, want 3", len(assets))
	}

	byName := map[string]Asset{}
	for _, a := range assets {
		byName[a.Name] = a
	}
	if got := byName["web.collection"].Description; got != "Web tooling" {
		t.Errorf("json description = %q", got)
	}
	if got := byName["ops.collection"].Description; got != "Ops helpers" {
		t.Errorf("yaml description = %q", got)
	}
	if byName["broken"].ParseErr == nil {
		t.Error("broken collection should report a parse error")
	}
}

func TestList_DirectoryAssets(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "skills")
	writeFile(t, filepath.Join(dir, "pdf", "SKILL.md"), "---\nname: pdf\ndescription: PDF tools\n---\n")
	writeFile(t, filepath.Join(dir, "pdf", "scripts", "run.py"), "print()")
	writeFile(t, filepath.Join(dir, "draft", "README.md"), "wip")

	assets, err := New(root, nil).List(model.ResourceSkills)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("List() returned %d assets, want 2", len(assets))
	}

	draft, pdf := assets[0], assets[1]
	if draft.Name != "draft" || draft.ParseErr == nil {
		t.Errorf("draft = %+v, want missing SKILL.md error", draft)
	}
	if pdf.Name != "pdf" || pdf.Description != "PDF tools" || pdf.Files != 2 || !pdf.IsDir() {
		t.Errorf("pdf = %+v", pdf)
	}
	if pdf.Entry != filepath.Join(dir, "pdf", "SKILL.md") {
		t.Errorf("pdf.Entry = %q", pdf.Entry)
	}
}

func TestList_MissingDirectory(t *testing.T) {
	lib := New(t.TempDir(), nil)
	for _, rt := range []model.ResourceType{model.ResourcePrompts, model.ResourceSkills} {
		assets, err := lib.List(rt)
		if err != nil {
			t.Errorf("List(%s) error = %v", rt, err)
		}
		if len(assets) != 0 {
			t.Errorf("List(%s) = %v, want empty", rt, assets)
		}
	}
}

func TestList_InvalidType(t *testing.T) {
	if _, err := New(t.TempDir(), nil).List("widgets"); err == nil {
		t.Error("List() should reject an unknown type")
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "prompts", "commit.prompt.md"), "---\ndescription: Commit message\n---\n")
	lib := New(root, nil)

	tests := []struct {
		name    string
		lookup  string
		wantErr bool
	}{
		{"by name", "commit", false},
		{"by file", "commit.prompt.md", false},
		{"missing", "nope", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := lib.Find(model.ResourcePrompts, tt.lookup)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Find() error = %v, want ErrNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if a.Name != "commit" {
				t.Errorf("Find() = %+v", a)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "upstream.config.yaml")
	writeFile(t, cfgPath, "resources:\n  agents:\n    repo: github/awesome-copilot\n    remote_dir: agents\n    local_dir: lib/agents\n")

	cfg, err := config.LoadFromPath(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	lib := FromConfig(cfg)

	if got, want := lib.Dir(model.ResourceAgents), filepath.Join(dir, "lib", "agents"); got != want {
		t.Errorf("Dir(agents) = %q, want %q", got, want)
	}
	if got, want := lib.Dir(model.ResourceSkills), filepath.Join(dir, "assets", "skills"); got != want {
		t.Errorf("Dir(skills) = %q, want %q", got, want)
	}
}

package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "squib.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "test-app"
version = "0.1.0"

[cache]
path = "build/images.db"

[images]
main = { path = "build/main.img" }
tools = { path = "/opt/images/tools.img" }
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "test-app" {
		t.Errorf("Project.Name = %q, want %q", m.Project.Name, "test-app")
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("Project.Version = %q, want %q", m.Project.Version, "0.1.0")
	}
	if got, want := m.CachePath(), filepath.Join(m.Dir, "build/images.db"); got != want {
		t.Errorf("CachePath() = %q, want %q", got, want)
	}
	if got, want := m.ImagePath("main"), filepath.Join(m.Dir, "build/main.img"); got != want {
		t.Errorf("ImagePath(main) = %q, want %q", got, want)
	}
	if got := m.ImagePath("tools"); got != "/opt/images/tools.img" {
		t.Errorf("ImagePath(tools) = %q, want absolute path untouched", got)
	}
	if got := m.ImagePath("absent"); got != "" {
		t.Errorf("ImagePath(absent) = %q, want empty", got)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "bare"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := m.CachePath(), filepath.Join(m.Dir, DefaultCachePath); got != want {
		t.Errorf("CachePath() = %q, want default %q", got, want)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load on a directory without squib.toml succeeded")
	}
}

func TestLoadMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `[project`)
	if _, err := Load(dir); err == nil {
		t.Fatal("Load on malformed TOML succeeded")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[project]
name = "walk-up"
`)

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil, want manifest from ancestor dir")
	}
	if m.Project.Name != "walk-up" {
		t.Errorf("Project.Name = %q, want %q", m.Project.Name, "walk-up")
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m != nil {
		t.Errorf("FindAndLoad = %+v, want nil when no squib.toml exists", m)
	}
}

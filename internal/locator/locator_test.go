package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var strict = []string{"commondata", "shp4ia"}

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
}

func TestLocatePrefersStrictPath(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "commondata/shp4ia", "a/shp4ia")

	match, err := Locate(root, strict, "shp4ia")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if match.Fallback || match.Path != filepath.Join(root, "commondata", "shp4ia") {
		t.Fatalf("unexpected match %+v", match)
	}
}

func TestLocateFallbackShallowestThenLexicographic(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a/b/c/shp4ia", "z/shp4ia", "m/shp4ia", "data/v1")

	match, err := Locate(root, strict, "shp4ia")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if !match.Fallback || match.Path != filepath.Join(root, "m", "shp4ia") {
		t.Fatalf("unexpected match %+v", match)
	}
}

func TestLocateIgnoresFilesNamedLikeDirectory(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "commondata", "deep/er")
	if err := os.WriteFile(filepath.Join(root, "commondata", "shp4ia"), []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "shp4ia"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mkdirs(t, root, "deep/er/shp4ia")

	match, err := Locate(root, strict, "shp4ia")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if match.Path != filepath.Join(root, "deep", "er", "shp4ia") {
		t.Fatalf("unexpected match %+v", match)
	}
}

func TestLocateNotFound(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "commondata/other", "misc")
	if _, err := Locate(root, strict, "shp4ia"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocateMissingRoot(t *testing.T) {
	_, err := Locate(filepath.Join(t.TempDir(), "missing"), strict, "shp4ia")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected read error for missing root, got %v", err)
	}
}

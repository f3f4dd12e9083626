package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestPrepareRemovesStaleContent(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "temp_mpk_extract")
	writeFile(t, filepath.Join(dir, "leftover", "old.shp"), "stale")

	s := New(dir, filepath.Join(base, "city.mpk"), nil)
	if err := s.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read scratch: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty scratch, found %d entries", len(entries))
	}
}

func TestPrepareRequiresDirectory(t *testing.T) {
	if err := New("  ", "city.mpk", nil).Prepare(); err == nil {
		t.Fatal("expected error for blank scratch directory")
	}
}

func TestStageSourceCopiesUnderCodecExtension(t *testing.T) {
	base := t.TempDir()
	original := filepath.Join(base, "city.mpk")
	writeFile(t, original, "PK\x03\x04payload")

	s := New(filepath.Join(base, "scratch"), original, nil)
	src, err := s.StageSource(".zip")
	if err != nil {
		t.Fatalf("StageSource: %v", err)
	}
	if src != filepath.Join(base, "city.zip") {
		t.Fatalf("unexpected copy path %q", src)
	}
	data, err := os.ReadFile(src)
	if err != nil || string(data) != "PK\x03\x04payload" {
		t.Fatalf("copy contents mismatch: %q (%v)", data, err)
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("original must remain: %v", err)
	}
}

func TestStageSourceKeepsMatchingExtension(t *testing.T) {
	base := t.TempDir()
	original := filepath.Join(base, "city.ZIP")
	writeFile(t, original, "zip")

	s := New(filepath.Join(base, "scratch"), original, nil)
	src, err := s.StageSource(".zip")
	if err != nil {
		t.Fatalf("StageSource: %v", err)
	}
	if src != original {
		t.Fatalf("expected original path, got %q", src)
	}
	s.Release()
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("Release must never remove the original: %v", err)
	}
}

func TestStageSourceNeverOverwritesSibling(t *testing.T) {
	base := t.TempDir()
	original := filepath.Join(base, "city.mpk")
	sibling := filepath.Join(base, "city.zip")
	writeFile(t, original, "archive")
	writeFile(t, sibling, "unrelated user file")

	s := New(filepath.Join(base, "scratch"), original, nil)
	src, err := s.StageSource(".zip")
	if err != nil {
		t.Fatalf("StageSource: %v", err)
	}
	if src == sibling {
		t.Fatal("copy must not reuse an existing sibling")
	}
	name := filepath.Base(src)
	if !strings.HasPrefix(name, "city.") || !strings.HasSuffix(name, ".zip") || len(name) != len("city.12345678.zip") {
		t.Fatalf("unexpected unique copy name %q", name)
	}

	s.Release()
	data, err := os.ReadFile(sibling)
	if err != nil || string(data) != "unrelated user file" {
		t.Fatalf("sibling altered: %q (%v)", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("renamed copy should be removed, stat err=%v", err)
	}
}

func TestReleaseRemovesCopyAndScratchOnce(t *testing.T) {
	base := t.TempDir()
	original := filepath.Join(base, "city.mpk")
	writeFile(t, original, "archive")
	dir := filepath.Join(base, "scratch")

	s := New(dir, original, nil)
	if err := s.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	writeFile(t, filepath.Join(dir, "commondata", "shp4ia", "a.shp"), "shp")
	copyPath, err := s.StageSource(".7z")
	if err != nil {
		t.Fatalf("StageSource: %v", err)
	}

	result := s.Release()
	if len(result.Removed) != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected cleanup result: %+v", result)
	}
	for _, path := range []string{dir, copyPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("%s should be gone, stat err=%v", path, err)
		}
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("original must remain: %v", err)
	}
	if again := s.Release(); len(again.Removed) != 0 || len(again.Errors) != 0 {
		t.Fatalf("second Release should be a no-op: %+v", again)
	}
}

func TestReleaseWithoutPrepare(t *testing.T) {
	base := t.TempDir()
	s := New(filepath.Join(base, "never-created"), filepath.Join(base, "city.mpk"), nil)
	result := s.Release()
	if len(result.Errors) != 0 || len(result.Removed) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

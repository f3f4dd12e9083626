package testsupport

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
)

// ZipTree packs every file and directory under srcDir into a ZIP archive at
// dest, entries in lexical order. The dest extension is irrelevant.
func ZipTree(t testing.TB, srcDir, dest string) {
	t.Helper()

	var names []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}
		names = append(names, path)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", srcDir, err)
	}
	sort.Strings(names)

	entries := make(map[string][]byte, len(names))
	var order []string
	for _, path := range names {
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			t.Fatalf("rel %s: %v", path, err)
		}
		name := filepath.ToSlash(rel)
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.IsDir() {
			name += "/"
			entries[name] = nil
		} else {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read %s: %v", path, err)
			}
			entries[name] = data
		}
		order = append(order, name)
	}
	writeZip(t, dest, order, entries)
}

// ZipFiles writes a ZIP archive at dest holding the given entries. Names
// ending in "/" become directory entries.
func ZipFiles(t testing.TB, dest string, entries map[string][]byte) {
	t.Helper()

	order := make([]string, 0, len(entries))
	for name := range entries {
		order = append(order, name)
	}
	sort.Strings(order)
	writeZip(t, dest, order, entries)
}

func writeZip(t testing.TB, dest string, order []string, entries map[string][]byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", dest, err)
	}
	f, err := os.Create(dest)
	if err != nil {
		t.Fatalf("create %s: %v", dest, err)
	}
	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}
		if body := entries[name]; len(body) > 0 {
			if _, err := w.Write(body); err != nil {
				t.Fatalf("zip write %s: %v", name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", dest, err)
	}
}

package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close zip file: %v", err)
	}
}

func TestZipExtractorExtractsTree(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "city.zip")
	writeZip(t, archivePath, map[string]string{
		"commondata/":                   "",
		"commondata/shp4ia/roads.shp":   "shp",
		"commondata/shp4ia/roads.dbf":   "dbf",
		"commondata/readme.txt":         "hello",
		`commondata\shp4ia\parcels.prj`: "prj",
	})
	dest := filepath.Join(dir, "out")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	stats, err := (ZipExtractor{}).Extract(context.Background(), archivePath, dest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.Files != 4 || stats.Dirs != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	for _, rel := range []string{"commondata/shp4ia/roads.shp", "commondata/shp4ia/parcels.prj", "commondata/readme.txt"} {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("expected %s extracted: %v", rel, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dest, "commondata", "readme.txt"))
	if err != nil || string(data) != "hello" {
		t.Fatalf("unexpected readme contents %q (%v)", data, err)
	}
}

func TestZipExtractorRejectsEscapingEntries(t *testing.T) {
	for _, name := range []string{"../evil.txt", "a/../../evil.txt", "/etc/evil.txt", `C:\evil.txt`} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			archivePath := filepath.Join(dir, "bad.zip")
			writeZip(t, archivePath, map[string]string{name: "x"})
			dest := filepath.Join(dir, "out")
			if err := os.Mkdir(dest, 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			if _, err := (ZipExtractor{}).Extract(context.Background(), archivePath, dest); err == nil {
				t.Fatal("expected escaping entry to fail extraction")
			}
			if _, statErr := os.Stat(filepath.Join(dir, "evil.txt")); !os.IsNotExist(statErr) {
				t.Fatalf("escaping entry was written outside dest")
			}
		})
	}
}

func TestZipExtractorCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(archivePath, []byte("PK\x03\x04 this is not really a zip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := (ZipExtractor{}).Extract(context.Background(), archivePath, dir); err == nil {
		t.Fatal("expected corrupt zip to fail")
	}
}

func TestSevenZipExtractorExtractsTree(t *testing.T) {
	dest := t.TempDir()
	stats, err := (SevenZipExtractor{}).Extract(context.Background(), filepath.Join("testdata", "city.7z"), dest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.Files != 6 || stats.Dirs != 3 || stats.Skipped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	for _, rel := range []string{"commondata", "commondata/shp4ia", "esriinfo"} {
		info, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel)))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", rel, err)
		}
	}
	for rel, size := range map[string]int64{
		"commondata/shp4ia/poi.shp": 128,
		"commondata/shp4ia/poi.shx": 108,
		"commondata/shp4ia/poi.dbf": 83,
		"commondata/shp4ia/poi.prj": 145,
	} {
		info, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
		if info.Size() != size {
			t.Fatalf("%s is %d bytes, want %d", rel, info.Size(), size)
		}
	}
	body, err := os.ReadFile(filepath.Join(dest, "esriinfo", "iteminfo.xml"))
	if err != nil || string(body) != "<ESRI_ItemInformation/>\n" {
		t.Fatalf("unexpected iteminfo.xml %q: %v", body, err)
	}
}

func TestSevenZipExtractorCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "broken.7z")
	payload := append([]byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}, []byte("garbage after the magic")...)
	if err := os.WriteFile(archivePath, payload, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := (SevenZipExtractor{}).Extract(context.Background(), archivePath, dir); err == nil {
		t.Fatal("expected corrupt 7z to fail")
	}
}

func TestExtractHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "city.zip")
	writeZip(t, archivePath, map[string]string{"a.txt": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (ZipExtractor{}).Extract(ctx, archivePath, dir); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRegistryFor(t *testing.T) {
	reg := DefaultRegistry()
	if _, err := reg.For(KindZip); err != nil {
		t.Fatalf("zip extractor missing: %v", err)
	}
	if _, err := reg.For(KindSevenZip); err != nil {
		t.Fatalf("7z extractor missing: %v", err)
	}
	if _, err := reg.For(KindUnknown); err == nil {
		t.Fatal("expected no extractor for unknown kind")
	}
}

func TestEntryTarget(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")
	cases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "commondata/shp4ia/a.shp", want: filepath.Join(root, "commondata", "shp4ia", "a.shp")},
		{name: `commondata\b.shp`, want: filepath.Join(root, "commondata", "b.shp")},
		{name: "./x/../y.txt", want: filepath.Join(root, "y.txt")},
		{name: "./", want: ""},
		{name: "../up.txt", wantErr: true},
		{name: "/abs.txt", wantErr: true},
		{name: "D:/drive.txt", wantErr: true},
	}
	for _, tc := range cases {
		got, err := entryTarget(root, tc.name)
		if tc.wantErr {
			if !errors.Is(err, ErrUnsafePath) {
				t.Fatalf("entryTarget(%q): expected ErrUnsafePath, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("entryTarget(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("entryTarget(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

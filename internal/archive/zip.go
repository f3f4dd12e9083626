package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

// ZipExtractor extracts standard ZIP containers.
type ZipExtractor struct{}

// Extract implements Extractor.
func (ZipExtractor) Extract(ctx context.Context, archivePath, dest string) (Stats, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return Stats{}, fmt.Errorf("open zip archive: %w", err)
	}
	defer zr.Close()

	entries := make([]entry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, entry{
			name: f.Name,
			info: f.FileInfo(),
			open: func() (io.ReadCloser, error) { return f.Open() },
		})
	}
	return extractEntries(ctx, dest, entries)
}

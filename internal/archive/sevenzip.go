package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

// SevenZipExtractor extracts 7z containers.
type SevenZipExtractor struct{}

// Extract implements Extractor. Members are visited in archive order, which
// keeps decompression of solid blocks sequential.
func (SevenZipExtractor) Extract(ctx context.Context, archivePath, dest string) (Stats, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return Stats{}, fmt.Errorf("open 7z archive: %w", err)
	}
	defer r.Close()

	entries := make([]entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, entry{
			name: f.Name,
			info: f.FileInfo(),
			open: func() (io.ReadCloser, error) { return f.Open() },
		})
	}
	return extractEntries(ctx, dest, entries)
}

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath marks an entry whose name would escape the extraction root.
var ErrUnsafePath = errors.New("archive entry escapes extraction root")

// Stats summarizes one extraction.
type Stats struct {
	Files   int
	Dirs    int
	Skipped int
	Bytes   int64
}

// Extractor fully extracts an archive into dest, which must already exist.
type Extractor interface {
	Extract(ctx context.Context, archivePath, dest string) (Stats, error)
}

// Registry maps container kinds to the extractor handling them.
type Registry map[Kind]Extractor

// DefaultRegistry returns the ZIP and 7z extractors.
func DefaultRegistry() Registry {
	return Registry{
		KindZip:      ZipExtractor{},
		KindSevenZip: SevenZipExtractor{},
	}
}

// For returns the extractor for kind.
func (r Registry) For(kind Kind) (Extractor, error) {
	if ex, ok := r[kind]; ok && ex != nil {
		return ex, nil
	}
	return nil, fmt.Errorf("no extractor registered for %s archives", kind)
}

// entry is the codec-neutral view of one archive member.
type entry struct {
	name string
	info fs.FileInfo
	open func() (io.ReadCloser, error)
}

// extractEntries materializes entries under dest in order.
func extractEntries(ctx context.Context, dest string, entries []entry) (Stats, error) {
	var stats Stats
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		target, err := entryTarget(dest, e.name)
		if err != nil {
			return stats, err
		}
		if target == "" {
			continue
		}
		mode := e.info.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return stats, fmt.Errorf("create directory %s: %w", e.name, err)
			}
			stats.Dirs++
		case !mode.IsRegular():
			stats.Skipped++
		default:
			n, err := writeEntry(target, e.open)
			if err != nil {
				return stats, fmt.Errorf("extract %s: %w", e.name, err)
			}
			stats.Files++
			stats.Bytes += n
		}
	}
	return stats, nil
}

// entryTarget resolves an archive member name against root. It returns "" for
// names that denote the root itself.
func entryTarget(root, name string) (string, error) {
	normalized := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(normalized, "/") || (len(normalized) >= 2 && normalized[1] == ':') {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	cleaned := filepath.Clean(filepath.FromSlash(normalized))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	if cleaned == "." {
		return "", nil
	}
	return filepath.Join(root, cleaned), nil
}

func writeEntry(target string, open func() (io.ReadCloser, error)) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	rc, err := open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, rc)
	if err != nil {
		_ = out.Close()
		return n, err
	}
	return n, out.Close()
}

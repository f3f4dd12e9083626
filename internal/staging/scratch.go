package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mpkconv/internal/fileutil"
	"mpkconv/internal/logging"
)

// maxCopyAttempts bounds the search for a free sibling name for the renamed copy.
const maxCopyAttempts = 16

// Scratch tracks the scratch directory and renamed archive copy for one archive.
type Scratch struct {
	Dir      string
	Original string

	source   string
	logger   *slog.Logger
	released bool
}

// CleanupResult reports what Release removed and what it failed to remove.
type CleanupResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// New returns a Scratch for archivePath rooted at dir. Nothing is touched on disk
// until Prepare is called.
func New(dir, archivePath string, logger *slog.Logger) *Scratch {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scratch{
		Dir:      strings.TrimSpace(dir),
		Original: archivePath,
		source:   archivePath,
		logger:   logger,
	}
}

// Prepare removes any previous content of the scratch directory and recreates it
// empty.
func (s *Scratch) Prepare() error {
	if s.Dir == "" {
		return errors.New("scratch directory not configured")
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		s.logger.Debug("stale scratch directory not removed",
			logging.String("path", s.Dir),
			logging.Error(err),
		)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	return nil
}

// Source returns the path extraction should read: the original archive or the
// renamed copy made by StageSource.
func (s *Scratch) Source() string {
	return s.source
}

// StageSource makes the archive available under ext. When the original already
// carries ext it is used as is. Otherwise the archive is copied beside the
// original; an existing sibling file is never overwritten, a unique name is
// chosen instead.
func (s *Scratch) StageSource(ext string) (string, error) {
	if ext == "" || strings.EqualFold(filepath.Ext(s.Original), ext) {
		s.source = s.Original
		return s.source, nil
	}
	target, err := copyTarget(s.Original, ext)
	if err != nil {
		return "", err
	}
	if err := fileutil.CopyFile(s.Original, target); err != nil {
		return "", fmt.Errorf("copy archive to %s: %w", filepath.Base(target), err)
	}
	s.source = target
	s.logger.Debug("archive staged under codec extension",
		logging.String("source", s.Original),
		logging.String("copy", target),
	)
	return target, nil
}

func copyTarget(original, ext string) (string, error) {
	dir := filepath.Dir(original)
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	candidate := filepath.Join(dir, stem+ext)
	for attempt := 0; attempt < maxCopyAttempts; attempt++ {
		if !fileutil.Exists(candidate) {
			return candidate, nil
		}
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		candidate = filepath.Join(dir, stem+"."+suffix+ext)
	}
	return "", fmt.Errorf("no free name for a %s copy of %s", ext, filepath.Base(original))
}

// Release removes the renamed copy, when one was made, and the scratch directory.
// It runs at most once; later calls return an empty result.
func (s *Scratch) Release() CleanupResult {
	result := CleanupResult{}
	if s == nil || s.released {
		return result
	}
	s.released = true

	if s.source != "" && s.source != s.Original {
		s.remove(&result, s.source, os.Remove)
	}
	s.source = s.Original
	if s.Dir != "" {
		s.remove(&result, s.Dir, os.RemoveAll)
	}
	return result
}

func (s *Scratch) remove(result *CleanupResult, path string, fn func(string) error) {
	err := fn(path)
	if err == nil || os.IsNotExist(err) {
		if err == nil {
			result.Removed = append(result.Removed, path)
		}
		return
	}
	result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
	s.logger.Debug("cleanup failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldEventType, "scratch_cleanup_failed"),
		logging.String(logging.FieldImpact, "disk space not reclaimed"),
	)
}

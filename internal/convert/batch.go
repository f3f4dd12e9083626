package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mpkconv/internal/config"
	"mpkconv/internal/logging"
	"mpkconv/internal/services"
	"mpkconv/internal/staging"
)

// Batch converts a set of archives sequentially.
type Batch struct {
	cfg       *config.Config
	converter *Converter
	logger    *slog.Logger
}

// NewBatch wires a batch around converter. A nil converter is built from cfg.
func NewBatch(cfg *config.Config, converter *Converter, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = logging.NewNop()
	}
	if converter == nil {
		converter = New(cfg, logger)
	}
	return &Batch{cfg: cfg, converter: converter, logger: logger}
}

// ListArchives returns the archives in the configured input directory, sorted
// by name. Only regular files with a configured extension qualify.
func ListArchives(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.Paths.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	var archives []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !cfg.IsArchive(entry.Name()) {
			continue
		}
		archives = append(archives, filepath.Join(cfg.Paths.InputDir, entry.Name()))
	}
	return archives, nil
}

// OutputDirFor returns the output directory of one archive: the output root
// joined with the archive name minus its extension.
func OutputDirFor(cfg *config.Config, archivePath string) string {
	name := filepath.Base(archivePath)
	return filepath.Join(cfg.Paths.OutputDir, strings.TrimSuffix(name, filepath.Ext(name)))
}

// Run converts every archive in the input directory.
func (b *Batch) Run(ctx context.Context) (BatchReport, error) {
	info, err := os.Stat(b.cfg.Paths.InputDir)
	if err != nil {
		return BatchReport{}, fmt.Errorf("input directory %s: %w", b.cfg.Paths.InputDir, err)
	}
	if !info.IsDir() {
		return BatchReport{}, fmt.Errorf("input directory %s is not a directory", b.cfg.Paths.InputDir)
	}
	archives, err := ListArchives(b.cfg)
	if err != nil {
		return BatchReport{}, err
	}
	return b.RunArchives(ctx, archives)
}

// RunArchives converts the given archives in order. Archive failures are
// recorded in the report; the error is reserved for failures that stop the
// batch itself, including cancellation between archives.
func (b *Batch) RunArchives(ctx context.Context, archives []string) (BatchReport, error) {
	start := time.Now()
	report := BatchReport{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, b.logger)

	if err := b.cfg.EnsureDirectories(); err != nil {
		return report, err
	}
	lock, err := staging.AcquireLock(b.cfg.ScratchLockPath())
	if err != nil {
		return report, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Debug("scratch lock release failed", logging.Error(err))
		}
	}()

	if len(archives) == 0 {
		logger.Info("no archives found",
			logging.String(logging.FieldEventType, "batch_empty"),
			logging.String("input_dir", b.cfg.Paths.InputDir),
		)
		return report, nil
	}

	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("archives", len(archives)),
		logging.String("output_dir", b.cfg.Paths.OutputDir),
	)
	for _, path := range archives {
		if err := ctx.Err(); err != nil {
			logging.WarnWithContext(logger, "batch interrupted", "batch_interrupted",
				logging.Int("remaining", len(archives)-len(report.Archives)),
				logging.String(logging.FieldImpact, "remaining archives not converted"),
				logging.String(logging.FieldErrorHint, "rerun the batch to convert the remaining archives"),
			)
			report.Duration = time.Since(start)
			return report, fmt.Errorf("batch interrupted: %w", err)
		}
		report.Archives = append(report.Archives, b.converter.ConvertArchive(ctx, path, OutputDirFor(b.cfg, path)))
	}
	report.Duration = time.Since(start)

	converted, failedDatasets, failedArchives := report.Totals()
	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("archives", len(report.Archives)),
		logging.Int("failed_archives", failedArchives),
		logging.Int("converted", converted),
		logging.Int("failed_datasets", failedDatasets),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

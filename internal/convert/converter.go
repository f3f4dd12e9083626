package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"mpkconv/internal/archive"
	"mpkconv/internal/config"
	"mpkconv/internal/interchange"
	"mpkconv/internal/locator"
	"mpkconv/internal/logging"
	"mpkconv/internal/services"
	"mpkconv/internal/shapefile"
	"mpkconv/internal/staging"
)

const (
	stageDetect  = "detect"
	stageExtract = "extract"
	stageLocate  = "locate"
	stageConvert = "convert"
)

// LoadFunc loads one shapefile dataset.
type LoadFunc func(path string) (*shapefile.Dataset, error)

// WriteFunc writes one feature collection to path.
type WriteFunc func(path string, fc *geojson.FeatureCollection, opts interchange.Options) error

// Converter runs the per-archive pipeline.
type Converter struct {
	cfg        *config.Config
	logger     *slog.Logger
	extractors archive.Registry
	load       LoadFunc
	write      WriteFunc
}

// Option customizes a Converter.
type Option func(*Converter)

// WithExtractors replaces the archive codecs.
func WithExtractors(reg archive.Registry) Option {
	return func(c *Converter) {
		if reg != nil {
			c.extractors = reg
		}
	}
}

// WithLoader replaces the shapefile loader.
func WithLoader(fn LoadFunc) Option {
	return func(c *Converter) {
		if fn != nil {
			c.load = fn
		}
	}
}

// WithWriter replaces the interchange writer.
func WithWriter(fn WriteFunc) Option {
	return func(c *Converter) {
		if fn != nil {
			c.write = fn
		}
	}
}

// New builds a Converter for cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Converter {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Converter{
		cfg:        cfg,
		logger:     logger,
		extractors: archive.DefaultRegistry(),
		load:       shapefile.Load,
		write:      interchange.Write,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertArchive converts one archive into outputDir. The returned report
// carries an archive-level error when the archive could not be processed at
// all; dataset failures are recorded per result.
func (c *Converter) ConvertArchive(ctx context.Context, archivePath, outputDir string) (report ArchiveReport) {
	start := time.Now()
	report = ArchiveReport{Archive: archivePath, OutputDir: outputDir}

	ctx = services.WithArchive(ctx, filepath.Base(archivePath))
	logger := logging.WithContext(ctx, c.logger)

	defer func() {
		if r := recover(); r != nil {
			report.Err = services.Wrap(nil, "", "convert archive", fmt.Sprintf("panic: %v", r), nil)
		}
		report.Duration = time.Since(start)
		c.logOutcome(logger, report)
	}()

	kind, err := detect(archivePath)
	report.Kind = kind
	if err != nil {
		report.Err = err
		return report
	}

	scratch := staging.New(c.cfg.Paths.ScratchDir, archivePath, logger)
	defer scratch.Release()

	match, err := c.unpack(ctx, logger, scratch, kind)
	if err != nil {
		report.Err = err
		return report
	}
	report.DatasetDir = match.Path
	report.Fallback = match.Fallback

	results, err := c.convertDatasets(services.WithStage(ctx, stageConvert), match.Path, outputDir)
	report.Results = results
	if err != nil {
		report.Err = err
	}
	return report
}

func detect(archivePath string) (archive.Kind, error) {
	kind, err := archive.Detect(archivePath)
	if err != nil {
		return kind, services.Wrap(nil, stageDetect, "read signature", "", err)
	}
	if kind == archive.KindUnknown {
		return kind, services.Wrap(services.ErrUnrecognizedFormat, stageDetect, "classify", "neither ZIP nor 7z signature", nil)
	}
	return kind, nil
}

// unpack extracts the archive into scratch and finds its dataset directory.
func (c *Converter) unpack(ctx context.Context, logger *slog.Logger, scratch *staging.Scratch, kind archive.Kind) (locator.Match, error) {
	if err := c.extract(services.WithStage(ctx, stageExtract), scratch, kind); err != nil {
		return locator.Match{}, err
	}

	match, err := locator.Locate(scratch.Dir, c.cfg.DatasetPathParts(), c.cfg.Layout.DatasetDirName)
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			logging.WarnWithContext(logger, "dataset directory not found", "dataset_dir_missing",
				logging.String(logging.FieldStage, stageLocate),
				logging.String("expected", c.cfg.Layout.DatasetPath),
				logging.String("extracted_tree", "\n"+strings.Join(staging.Tree(scratch.Dir), "\n")),
				logging.String(logging.FieldErrorHint, "check the archive layout"),
				logging.String(logging.FieldImpact, "archive skipped"),
			)
			return locator.Match{}, services.Wrap(services.ErrDatasetDirMissing, stageLocate, "find dataset directory",
				fmt.Sprintf("no %q directory in archive", c.cfg.Layout.DatasetDirName), nil)
		}
		return locator.Match{}, services.Wrap(services.ErrDatasetDirMissing, stageLocate, "find dataset directory", "", err)
	}
	if match.Fallback {
		logger.Info("dataset directory found outside the standard path",
			logging.String(logging.FieldEventType, "dataset_dir_fallback"),
			logging.String("path", relativeTo(scratch.Dir, match.Path)),
		)
	}
	return match, nil
}

func (c *Converter) extract(ctx context.Context, scratch *staging.Scratch, kind archive.Kind) error {
	logger := logging.WithContext(ctx, c.logger)

	extractor, err := c.extractors.For(kind)
	if err != nil {
		return services.Wrap(services.ErrExtraction, stageExtract, "select codec", "", err)
	}
	if err := scratch.Prepare(); err != nil {
		return services.Wrap(services.ErrExtraction, stageExtract, "prepare scratch", "", err)
	}
	source, err := scratch.StageSource(kind.Extension())
	if err != nil {
		return services.Wrap(services.ErrExtraction, stageExtract, "stage archive copy", "", err)
	}

	logger.Info("extracting archive",
		logging.String(logging.FieldEventType, "extract_start"),
		logging.String("format", kind.String()),
	)
	stats, err := extractor.Extract(ctx, source, scratch.Dir)
	if err != nil {
		return services.Wrap(services.ErrExtraction, stageExtract, "extract", kind.String()+" archive", err)
	}
	logger.Debug("archive extracted",
		logging.String(logging.FieldEventType, "extract_complete"),
		logging.Int("files", stats.Files),
		logging.Int("dirs", stats.Dirs),
		logging.Int("skipped", stats.Skipped),
		logging.Int64("bytes", stats.Bytes),
	)
	return nil
}

func (c *Converter) logOutcome(logger *slog.Logger, report ArchiveReport) {
	if report.Err != nil {
		logging.ErrorWithContext(logger, "archive failed", "archive_failed",
			logging.String(logging.FieldFailure, services.Classify(report.Err)),
			logging.Duration("duration", report.Duration),
			logging.Error(report.Err),
		)
		return
	}
	logger.Info("archive converted",
		logging.String(logging.FieldEventType, "archive_complete"),
		logging.Int("converted", report.Converted()),
		logging.Int("failed", report.Failed()),
		logging.String("output_dir", report.OutputDir),
		logging.Duration("duration", report.Duration),
	)
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

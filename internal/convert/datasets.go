package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mpkconv/internal/crs"
	"mpkconv/internal/interchange"
	"mpkconv/internal/logging"
	"mpkconv/internal/services"
	"mpkconv/internal/shapefile"
)

// ListDatasets returns the dataset files directly inside dir, in name order.
// Only non-directory entries ending in suffix are considered; the match is
// case-sensitive.
func ListDatasets(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

func (c *Converter) convertDatasets(ctx context.Context, datasetDir, outputDir string) ([]DatasetResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(nil, stageConvert, "create output directory", "", err)
	}
	sources, err := ListDatasets(datasetDir, c.cfg.Layout.DatasetSuffix)
	if err != nil {
		return nil, services.Wrap(services.ErrDatasetDirMissing, stageConvert, "list datasets", "", err)
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Info("converting datasets",
		logging.String(logging.FieldEventType, "convert_start"),
		logging.Int("datasets", len(sources)),
		logging.String("output_dir", outputDir),
	)

	results := make([]DatasetResult, 0, len(sources))
	for _, source := range sources {
		results = append(results, c.convertDataset(ctx, source, outputDir))
	}
	return results, nil
}

// convertDataset converts one shapefile. Panics raised by codecs are turned into
// a dataset failure.
func (c *Converter) convertDataset(ctx context.Context, source, outputDir string) (result DatasetResult) {
	name := filepath.Base(source)
	ctx = services.WithDataset(ctx, name)
	logger := logging.WithContext(ctx, c.logger)

	base := strings.TrimSuffix(name, c.cfg.Layout.DatasetSuffix)
	result = DatasetResult{
		Source: source,
		Output: filepath.Join(outputDir, base+c.cfg.Output.Extension),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Err = services.Wrap(services.ErrDatasetConversion, stageConvert, name, fmt.Sprintf("panic: %v", r), nil)
		}
		if result.Err != nil {
			logging.WarnWithContext(logger, "dataset conversion failed", "dataset_failed",
				logging.Error(result.Err),
				logging.String(logging.FieldErrorHint, "inspect the shapefile and its .prj"),
				logging.String(logging.FieldImpact, "dataset skipped"),
			)
			return
		}
		logger.Info("dataset converted",
			logging.String(logging.FieldEventType, "dataset_converted"),
			logging.String("output", filepath.Base(result.Output)),
			logging.Int("features", result.Features),
			logging.String("source_crs", result.CRS),
		)
	}()

	ds, err := c.load(source)
	if err != nil {
		result.Err = services.Wrap(services.ErrDatasetConversion, stageConvert, name, "load", err)
		return result
	}
	result.Features = len(ds.Features.Features)
	result.CRS = "none"
	if ds.HasCRS {
		result.CRS = ds.CRS.String()
		if err := reproject(ds); err != nil {
			result.Err = services.Wrap(services.ErrDatasetConversion, stageConvert, name, "reproject", err)
			return result
		}
	}

	opts := interchange.Options{
		Name:       base,
		FieldOrder: ds.Fields,
		Indent:     c.cfg.Output.Indent,
	}
	if err := c.write(result.Output, ds.Features, opts); err != nil {
		result.Err = services.Wrap(services.ErrDatasetConversion, stageConvert, name, "write", err)
		return result
	}
	return result
}

// reproject rewrites every feature geometry of ds into WGS 84. Datasets
// already in WGS 84 are left untouched.
func reproject(ds *shapefile.Dataset) error {
	if ds.CRS.IsWGS84() {
		return nil
	}
	if _, err := crs.ToWGS84(ds.CRS); err != nil {
		return err
	}
	for i, f := range ds.Features.Features {
		g, err := crs.Reproject(f.Geometry, ds.CRS)
		if err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
		f.Geometry = g
	}
	ds.CRS = crs.WGS84
	return nil
}

package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"mpkconv/internal/archive"
	"mpkconv/internal/logging"
	"mpkconv/internal/services"
	"mpkconv/internal/staging"
)

// DatasetInfo describes one shapefile found by Inspect.
type DatasetInfo struct {
	Name     string
	Features int
	CRS      string
	Encoding string
	Fields   []string
	Err      error
}

// Inspection is the outcome of Inspect.
type Inspection struct {
	Archive    string
	Kind       archive.Kind
	DatasetDir string
	Fallback   bool
	Tree       []string
	Bytes      int64
	Datasets   []DatasetInfo
	Err        error
	Duration   time.Duration
}

// Inspect extracts archivePath into scratch, locates its dataset directory and
// loads every dataset without writing output. Scratch is released before
// Inspect returns.
func (c *Converter) Inspect(ctx context.Context, archivePath string) (result Inspection) {
	start := time.Now()
	result = Inspection{Archive: archivePath}

	ctx = services.WithArchive(ctx, filepath.Base(archivePath))
	logger := logging.WithContext(ctx, c.logger)

	defer func() {
		if r := recover(); r != nil {
			result.Err = services.Wrap(nil, "", "inspect archive", fmt.Sprintf("panic: %v", r), nil)
		}
		result.Duration = time.Since(start)
	}()

	kind, err := detect(archivePath)
	result.Kind = kind
	if err != nil {
		result.Err = err
		return result
	}

	scratch := staging.New(c.cfg.Paths.ScratchDir, archivePath, logger)
	defer scratch.Release()

	match, err := c.unpack(ctx, logger, scratch, kind)
	result.Tree = staging.Tree(scratch.Dir)
	if size, sizeErr := staging.DirSize(scratch.Dir); sizeErr == nil {
		result.Bytes = size
	}
	if err != nil {
		result.Err = err
		return result
	}
	result.DatasetDir = relativeTo(scratch.Dir, match.Path)
	result.Fallback = match.Fallback

	sources, err := ListDatasets(match.Path, c.cfg.Layout.DatasetSuffix)
	if err != nil {
		result.Err = services.Wrap(services.ErrDatasetDirMissing, stageConvert, "list datasets", "", err)
		return result
	}
	for _, source := range sources {
		result.Datasets = append(result.Datasets, c.inspectDataset(source))
	}
	return result
}

// inspectDataset loads one shapefile. A panic in the loader fails only this
// dataset.
func (c *Converter) inspectDataset(source string) (info DatasetInfo) {
	name := filepath.Base(source)
	info = DatasetInfo{Name: name}
	defer func() {
		if r := recover(); r != nil {
			info = DatasetInfo{
				Name: name,
				Err:  services.Wrap(services.ErrDatasetConversion, stageConvert, name, fmt.Sprintf("panic: %v", r), nil),
			}
		}
	}()

	ds, err := c.load(source)
	if err != nil {
		info.Err = err
		return info
	}
	if ds.HasCRS {
		info.CRS = ds.CRS.String()
	}
	if ds.Features != nil {
		info.Features = len(ds.Features.Features)
	}
	info.Encoding = ds.Encoding
	info.Fields = ds.Fields
	return info
}

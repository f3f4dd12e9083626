package convert

import (
	"time"

	"mpkconv/internal/archive"
	"mpkconv/internal/services"
)

// DatasetResult is the outcome of converting one shapefile.
type DatasetResult struct {
	Source   string
	Output   string
	Features int
	CRS      string
	Err      error
}

// ArchiveReport is the outcome of converting one archive.
type ArchiveReport struct {
	Archive    string
	Kind       archive.Kind
	OutputDir  string
	DatasetDir string
	Fallback   bool
	Results    []DatasetResult
	Err        error
	Duration   time.Duration
}

// Converted counts datasets written successfully.
func (r ArchiveReport) Converted() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts datasets that could not be converted.
func (r ArchiveReport) Failed() int {
	return len(r.Results) - r.Converted()
}

// Status is a short label for summaries: the classified archive error, or
// "partial" when only some datasets failed.
func (r ArchiveReport) Status() string {
	if r.Err != nil {
		return services.Classify(r.Err)
	}
	if r.Failed() > 0 {
		if r.Converted() == 0 {
			return "dataset_failed"
		}
		return "partial"
	}
	return "ok"
}

// BatchReport collects archive reports in processing order.
type BatchReport struct {
	RunID    string
	Archives []ArchiveReport
	Duration time.Duration
}

// Totals sums converted and failed datasets and failed archives.
func (b BatchReport) Totals() (converted, failedDatasets, failedArchives int) {
	for _, r := range b.Archives {
		converted += r.Converted()
		failedDatasets += r.Failed()
		if r.Err != nil {
			failedArchives++
		}
	}
	return converted, failedDatasets, failedArchives
}

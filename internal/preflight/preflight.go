package preflight

import (
	"path/filepath"

	"mpkconv/internal/config"
)

// InputCheck names the input directory check, which explicit archive lists
// do not depend on.
const InputCheck = "Input directory"

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess(InputCheck, cfg.Paths.InputDir, accessRead),
		CheckWritableLocation("Output directory", cfg.Paths.OutputDir),
		CheckWritableLocation("Scratch parent", filepath.Dir(cfg.Paths.ScratchDir)),
	}
	if cfg.Paths.MinFreeMiB > 0 {
		results = append(results, CheckFreeSpace("Scratch free space", filepath.Dir(cfg.Paths.ScratchDir), uint64(cfg.Paths.MinFreeMiB)))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckWritableLocation("Log directory", cfg.Logging.Dir))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

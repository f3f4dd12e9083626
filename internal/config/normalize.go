package config

import (
	"fmt"
	"os"
	"strings"
)

// Normalize expands paths and canonicalizes enumerated values in place. Load
// calls it; callers that mutate a loaded config (CLI flag overrides) call it
// again before Validate.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArchive()
	c.normalizeLayout()
	c.normalizeOutput()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(strings.TrimSpace(c.Paths.InputDir)); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(strings.TrimSpace(c.Paths.ScratchDir)); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.MinFreeMiB < 0 {
		c.Paths.MinFreeMiB = 0
	}
	return nil
}

func (c *Config) normalizeArchive() {
	exts := make([]string, 0, len(c.Archive.Extensions))
	seen := make(map[string]struct{}, len(c.Archive.Extensions))
	for _, ext := range c.Archive.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Archive.Extensions = exts
}

func (c *Config) normalizeLayout() {
	c.Layout.DatasetPath = strings.Trim(strings.ReplaceAll(strings.TrimSpace(c.Layout.DatasetPath), "\\", "/"), "/")
	c.Layout.DatasetDirName = strings.TrimSpace(c.Layout.DatasetDirName)
	// The suffix match is case-sensitive, so only surrounding whitespace is trimmed.
	c.Layout.DatasetSuffix = strings.TrimSpace(c.Layout.DatasetSuffix)
}

func (c *Config) normalizeOutput() {
	ext := strings.TrimSpace(c.Output.Extension)
	if ext == "" {
		ext = defaultOutputExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Output.Extension = ext
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if value, ok := os.LookupEnv("MPKCONV_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = dir
	}
	return nil
}

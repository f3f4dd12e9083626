package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mpkconv/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validatePaths,
		c.validateArchive,
		c.validateLayout,
		c.validateOutput,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", services.ErrConfiguration, err)
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.InputDir == "" {
		return errors.New("paths.input_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.ScratchDir == "" {
		return errors.New("paths.scratch_dir must be set")
	}
	// The scratch directory is removed recursively before and after every
	// archive, so it must never overlap the directories holding real data.
	for _, guarded := range []struct {
		key  string
		path string
	}{
		{"paths.input_dir", c.Paths.InputDir},
		{"paths.output_dir", c.Paths.OutputDir},
	} {
		if within(guarded.path, c.Paths.ScratchDir) {
			return fmt.Errorf("paths.scratch_dir %q must not contain or equal %s %q", c.Paths.ScratchDir, guarded.key, guarded.path)
		}
	}
	if within(c.Paths.ScratchDir, c.Paths.OutputDir) {
		return fmt.Errorf("paths.scratch_dir %q must not live inside paths.output_dir", c.Paths.ScratchDir)
	}
	return nil
}

func (c *Config) validateArchive() error {
	if len(c.Archive.Extensions) == 0 {
		return errors.New("archive.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateLayout() error {
	if c.Layout.DatasetPath == "" {
		return errors.New("layout.dataset_path must be set")
	}
	if filepath.IsAbs(c.Layout.DatasetPath) {
		return errors.New("layout.dataset_path must be relative to the scratch directory")
	}
	for _, part := range c.DatasetPathParts() {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("layout.dataset_path %q contains an invalid component", c.Layout.DatasetPath)
		}
	}
	name := c.Layout.DatasetDirName
	if name == "" {
		return errors.New("layout.dataset_dir_name must be set")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("layout.dataset_dir_name %q must be a single directory name", name)
	}
	if c.Layout.DatasetSuffix == "" {
		return errors.New("layout.dataset_suffix must be set")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.ContainsAny(c.Output.Extension, `/\`) {
		return fmt.Errorf("output.extension %q must not contain path separators", c.Output.Extension)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// within reports whether path equals root or lives underneath it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

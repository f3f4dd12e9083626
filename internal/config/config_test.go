package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mpkconv/internal/config"
	"mpkconv/internal/services"
)

func TestLoadDefaultsMatchHistoricalConstants(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	workDir := t.TempDir()
	t.Chdir(workDir)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	for name, tc := range map[string]struct{ got, want string }{
		"input":   {cfg.Paths.InputDir, "mpk_dir"},
		"output":  {cfg.Paths.OutputDir, "geojson_dir"},
		"scratch": {cfg.Paths.ScratchDir, "temp_mpk_extract"},
	} {
		want, _ := filepath.Abs(tc.want)
		if tc.got != want {
			t.Fatalf("unexpected %s dir: got %q want %q", name, tc.got, want)
		}
	}
	if cfg.Layout.DatasetPath != "commondata/shp4ia" {
		t.Fatalf("unexpected dataset path %q", cfg.Layout.DatasetPath)
	}
	if cfg.Layout.DatasetDirName != "shp4ia" {
		t.Fatalf("unexpected dataset dir name %q", cfg.Layout.DatasetDirName)
	}
	if cfg.Layout.DatasetSuffix != ".shp" {
		t.Fatalf("unexpected dataset suffix %q", cfg.Layout.DatasetSuffix)
	}
	if cfg.Output.Extension != ".json" {
		t.Fatalf("unexpected output extension %q", cfg.Output.Extension)
	}
	if !cfg.IsArchive("city.MPK") || cfg.IsArchive("city.zip") {
		t.Fatal("expected case-insensitive .mpk archive matching only")
	}
	if got := cfg.ScratchLockPath(); got != cfg.Paths.ScratchDir+".lock" {
		t.Fatalf("unexpected lock path %q", got)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mpkconv.toml")

	type payload struct {
		Paths struct {
			InputDir   string `toml:"input_dir"`
			OutputDir  string `toml:"output_dir"`
			ScratchDir string `toml:"scratch_dir"`
		} `toml:"paths"`
		Archive struct {
			Extensions []string `toml:"extensions"`
		} `toml:"archive"`
		Layout struct {
			DatasetPath string `toml:"dataset_path"`
		} `toml:"layout"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.InputDir = filepath.Join(tempDir, "in")
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.Paths.ScratchDir = filepath.Join(tempDir, "scratch")
	custom.Archive.Extensions = []string{"MPK", ".mpk", "zip"}
	custom.Layout.DatasetPath = "/data/shapes/"
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.InputDir != custom.Paths.InputDir {
		t.Fatalf("unexpected input dir %q", cfg.Paths.InputDir)
	}
	if len(cfg.Archive.Extensions) != 2 || cfg.Archive.Extensions[0] != ".mpk" || cfg.Archive.Extensions[1] != ".zip" {
		t.Fatalf("unexpected normalized extensions %v", cfg.Archive.Extensions)
	}
	if cfg.Layout.DatasetPath != "data/shapes" {
		t.Fatalf("unexpected dataset path %q", cfg.Layout.DatasetPath)
	}
	if parts := cfg.DatasetPathParts(); len(parts) != 2 || parts[1] != "shapes" {
		t.Fatalf("unexpected dataset path parts %v", parts)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format %q", cfg.Logging.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.Layout.DatasetDirName != "shp4ia" {
		t.Fatalf("expected default dataset dir name, got %q", cfg.Layout.DatasetDirName)
	}
}

func TestLogLevelEnvOverride(t *testing.T) {
	t.Setenv("MPKCONV_LOG_LEVEL", "DEBUG")
	cfg := config.Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected env level override, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsUnsafeOrInvalidValues(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"scratch equals input", func(c *config.Config) { c.Paths.ScratchDir = c.Paths.InputDir }},
		{"scratch contains output", func(c *config.Config) {
			c.Paths.ScratchDir = base
			c.Paths.OutputDir = filepath.Join(base, "out")
		}},
		{"scratch inside output", func(c *config.Config) { c.Paths.ScratchDir = filepath.Join(c.Paths.OutputDir, "tmp") }},
		{"no extensions", func(c *config.Config) { c.Archive.Extensions = nil }},
		{"parent dataset path", func(c *config.Config) { c.Layout.DatasetPath = "commondata/../../etc" }},
		{"nested dir name", func(c *config.Config) { c.Layout.DatasetDirName = "a/b" }},
		{"empty suffix", func(c *config.Config) { c.Layout.DatasetSuffix = " " }},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.InputDir = filepath.Join(base, "in")
			cfg.Paths.OutputDir = filepath.Join(base, "geojson")
			cfg.Paths.ScratchDir = filepath.Join(base, "scratch")
			tt.mutate(&cfg)
			if err := cfg.Normalize(); err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration marker, got %v", err)
			}
		})
	}
}

func TestEnsureDirectoriesCreatesOutputAndScratchParent(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(base, "in")
	cfg.Paths.OutputDir = filepath.Join(base, "nested", "out")
	cfg.Paths.ScratchDir = filepath.Join(base, "work", "scratch")
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, filepath.Join(base, "work")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
	if _, err := os.Stat(cfg.Paths.InputDir); !os.IsNotExist(err) {
		t.Fatalf("input dir must not be created, stat err=%v", err)
	}
	if _, err := os.Stat(cfg.Paths.ScratchDir); !os.IsNotExist(err) {
		t.Fatalf("scratch dir must not be created, stat err=%v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "mpkconv.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Layout.DatasetDirName != "shp4ia" {
		t.Fatalf("unexpected sample dataset dir name %q", cfg.Layout.DatasetDirName)
	}
}

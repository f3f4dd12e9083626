package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mpkconv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The input directory is created; output and scratch are left for the code
// under test to create.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "mpk_dir")
	cfgVal.Paths.OutputDir = filepath.Join(base, "geojson_dir")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "work", "temp_mpk_extract")
	cfgVal.Paths.MinFreeMiB = 0
	cfgVal.Logging.Dir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.Paths.InputDir, 0o755); err != nil {
		t.Fatalf("mkdir input dir: %v", err)
	}
	return builder.cfg
}

// WithLayout overrides the dataset discovery settings.
func WithLayout(datasetPath, dirName, suffix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Layout.DatasetPath = datasetPath
		b.cfg.Layout.DatasetDirName = dirName
		b.cfg.Layout.DatasetSuffix = suffix
	}
}

// WithArchiveExtensions overrides the archive extensions picked up by batches.
func WithArchiveExtensions(exts ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.Extensions = exts
	}
}

// WithLogDir enables the log file under a temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}

// WriteConfigFile encodes cfg as TOML beside its directories and returns the
// file path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "mpkconv.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

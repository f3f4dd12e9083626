package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"

	"mpkconv/internal/config"
	"mpkconv/internal/testsupport"
)

const wgs84PRJ = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AUTHORITY["EPSG","4326"]]`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Logging.Level = "error"
	return &cliTestEnv{cfg: cfg, configPath: testsupport.WriteConfigFile(t, cfg)}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeParkArchive builds a ZIP map package with one WGS 84 point dataset
// under the standard dataset path.
func writeParkArchive(t *testing.T, dest string) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "tree")
	testsupport.WriteShapefile(t, filepath.Join(src, "commondata", "shp4ia", "parks.shp"), testsupport.Shapefile{
		Type:   shp.POINT,
		Fields: []testsupport.Field{testsupport.StringField("NAME", 16)},
		Records: []testsupport.Record{
			{Shape: testsupport.Point(2.3376, 48.8462), Values: []any{"Luxembourg"}},
			{Shape: testsupport.Point(2.3266, 48.8636), Values: []any{"Tuileries"}},
		},
		PRJ: wgs84PRJ,
	})
	testsupport.ZipTree(t, src, dest)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

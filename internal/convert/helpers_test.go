package convert

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"mpkconv/internal/archive"
	"mpkconv/internal/config"
	"mpkconv/internal/testsupport"
)

const (
	mercatorPRJ = `PROJCS["WGS 84 / Pseudo-Mercator",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],AUTHORITY["EPSG","4326"]],PROJECTION["Mercator_1SP"],UNIT["metre",1],AUTHORITY["EPSG","3857"]]`
	wgs84PRJ    = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AUTHORITY["EPSG","4326"]]`
	unknownPRJ  = `PROJCS["Local_Site_Grid",PROJECTION["Transverse_Mercator"]]`
)

// roadsLonLat is the WGS 84 geometry of the roads fixture.
var roadsLonLat = [][2]float64{{2.3522, 48.8566}, {2.2945, 48.8584}, {2.3364, 48.8606}}

func writeRoads(t *testing.T, dir string) {
	t.Helper()
	line := make([][2]float64, len(roadsLonLat))
	for i, p := range roadsLonLat {
		merc := project.WGS84.ToMercator(orb.Point{p[0], p[1]})
		line[i] = [2]float64{merc[0], merc[1]}
	}
	testsupport.WriteShapefile(t, filepath.Join(dir, "roads.shp"), testsupport.Shapefile{
		Type:    shp.POLYLINE,
		Fields:  []testsupport.Field{testsupport.StringField("NAME", 24)},
		Records: []testsupport.Record{{Shape: testsupport.PolyLine(line), Values: []any{"Rivoli"}}},
		PRJ:     mercatorPRJ,
	})
}

func writeParcels(t *testing.T, dir, prj string) {
	t.Helper()
	testsupport.WriteShapefile(t, filepath.Join(dir, "parcels.shp"), testsupport.Shapefile{
		Type:    shp.POLYGON,
		Fields:  []testsupport.Field{testsupport.NumberField("ID", 6, 0)},
		Records: []testsupport.Record{{Shape: testsupport.Polygon(testsupport.SquareCW(2.3, 48.8, 0.01)), Values: []any{7}}},
		PRJ:     prj,
	})
}

func writePOI(t *testing.T, dir, name string) {
	t.Helper()
	testsupport.WriteShapefile(t, filepath.Join(dir, name), testsupport.Shapefile{
		Type:    shp.POINT,
		Fields:  []testsupport.Field{testsupport.StringField("LABEL", 10)},
		Records: []testsupport.Record{{Shape: testsupport.Point(4.8357, 45.764), Values: []any{"lyon"}}},
	})
}

// buildCityArchive writes a ZIP map package holding roads (Web Mercator) and
// parcels (WGS 84) under the standard dataset path.
func buildCityArchive(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "tree")
	datasets := filepath.Join(src, "commondata", "shp4ia")
	writeRoads(t, datasets)
	writeParcels(t, datasets, wgs84PRJ)
	testsupport.WriteFile(t, filepath.Join(datasets, "README.txt"), []byte("not a dataset"))
	testsupport.WriteFile(t, filepath.Join(src, "commondata", "metadata.xml"), []byte("<meta/>"))

	path := filepath.Join(cfg.Paths.InputDir, name)
	testsupport.ZipTree(t, src, path)
	return path
}

// treeExtractor stands in for a codec by copying a prepared tree into dest.
type treeExtractor struct {
	src     string
	sources *[]string
}

func (e treeExtractor) Extract(_ context.Context, archivePath, dest string) (archive.Stats, error) {
	if e.sources != nil {
		*e.sources = append(*e.sources, archivePath)
	}
	var stats archive.Stats
	err := filepath.WalkDir(e.src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(e.src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			stats.Dirs++
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		stats.Files++
		return os.WriteFile(target, data, 0o644)
	})
	return stats, err
}

type outputDoc struct {
	Type     string `json:"type"`
	Features []struct {
		Geometry *struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

func readOutput(t *testing.T, path string) outputDoc {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output %s: %v", path, err)
	}
	var doc outputDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode output %s: %v", path, err)
	}
	return doc
}

func assertCleanedUp(t *testing.T, cfg *config.Config, archivePath string, codecExt string) {
	t.Helper()
	testsupport.AssertNotExist(t, cfg.Paths.ScratchDir)
	if codecExt != "" {
		base := archivePath[:len(archivePath)-len(filepath.Ext(archivePath))]
		testsupport.AssertNotExist(t, base+codecExt)
	}
	if _, err := os.Stat(archivePath); err != nil {
		t.Fatalf("original archive must remain: %v", err)
	}
}

package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mpkconv/internal/logging"
	"mpkconv/internal/services"
	"mpkconv/internal/shapefile"
	"mpkconv/internal/testsupport"
)

func TestInspectListsDatasetsWithoutWriting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	archivePath := buildCityArchive(t, cfg, "city.mpk")

	result := New(cfg, logging.NewNop()).Inspect(context.Background(), archivePath)
	if result.Err != nil {
		t.Fatalf("Inspect: %v", result.Err)
	}
	if result.DatasetDir != "commondata/shp4ia" || result.Fallback {
		t.Fatalf("unexpected dataset dir %q fallback=%v", result.DatasetDir, result.Fallback)
	}
	if len(result.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %+v", result.Datasets)
	}
	parcels, roads := result.Datasets[0], result.Datasets[1]
	if parcels.Name != "parcels.shp" || parcels.Features != 1 || parcels.CRS != "EPSG:4326" {
		t.Fatalf("unexpected parcels info %+v", parcels)
	}
	if roads.Name != "roads.shp" || roads.Features != 1 || roads.CRS != "EPSG:3857" {
		t.Fatalf("unexpected roads info %+v", roads)
	}
	if len(roads.Fields) != 1 || roads.Fields[0] != "NAME" {
		t.Fatalf("unexpected roads fields %v", roads.Fields)
	}

	if _, err := os.Stat(cfg.Paths.OutputDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("inspect must not create output, stat err=%v", err)
	}
	assertCleanedUp(t, cfg, archivePath, ".zip")
}

func TestInspectReportsUnidentifiedCRSPerDataset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := filepath.Join(t.TempDir(), "tree")
	datasets := filepath.Join(src, "commondata", "shp4ia")
	writeParcels(t, datasets, unknownPRJ)
	writePOI(t, datasets, "poi.shp")
	archivePath := filepath.Join(cfg.Paths.InputDir, "mixed.mpk")
	testsupport.ZipTree(t, src, archivePath)

	result := New(cfg, logging.NewNop()).Inspect(context.Background(), archivePath)
	if result.Err != nil {
		t.Fatalf("Inspect: %v", result.Err)
	}
	if len(result.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %+v", result.Datasets)
	}
	if result.Datasets[0].Err == nil {
		t.Fatalf("expected parcels to fail, got %+v", result.Datasets[0])
	}
	if poi := result.Datasets[1]; poi.Err != nil || poi.CRS != "" || poi.Features != 1 {
		t.Fatalf("unexpected poi info %+v", poi)
	}
}

func TestInspectRecoversDatasetPanics(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	archivePath := buildCityArchive(t, cfg, "city.mpk")

	loader := func(path string) (*shapefile.Dataset, error) {
		if filepath.Base(path) == "parcels.shp" {
			panic("codec exploded")
		}
		return shapefile.Load(path)
	}
	result := New(cfg, logging.NewNop(), WithLoader(loader)).Inspect(context.Background(), archivePath)
	if result.Err != nil {
		t.Fatalf("a dataset panic must not fail the inspection: %v", result.Err)
	}
	if len(result.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %+v", result.Datasets)
	}
	parcels, roads := result.Datasets[0], result.Datasets[1]
	if parcels.Name != "parcels.shp" || !errors.Is(parcels.Err, services.ErrDatasetConversion) {
		t.Fatalf("unexpected parcels info %+v", parcels)
	}
	if roads.Err != nil || roads.Features != 1 || roads.CRS != "EPSG:3857" {
		t.Fatalf("unexpected roads info %+v", roads)
	}
	assertCleanedUp(t, cfg, archivePath, ".zip")
}

func TestInspectMissingDatasetDirectoryKeepsTree(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	archivePath := filepath.Join(cfg.Paths.InputDir, "empty.mpk")
	testsupport.ZipFiles(t, archivePath, map[string][]byte{"esriinfo/iteminfo.xml": []byte("<info/>")})

	result := New(cfg, logging.NewNop()).Inspect(context.Background(), archivePath)
	if !errors.Is(result.Err, services.ErrDatasetDirMissing) {
		t.Fatalf("expected ErrDatasetDirMissing, got %v", result.Err)
	}
	if len(result.Tree) == 0 {
		t.Fatal("expected extracted tree listing")
	}
	assertCleanedUp(t, cfg, archivePath, ".zip")
}

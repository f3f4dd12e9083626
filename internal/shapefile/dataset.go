package shapefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb/geojson"

	"mpkconv/internal/crs"
)

// Dataset is one loaded shapefile.
type Dataset struct {
	// Name is the .shp file name, Path its full path.
	Name string
	Path string
	// CRS is the declared system; the zero value when no .prj ships with the file.
	CRS      crs.CRS
	HasCRS   bool
	Encoding string
	// Fields lists attribute names in DBF column order.
	Fields   []string
	Features *geojson.FeatureCollection
}

// Load reads the shapefile at path together with its sidecar files. A .prj
// that cannot be identified fails the load; a missing .prj does not.
func Load(path string) (*Dataset, error) {
	ds := &Dataset{
		Name: filepath.Base(path),
		Path: path,
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if prj, ok := sidecar(base, ".prj"); ok {
		data, err := os.ReadFile(prj)
		if err != nil {
			return nil, fmt.Errorf("read projection: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			system, err := crs.Identify(string(data))
			if err != nil {
				return nil, fmt.Errorf("projection %s: %w", filepath.Base(prj), err)
			}
			ds.CRS = system
			ds.HasCRS = true
		}
	}

	dec, err := resolveDecoder(base)
	if err != nil {
		return nil, err
	}
	ds.Encoding = dec.name

	reader, err := openReader(path, base)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	columns := readColumns(reader, dec)
	ds.Fields = make([]string, len(columns))
	for i, col := range columns {
		ds.Fields[i] = col.name
	}

	fc := geojson.NewFeatureCollection()
	for reader.Next() {
		row, shape := reader.Shape()
		geometry, err := toGeometry(shape)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", row, err)
		}
		feature := geojson.NewFeature(geometry)
		for i, col := range columns {
			feature.Properties[col.name] = col.value(reader.Attribute(i), dec)
		}
		fc.Append(feature)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	ds.Features = fc
	return ds, nil
}

// openReader opens the .shp at path together with its attribute table. go-shp's
// Open only looks for a lower-case .dbf, so an upper-case .DBF is read through
// the sequential reader instead.
func openReader(path, base string) (shp.SequentialReader, error) {
	dbfPath, ok := sidecar(base, ".dbf")
	if !ok {
		return nil, fmt.Errorf("missing attribute table %s.dbf", filepath.Base(base))
	}
	if dbfPath == base+".dbf" {
		reader, err := shp.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open shapefile: %w", err)
		}
		return reader, nil
	}

	shpFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	dbfFile, err := os.Open(dbfPath)
	if err != nil {
		shpFile.Close()
		return nil, fmt.Errorf("open attribute table: %w", err)
	}
	reader := shp.SequentialReaderFromExt(buffered(shpFile), buffered(dbfFile))
	if err := reader.Err(); err != nil {
		reader.Close()
		return nil, fmt.Errorf("read headers of %s: %w", filepath.Base(path), err)
	}
	return reader, nil
}

type bufferedFile struct {
	*bufio.Reader
	io.Closer
}

func buffered(f *os.File) io.ReadCloser {
	return bufferedFile{Reader: bufio.NewReader(f), Closer: f}
}

// sidecar locates base+ext, accepting an upper-case extension as well.
func sidecar(base, ext string) (string, bool) {
	for _, candidate := range []string{base + ext, base + strings.ToUpper(ext)} {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false
		}
	}
	return "", false
}

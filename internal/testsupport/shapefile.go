package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
)

// Field declares one DBF column of a fixture shapefile.
type Field struct {
	Name      string
	Type      byte
	Size      uint8
	Precision uint8
}

// StringField, NumberField and LogicalField are shorthands for common columns.
func StringField(name string, size uint8) Field { return Field{Name: name, Type: 'C', Size: size} }

func NumberField(name string, size, precision uint8) Field {
	return Field{Name: name, Type: 'N', Size: size, Precision: precision}
}

func LogicalField(name string) Field { return Field{Name: name, Type: 'L', Size: 1} }

// Record is one shape with its attribute values, in field order. Values may be
// string, int or float64.
type Record struct {
	Shape  shp.Shape
	Values []any
}

// Shapefile describes a fixture written by WriteShapefile. PRJ and CPG, when
// set, are written as sidecar files.
type Shapefile struct {
	Type    shp.ShapeType
	Fields  []Field
	Records []Record
	PRJ     string
	CPG     string
}

// WriteShapefile writes fx to path (ending in .shp) with its .shx and .dbf.
func WriteShapefile(t testing.TB, path string, fx Shapefile) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	w, err := shp.Create(path, fx.Type)
	if err != nil {
		t.Fatalf("create shapefile %s: %v", path, err)
	}
	if len(fx.Fields) > 0 {
		fields := make([]shp.Field, len(fx.Fields))
		for i, f := range fx.Fields {
			fields[i] = dbfField(f)
		}
		if err := w.SetFields(fields); err != nil {
			t.Fatalf("set fields: %v", err)
		}
	}
	for _, rec := range fx.Records {
		row := int(w.Write(rec.Shape))
		for i, value := range rec.Values {
			if value == nil {
				continue
			}
			if err := w.WriteAttribute(row, i, value); err != nil {
				t.Fatalf("write attribute %d of row %d: %v", i, row, err)
			}
		}
	}
	w.Close()

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if fx.PRJ != "" {
		WriteFile(t, base+".prj", []byte(fx.PRJ))
	}
	if fx.CPG != "" {
		WriteFile(t, base+".cpg", []byte(fx.CPG))
	}
}

func dbfField(f Field) shp.Field {
	var out shp.Field
	copy(out.Name[:], f.Name)
	out.Fieldtype = f.Type
	out.Size = f.Size
	out.Precision = f.Precision
	return out
}

// Point returns a point shape.
func Point(x, y float64) *shp.Point {
	return &shp.Point{X: x, Y: y}
}

// PolyLine returns a polyline shape with one part per argument.
func PolyLine(parts ...[][2]float64) *shp.PolyLine {
	return shp.NewPolyLine(toParts(parts))
}

// Polygon returns a polygon shape with one ring per argument. Rings are written
// as given; shapefile convention wants outer rings clockwise.
func Polygon(rings ...[][2]float64) *shp.Polygon {
	poly := shp.Polygon(*shp.NewPolyLine(toParts(rings)))
	return &poly
}

func toParts(parts [][][2]float64) [][]shp.Point {
	out := make([][]shp.Point, len(parts))
	for i, part := range parts {
		points := make([]shp.Point, len(part))
		for j, xy := range part {
			points[j] = shp.Point{X: xy[0], Y: xy[1]}
		}
		out[i] = points
	}
	return out
}

// SquareCW is a clockwise closed ring of the axis-aligned square with the given
// lower-left corner and side length.
func SquareCW(x, y, side float64) [][2]float64 {
	return [][2]float64{{x, y}, {x, y + side}, {x + side, y + side}, {x + side, y}, {x, y}}
}

// SquareCCW is SquareCW reversed.
func SquareCCW(x, y, side float64) [][2]float64 {
	ring := SquareCW(x, y, side)
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
	return ring
}

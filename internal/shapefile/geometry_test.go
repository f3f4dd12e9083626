package shapefile

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"mpkconv/internal/testsupport"
)

func TestPolygonHolesAssignedAndReoriented(t *testing.T) {
	shape := testsupport.Polygon(
		testsupport.SquareCW(0, 0, 10),
		testsupport.SquareCCW(2, 2, 2),
		testsupport.SquareCW(20, 20, 5),
	)
	g, err := toGeometry(shape)
	if err != nil {
		t.Fatalf("toGeometry: %v", err)
	}
	mp, ok := g.(orb.MultiPolygon)
	if !ok {
		t.Fatalf("expected MultiPolygon, got %T", g)
	}
	if len(mp) != 2 || len(mp[0]) != 2 || len(mp[1]) != 1 {
		t.Fatalf("unexpected ring grouping: %v", mp)
	}
	if mp[0][0].Orientation() != orb.CCW || mp[1][0].Orientation() != orb.CCW {
		t.Fatal("outer rings must be counter-clockwise")
	}
	if mp[0][1].Orientation() != orb.CW {
		t.Fatal("holes must be clockwise")
	}
}

func TestPolygonSingleRing(t *testing.T) {
	g, err := toGeometry(testsupport.Polygon(testsupport.SquareCW(0, 0, 1)))
	if err != nil {
		t.Fatalf("toGeometry: %v", err)
	}
	poly, ok := g.(orb.Polygon)
	if !ok || len(poly) != 1 {
		t.Fatalf("expected single-ring Polygon, got %T %v", g, g)
	}
}

func TestPolygonClosesOpenRings(t *testing.T) {
	open := [][2]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	g, err := toGeometry(testsupport.Polygon(open))
	if err != nil {
		t.Fatalf("toGeometry: %v", err)
	}
	ring := g.(orb.Polygon)[0]
	if len(ring) != 5 || ring[0] != ring[4] {
		t.Fatalf("ring not closed: %v", ring)
	}
}

func TestPolyLineParts(t *testing.T) {
	g, err := toGeometry(testsupport.PolyLine(
		[][2]float64{{0, 0}, {1, 1}},
		[][2]float64{{2, 2}, {3, 3}, {4, 4}},
	))
	if err != nil {
		t.Fatalf("toGeometry: %v", err)
	}
	mls, ok := g.(orb.MultiLineString)
	if !ok || len(mls) != 2 || len(mls[1]) != 3 {
		t.Fatalf("unexpected MultiLineString %v", g)
	}
}

func TestZAndMVariantsDropExtraDimensions(t *testing.T) {
	g, err := toGeometry(&shp.PointZ{X: 1, Y: 2, Z: 3, M: 4})
	if err != nil || g.(orb.Point) != (orb.Point{1, 2}) {
		t.Fatalf("PointZ = %v (%v)", g, err)
	}
	mp, err := toGeometry(&shp.MultiPointM{Points: []shp.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}})
	if err != nil || len(mp.(orb.MultiPoint)) != 2 {
		t.Fatalf("MultiPointM = %v (%v)", mp, err)
	}
}

func TestInvalidPartBounds(t *testing.T) {
	line := &shp.PolyLine{Parts: []int32{0, 5}, Points: []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	if _, err := toGeometry(line); err == nil {
		t.Fatal("expected invalid part index to fail")
	}
}

func TestNullShape(t *testing.T) {
	g, err := toGeometry(&shp.Null{})
	if err != nil || g != nil {
		t.Fatalf("expected nil geometry, got %v (%v)", g, err)
	}
}

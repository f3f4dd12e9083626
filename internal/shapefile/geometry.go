package shapefile

import (
	"fmt"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// toGeometry converts a go-shp shape to an orb geometry. Z and M values are
// dropped. Null shapes, and shapes without parts, map to a nil geometry.
func toGeometry(shape shp.Shape) (orb.Geometry, error) {
	switch s := shape.(type) {
	case nil, *shp.Null:
		return nil, nil
	case *shp.Point:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointM:
		return orb.Point{s.X, s.Y}, nil
	case *shp.MultiPoint:
		return multiPoint(s.Points), nil
	case *shp.MultiPointZ:
		return multiPoint(s.Points), nil
	case *shp.MultiPointM:
		return multiPoint(s.Points), nil
	case *shp.PolyLine:
		return lines(s.Parts, s.Points)
	case *shp.PolyLineZ:
		return lines(s.Parts, s.Points)
	case *shp.PolyLineM:
		return lines(s.Parts, s.Points)
	case *shp.Polygon:
		return polygons(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygons(s.Parts, s.Points)
	case *shp.PolygonM:
		return polygons(s.Parts, s.Points)
	default:
		return nil, fmt.Errorf("unsupported shape type %T", shape)
	}
}

func multiPoint(points []shp.Point) orb.Geometry {
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orb.Point{p.X, p.Y}
	}
	return mp
}

// split cuts points into parts using the shapefile part start indices.
func split(parts []int32, points []shp.Point) ([][]orb.Point, error) {
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(points) {
			return nil, fmt.Errorf("part %d has invalid bounds [%d:%d] for %d points", i, start, end, len(points))
		}
		part := make([]orb.Point, 0, end-start)
		for _, p := range points[start:end] {
			part = append(part, orb.Point{p.X, p.Y})
		}
		if len(part) > 0 {
			out = append(out, part)
		}
	}
	return out, nil
}

func lines(parts []int32, points []shp.Point) (orb.Geometry, error) {
	segments, err := split(parts, points)
	if err != nil {
		return nil, err
	}
	switch len(segments) {
	case 0:
		return nil, nil
	case 1:
		return orb.LineString(segments[0]), nil
	default:
		mls := make(orb.MultiLineString, len(segments))
		for i, part := range segments {
			mls[i] = orb.LineString(part)
		}
		return mls, nil
	}
}

// polygons groups shapefile rings into polygons. Clockwise rings are outer
// boundaries; counter-clockwise rings are holes assigned to the first outer
// ring containing them. A hole no outer ring contains becomes its own polygon.
// Output rings follow RFC 7946: outer counter-clockwise, holes clockwise.
func polygons(parts []int32, points []shp.Point) (orb.Geometry, error) {
	rings, err := split(parts, points)
	if err != nil {
		return nil, err
	}

	var outers []orb.Polygon
	var holes []orb.Ring
	for _, part := range rings {
		ring := closeRing(orb.Ring(part))
		if ring.Orientation() == orb.CCW {
			holes = append(holes, ring)
			continue
		}
		outers = append(outers, orb.Polygon{ring})
	}

	for _, hole := range holes {
		assigned := false
		for i := range outers {
			if planar.RingContains(outers[i][0], hole[0]) {
				outers[i] = append(outers[i], hole)
				assigned = true
				break
			}
		}
		if !assigned {
			outers = append(outers, orb.Polygon{hole})
		}
	}

	for _, poly := range outers {
		for i, ring := range poly {
			wantCCW := i == 0
			if (ring.Orientation() == orb.CCW) != wantCCW {
				ring.Reverse()
			}
		}
	}

	switch len(outers) {
	case 0:
		return nil, nil
	case 1:
		return outers[0], nil
	default:
		return orb.MultiPolygon(outers), nil
	}
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) > 0 && r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}

package crs

import (
	"errors"
	"fmt"
	"math"

	"github.com/im7mortal/UTM"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ErrNonFinite reports a transform producing NaN or infinite coordinates.
var ErrNonFinite = errors.New("reprojection produced non-finite coordinates")

// PointFunc maps one point to another, failing when the input is outside the
// domain of the projection.
type PointFunc func(orb.Point) (orb.Point, error)

// ToWGS84 returns the point transform from c to WGS 84 lon/lat. Registered
// EPSG codes use their published parameters; any other system falls back to
// the projection and datum read from its WKT.
func ToWGS84(c CRS) (PointFunc, error) {
	switch c.Code {
	case codeWGS84, codeRGF93, codeETRS89, codeNAD83:
		return identity, nil
	case codeWebMerc:
		return fromProjection(project.Mercator.ToWGS84), nil
	case codeLambert93:
		return Lambert93.Inverse, nil
	}
	if zone, northern, ok := c.UTMZone(); ok {
		return utmInverse(zone, northern), nil
	}
	if d, ok := registered(c.Code); ok {
		return d.toWGS84(), nil
	}
	if c.def != nil {
		return c.def.toWGS84(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, describe(c))
}

// registered returns the built-in definition of codes whose datum is not
// coincident with WGS 84 or whose projection is parametric.
func registered(code int) (*definition, bool) {
	rgf93 := datum{name: "RGF_1993", ellipsoid: grs80}
	ntf := newDatum("NTF", clarke1880IGN, nil)
	ed50 := newDatum("European_Datum_1950", international1924, nil)
	nad27 := newDatum("North_American_Datum_1927", clarke1866, nil)

	switch {
	case code == codeNTF:
		return &definition{datum: ntf, angular: 1, linear: 1}, true
	case code == codeED50:
		return &definition{datum: ed50, angular: 1, linear: 1}, true
	case code == codeNAD27:
		return &definition{datum: nad27, angular: 1, linear: 1}, true
	case code >= ccFirst && code <= ccLast:
		return &definition{datum: rgf93, angular: 1, linear: 1, proj: CCZone(code - ccLatOffset), method: "Lambert_Conformal_Conic"}, true
	case code == codeLambertII:
		return &definition{datum: ntf, primeMeridian: parisMeridian, angular: 1, linear: 1, proj: LambertII, method: "Lambert_Conformal_Conic_1SP"}, true
	case code >= ed50UTMOffset+ed50UTMFirst && code <= ed50UTMOffset+ed50UTMLast:
		zone := code - ed50UTMOffset
		tm := TransverseMercator{
			SemiMajor:         international1924.a,
			InverseFlattening: international1924.invf,
			Lon0:              float64(zone*6 - 183),
			ScaleFactor:       0.9996,
			FalseEasting:      500000,
		}
		return &definition{datum: ed50, angular: 1, linear: 1, proj: tm, method: "Transverse_Mercator"}, true
	}
	return nil, false
}

func describe(c CRS) string {
	if c.Name != "" && c.Code != 0 {
		return fmt.Sprintf("%s (%s)", c, c.Name)
	}
	if c.Name != "" {
		return c.Name
	}
	return c.String()
}

func identity(p orb.Point) (orb.Point, error) { return p, nil }

func fromProjection(proj orb.Projection) PointFunc {
	return func(p orb.Point) (orb.Point, error) { return proj(p), nil }
}

func utmInverse(zone int, northern bool) PointFunc {
	return func(p orb.Point) (orb.Point, error) {
		lat, lon, err := UTM.ToLatLon(p[0], p[1], zone, "", northern)
		if err != nil {
			return orb.Point{}, fmt.Errorf("utm zone %d: %w", zone, err)
		}
		return orb.Point{lon, lat}, nil
	}
}

// Reproject returns g expressed in WGS 84. The input geometry is not modified.
// A nil geometry stays nil.
func Reproject(g orb.Geometry, from CRS) (orb.Geometry, error) {
	if g == nil || from.IsWGS84() {
		return g, nil
	}
	fn, err := ToWGS84(from)
	if err != nil {
		return nil, err
	}
	return Apply(orb.Clone(g), fn)
}

// Apply runs fn over every point of g in place and returns g. Points that come
// back NaN or infinite fail with ErrNonFinite.
func Apply(g orb.Geometry, fn PointFunc) (orb.Geometry, error) {
	checked := func(p orb.Point) (orb.Point, error) {
		out, err := fn(p)
		if err != nil {
			return orb.Point{}, err
		}
		if !finite(out) {
			return orb.Point{}, fmt.Errorf("%w: %v -> %v", ErrNonFinite, p, out)
		}
		return out, nil
	}

	switch geom := g.(type) {
	case nil:
		return nil, nil
	case orb.Point:
		return checked(geom)
	case orb.MultiPoint:
		return geom, applyPoints(geom, checked)
	case orb.LineString:
		return geom, applyPoints(geom, checked)
	case orb.Ring:
		return geom, applyPoints(geom, checked)
	case orb.MultiLineString:
		for _, ls := range geom {
			if err := applyPoints(ls, checked); err != nil {
				return nil, err
			}
		}
		return geom, nil
	case orb.Polygon:
		return geom, applyPolygon(geom, checked)
	case orb.MultiPolygon:
		for _, poly := range geom {
			if err := applyPolygon(poly, checked); err != nil {
				return nil, err
			}
		}
		return geom, nil
	case orb.Collection:
		for i, member := range geom {
			out, err := Apply(member, fn)
			if err != nil {
				return nil, err
			}
			geom[i] = out
		}
		return geom, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %s", g.GeoJSONType())
	}
}

func applyPoints(points []orb.Point, fn PointFunc) error {
	for i, p := range points {
		out, err := fn(p)
		if err != nil {
			return err
		}
		points[i] = out
	}
	return nil
}

func applyPolygon(poly orb.Polygon, fn PointFunc) error {
	for _, ring := range poly {
		if err := applyPoints(ring, fn); err != nil {
			return err
		}
	}
	return nil
}

func finite(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

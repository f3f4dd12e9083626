package crs

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// ellipsoid is a reference ellipsoid given by its semi-major axis in metres and
// inverse flattening. An inverse flattening of zero is a sphere.
type ellipsoid struct {
	a, invf float64
}

var (
	wgs84Ellipsoid    = ellipsoid{6378137, 298.257223563}
	grs80             = ellipsoid{6378137, 298.257222101}
	clarke1880IGN     = ellipsoid{6378249.2, 293.4660212936269}
	clarke1866        = ellipsoid{6378206.4, 294.9786982138982}
	international1924 = ellipsoid{6378388, 297}
	airy1830          = ellipsoid{6377563.396, 299.3249646}
)

func (e ellipsoid) eccSq() float64 {
	if e.invf == 0 {
		return 0
	}
	f := 1 / e.invf
	return f * (2 - f)
}

func (e ellipsoid) ecc() float64 { return math.Sqrt(e.eccSq()) }

func (e ellipsoid) matches(other ellipsoid) bool {
	return math.Abs(e.a-other.a) < 1e-3 && math.Abs(e.invf-other.invf) < 1e-6
}

// toECEF converts lon/lat degrees at zero height to earth-centred cartesian
// coordinates in metres.
func (e ellipsoid) toECEF(p orb.Point) [3]float64 {
	e2 := e.eccSq()
	lam, phi := radians(p[0]), radians(p[1])
	sin, cos := math.Sincos(phi)
	n := e.a / math.Sqrt(1-e2*sin*sin)
	return [3]float64{
		n * cos * math.Cos(lam),
		n * cos * math.Sin(lam),
		n * (1 - e2) * sin,
	}
}

// fromECEF is the inverse of toECEF using Bowring's closed form, which is
// millimetre accurate for points near the surface.
func (e ellipsoid) fromECEF(v [3]float64) orb.Point {
	e2 := e.eccSq()
	b := e.a
	if e.invf != 0 {
		b = e.a * (1 - 1/e.invf)
	}
	ep2 := (e.a*e.a - b*b) / (b * b)
	p := math.Hypot(v[0], v[1])
	theta := math.Atan2(v[2]*e.a, p*b)
	sin, cos := math.Sincos(theta)
	phi := math.Atan2(v[2]+ep2*b*sin*sin*sin, p-e2*e.a*cos*cos*cos)
	return orb.Point{degrees(math.Atan2(v[1], v[0])), degrees(phi)}
}

// helmert is a seven parameter position vector transformation to WGS 84, the
// convention of the WKT TOWGS84 clause. Rotations are arc-seconds and the
// scale difference is parts per million.
type helmert struct {
	tx, ty, tz float64
	rx, ry, rz float64
	ds         float64
}

func (h helmert) identity() bool { return h == helmert{} }

func (h helmert) apply(v [3]float64) [3]float64 {
	const arcsec = math.Pi / (180 * 3600)
	rx, ry, rz := h.rx*arcsec, h.ry*arcsec, h.rz*arcsec
	s := 1 + h.ds*1e-6
	x, y, z := v[0], v[1], v[2]
	return [3]float64{
		h.tx + s*(x-rz*y+ry*z),
		h.ty + s*(rz*x+y-rx*z),
		h.tz + s*(-ry*x+rx*y+z),
	}
}

// datum is a geodetic datum reduced to what reprojection needs. A nil shift
// means the datum is treated as coincident with WGS 84.
type datum struct {
	name      string
	ellipsoid ellipsoid
	shift     *helmert
}

// wgs84Datums are datum names, normalized, that denote WGS 84 itself.
var wgs84Datums = map[string]bool{
	"wgs_1984":                   true,
	"wgs_84":                     true,
	"wgs84":                      true,
	"world_geodetic_system_1984": true,
}

// knownShifts are mean transformations for datums that commonly appear
// without a TOWGS84 clause. Keys are normalized datum names.
var knownShifts = map[string]helmert{
	"ntf":                                    {tx: -168, ty: -60, tz: 320},
	"ntf_paris":                              {tx: -168, ty: -60, tz: 320},
	"nouvelle_triangulation_francaise":       {tx: -168, ty: -60, tz: 320},
	"nouvelle_triangulation_francaise_paris": {tx: -168, ty: -60, tz: 320},
	"european_1950":                          {tx: -87, ty: -98, tz: -121},
	"european_datum_1950":                    {tx: -87, ty: -98, tz: -121},
	"ed50":                                   {tx: -87, ty: -98, tz: -121},
	"north_american_1927":                    {tx: -8, ty: 160, tz: 176},
	"north_american_datum_1927":              {tx: -8, ty: 160, tz: 176},
	"nad27":                                  {tx: -8, ty: 160, tz: 176},
	"osgb_1936":                              {tx: 446.448, ty: -125.157, tz: 542.06, rx: 0.15, ry: 0.247, rz: 0.842, ds: -20.489},
	"ordnance_survey_of_great_britain_1936":  {tx: 446.448, ty: -125.157, tz: 542.06, rx: 0.15, ry: 0.247, rz: 0.842, ds: -20.489},
}

// datumKey normalizes a datum name, dropping the ESRI "D_" prefix.
func datumKey(name string) string {
	return strings.TrimPrefix(normalizeName(name), "d_")
}

func newDatum(name string, ell ellipsoid, towgs84 []float64) datum {
	d := datum{name: name, ellipsoid: ell}
	if len(towgs84) == 3 || len(towgs84) == 7 {
		h := helmert{tx: towgs84[0], ty: towgs84[1], tz: towgs84[2]}
		if len(towgs84) == 7 {
			h.rx, h.ry, h.rz, h.ds = towgs84[3], towgs84[4], towgs84[5], towgs84[6]
		}
		if !h.identity() {
			d.shift = &h
		}
		return d
	}
	if h, ok := knownShifts[datumKey(name)]; ok {
		d.shift = &h
	}
	return d
}

// isWGS84 reports whether d is WGS 84 by name, or by an unshifted WGS 84
// ellipsoid when the name is not recognized.
func (d datum) isWGS84() bool {
	if d.shift != nil {
		return false
	}
	return wgs84Datums[datumKey(d.name)] || d.ellipsoid.matches(wgs84Ellipsoid)
}

// toWGS84 moves lon/lat degrees on d to WGS 84 through earth-centred
// coordinates. Datums without a shift pass through unchanged.
func (d datum) toWGS84(p orb.Point) orb.Point {
	if d.shift == nil {
		return p
	}
	return wgs84Ellipsoid.fromECEF(d.shift.apply(d.ellipsoid.toECEF(p)))
}

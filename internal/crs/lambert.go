package crs

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// LambertConformalConic is a Lambert conformal conic projection on an
// ellipsoid. Equal standard parallels give the one parallel form. A zero
// ScaleFactor means 1. Angles are in degrees.
type LambertConformalConic struct {
	SemiMajor         float64
	InverseFlattening float64
	Lat1, Lat2        float64
	Lat0, Lon0        float64
	ScaleFactor       float64
	FalseEasting      float64
	FalseNorthing     float64
}

// Lambert93 is EPSG:2154, RGF93 / Lambert-93 on GRS 80.
var Lambert93 = LambertConformalConic{
	SemiMajor:         6378137,
	InverseFlattening: 298.257222101,
	Lat1:              49,
	Lat2:              44,
	Lat0:              46.5,
	Lon0:              3,
	FalseEasting:      700000,
	FalseNorthing:     6600000,
}

// parisMeridian is the longitude of the Paris meridian east of Greenwich.
const parisMeridian = 2.33722917

// LambertII is the projection of EPSG:27572, NTF (Paris) / Lambert zone II,
// on Clarke 1880 (IGN). Longitudes are relative to the Paris meridian.
var LambertII = LambertConformalConic{
	SemiMajor:         clarke1880IGN.a,
	InverseFlattening: clarke1880IGN.invf,
	Lat1:              46.8,
	Lat2:              46.8,
	Lat0:              46.8,
	Lon0:              0,
	ScaleFactor:       0.99987742,
	FalseEasting:      600000,
	FalseNorthing:     2200000,
}

type lccConstants struct {
	e, n, aF, rho0, lon0 float64
}

const (
	maxLatitudeIterations = 15
	latitudeTolerance     = 1e-12
)

// CCZone returns EPSG:3942 to EPSG:3950, the RGF93 conic conformal zone
// centred on latitude lat, for lat in 42..50.
func CCZone(lat int) LambertConformalConic {
	return LambertConformalConic{
		SemiMajor:         grs80.a,
		InverseFlattening: grs80.invf,
		Lat1:              float64(lat) - 0.75,
		Lat2:              float64(lat) + 0.75,
		Lat0:              float64(lat),
		Lon0:              3,
		FalseEasting:      1700000,
		FalseNorthing:     float64(lat-41)*1000000 + 200000,
	}
}

func (l LambertConformalConic) constants() lccConstants {
	e := ellipsoid{l.SemiMajor, l.InverseFlattening}.ecc()
	phi1, phi2, phi0 := radians(l.Lat1), radians(l.Lat2), radians(l.Lat0)
	m1, m2 := lccM(phi1, e), lccM(phi2, e)
	t1, t2, t0 := lccT(phi1, e), lccT(phi2, e), lccT(phi0, e)
	n := math.Sin(phi1)
	if math.Abs(l.Lat1-l.Lat2) > 1e-10 {
		n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	}
	k0 := l.ScaleFactor
	if k0 == 0 {
		k0 = 1
	}
	aF := l.SemiMajor * k0 * m1 / (n * math.Pow(t1, n))
	return lccConstants{
		e:    e,
		n:    n,
		aF:   aF,
		rho0: aF * math.Pow(t0, n),
		lon0: radians(l.Lon0),
	}
}

// Inverse maps projected easting/northing to lon/lat degrees.
func (l LambertConformalConic) Inverse(p orb.Point) (orb.Point, error) {
	k := l.constants()
	dx := p[0] - l.FalseEasting
	dy := k.rho0 - (p[1] - l.FalseNorthing)
	rho := math.Copysign(math.Hypot(dx, dy), k.n)
	if rho == 0 {
		return orb.Point{l.Lon0, math.Copysign(90, k.n)}, nil
	}
	if k.n < 0 {
		dx, dy = -dx, -dy
	}
	theta := math.Atan2(dx, dy)
	phi, ok := latitudeFromT(math.Pow(rho/k.aF, 1/k.n), k.e)
	if !ok {
		return orb.Point{}, fmt.Errorf("lambert inverse did not converge for %v", p)
	}
	return orb.Point{degrees(theta/k.n + k.lon0), degrees(phi)}, nil
}

// latitudeFromT solves the isometric latitude function t for the geodetic
// latitude in radians.
func latitudeFromT(t, e float64) (float64, bool) {
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < maxLatitudeIterations; i++ {
		es := e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-es)/(1+es), e/2))
		if math.Abs(next-phi) < latitudeTolerance {
			return next, true
		}
		phi = next
	}
	return 0, false
}

// Forward maps lon/lat degrees to projected easting/northing.
func (l LambertConformalConic) Forward(p orb.Point) orb.Point {
	k := l.constants()
	rho := k.aF * math.Pow(lccT(radians(p[1]), k.e), k.n)
	theta := k.n * (radians(p[0]) - k.lon0)
	return orb.Point{
		l.FalseEasting + rho*math.Sin(theta),
		l.FalseNorthing + k.rho0 - rho*math.Cos(theta),
	}
}

func lccM(phi, e float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e*e*s*s)
}

func lccT(phi, e float64) float64 {
	es := e * math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-es)/(1+es), e/2)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

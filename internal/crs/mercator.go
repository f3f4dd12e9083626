package crs

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// TransverseMercator is an ellipsoidal transverse Mercator projection using
// the series expansion of USGS Professional Paper 1395, good to a few
// millimetres inside a UTM-width zone. Angles are in degrees.
type TransverseMercator struct {
	SemiMajor         float64
	InverseFlattening float64
	Lat0, Lon0        float64
	ScaleFactor       float64
	FalseEasting      float64
	FalseNorthing     float64
}

type tmConstants struct {
	e2, ep2, k0, m0 float64
}

func (tm TransverseMercator) constants() tmConstants {
	e2 := ellipsoid{tm.SemiMajor, tm.InverseFlattening}.eccSq()
	k0 := tm.ScaleFactor
	if k0 == 0 {
		k0 = 1
	}
	return tmConstants{
		e2:  e2,
		ep2: e2 / (1 - e2),
		k0:  k0,
		m0:  meridianArc(tm.SemiMajor, e2, radians(tm.Lat0)),
	}
}

// meridianArc is the distance along the meridian from the equator to phi.
func meridianArc(a, e2, phi float64) float64 {
	e4, e6 := e2*e2, e2*e2*e2
	return a * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// Forward maps lon/lat degrees to projected easting/northing.
func (tm TransverseMercator) Forward(p orb.Point) orb.Point {
	k := tm.constants()
	phi := radians(p[1])
	sin, cos := math.Sincos(phi)
	tan := math.Tan(phi)

	n := tm.SemiMajor / math.Sqrt(1-k.e2*sin*sin)
	t := tan * tan
	c := k.ep2 * cos * cos
	a := radians(p[0]-tm.Lon0) * cos
	m := meridianArc(tm.SemiMajor, k.e2, phi)

	a2 := a * a
	x := k.k0 * n * (a + (1-t+c)*a2*a/6 + (5-18*t+t*t+72*c-58*k.ep2)*a2*a2*a/120)
	y := k.k0 * (m - k.m0 + n*tan*(a2/2+(5-t+9*c+4*c*c)*a2*a2/24+(61-58*t+t*t+600*c-330*k.ep2)*a2*a2*a2/720))
	return orb.Point{tm.FalseEasting + x, tm.FalseNorthing + y}
}

// Inverse maps projected easting/northing to lon/lat degrees.
func (tm TransverseMercator) Inverse(p orb.Point) (orb.Point, error) {
	k := tm.constants()
	e2 := k.e2
	m := k.m0 + (p[1]-tm.FalseNorthing)/k.k0
	mu := m / (tm.SemiMajor * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)
	if math.Abs(phi1) >= math.Pi/2 {
		return orb.Point{}, fmt.Errorf("transverse mercator inverse: northing %v outside the projection", p[1])
	}

	sin, cos := math.Sincos(phi1)
	tan := math.Tan(phi1)
	c1 := k.ep2 * cos * cos
	t1 := tan * tan
	w := 1 - e2*sin*sin
	n1 := tm.SemiMajor / math.Sqrt(w)
	r1 := tm.SemiMajor * (1 - e2) / (w * math.Sqrt(w))
	d := (p[0] - tm.FalseEasting) / (n1 * k.k0)
	d2 := d * d

	phi := phi1 - (n1*tan/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*k.ep2)*d2*d2/24+
		(61+90*t1+298*c1+45*t1*t1-252*k.ep2-3*c1*c1)*d2*d2*d2/720)
	lam := (d - (1+2*t1+c1)*d2*d/6 +
		(5-2*c1+28*t1-3*c1*c1+8*k.ep2+24*t1*t1)*d2*d2*d/120) / cos
	return orb.Point{tm.Lon0 + degrees(lam), degrees(phi)}, nil
}

// mercator is the normal aspect Mercator on an ellipsoid, or on a sphere of
// radius SemiMajor when sphere is set (the Web Mercator convention).
type mercator struct {
	ell                         ellipsoid
	sphere                      bool
	lon0, k0                    float64
	falseEasting, falseNorthing float64
}

func (m mercator) Inverse(p orb.Point) (orb.Point, error) {
	e := 0.0
	if !m.sphere {
		e = m.ell.ecc()
	}
	ak := m.ell.a * m.k0
	lon := m.lon0 + degrees((p[0]-m.falseEasting)/ak)
	phi, ok := latitudeFromT(math.Exp(-(p[1]-m.falseNorthing)/ak), e)
	if !ok {
		return orb.Point{}, fmt.Errorf("mercator inverse did not converge for %v", p)
	}
	return orb.Point{lon, degrees(phi)}, nil
}

// mercatorScale returns the scale factor on the equator of a Mercator whose
// true scale is at latitude lat1 degrees.
func mercatorScale(ell ellipsoid, lat1 float64) float64 {
	sin, cos := math.Sincos(radians(lat1))
	return cos / math.Sqrt(1-ell.eccSq()*sin*sin)
}

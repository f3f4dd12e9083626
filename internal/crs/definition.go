package crs

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var errIncomplete = errors.New("incomplete definition")

// inverter maps projected metres to lon/lat degrees relative to the prime
// meridian of its geographic system.
type inverter interface {
	Inverse(orb.Point) (orb.Point, error)
}

// definition is a system built from the parameters of its WKT, used when the
// declared authority or name is not in the registry.
type definition struct {
	datum         datum
	primeMeridian float64 // degrees east of Greenwich
	angular       float64 // degrees per geographic coordinate unit
	linear        float64 // metres per projected coordinate unit
	proj          inverter
	method        string
}

func (d *definition) geographic() bool { return d.proj == nil }

// isWGS84 reports whether coordinates in d are already WGS 84 lon/lat.
func (d *definition) isWGS84() bool {
	return d.geographic() && d.primeMeridian == 0 && near1(d.angular) && d.datum.isWGS84()
}

func (d *definition) toWGS84() PointFunc {
	return func(p orb.Point) (orb.Point, error) {
		var lonlat orb.Point
		if d.proj != nil {
			out, err := d.proj.Inverse(orb.Point{p[0] * d.linear, p[1] * d.linear})
			if err != nil {
				return orb.Point{}, fmt.Errorf("%s: %w", d.method, err)
			}
			lonlat = out
		} else {
			lonlat = orb.Point{p[0] * d.angular, p[1] * d.angular}
		}
		lonlat[0] = wrapLongitude(lonlat[0] + d.primeMeridian)
		return d.datum.toWGS84(lonlat), nil
	}
}

// parseDefinition builds a definition from a WKT1 GEOGCS or PROJCS. Prime
// meridians and angular projection parameters are read in degrees, as GDAL
// and ESRI write them.
func parseDefinition(root *node) (*definition, error) {
	switch root.keyword {
	case "GEOGCS":
		return parseGeographic(root)
	case "PROJCS":
		geog := root.child("GEOGCS")
		if geog == nil {
			return nil, fmt.Errorf("%w: projected system without GEOGCS", errIncomplete)
		}
		d, err := parseGeographic(geog)
		if err != nil {
			return nil, err
		}
		d.linear = unitFactor(root, 1)
		method := root.child("PROJECTION")
		if method == nil || method.name() == "" {
			return nil, fmt.Errorf("%w: projected system without PROJECTION", errIncomplete)
		}
		d.method = method.name()
		d.proj, err = newProjection(d.method, parameters(root), d.datum.ellipsoid, d.linear)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %s definitions are only identified by authority", errIncomplete, root.keyword)
	}
}

func parseGeographic(geog *node) (*definition, error) {
	dat := geog.child("DATUM")
	if dat == nil {
		return nil, fmt.Errorf("%w: geographic system without DATUM", errIncomplete)
	}
	sph := dat.child("SPHEROID", "ELLIPSOID")
	if sph == nil {
		return nil, fmt.Errorf("%w: datum without SPHEROID", errIncomplete)
	}
	a, okA := sph.number(1)
	invf, okF := sph.number(2)
	if !okA || !okF || a <= 0 || invf < 0 {
		return nil, fmt.Errorf("%w: malformed SPHEROID", errIncomplete)
	}
	var towgs84 []float64
	if tw := dat.child("TOWGS84"); tw != nil {
		towgs84, _ = tw.numbers()
	}

	d := &definition{
		datum:   newDatum(dat.name(), ellipsoid{a, invf}, towgs84),
		angular: 1,
		linear:  1,
	}
	if pm := geog.child("PRIMEM"); pm != nil {
		d.primeMeridian, _ = pm.number(1)
	}
	if u := geog.child("UNIT", "ANGLEUNIT"); u != nil {
		if rad, ok := u.number(1); ok && rad > 0 {
			d.angular = degrees(rad)
		}
	}
	return d, nil
}

func unitFactor(n *node, fallback float64) float64 {
	if u := n.child("UNIT", "LENGTHUNIT"); u != nil {
		if v, ok := u.number(1); ok && v > 0 {
			return v
		}
	}
	return fallback
}

type paramSet map[string]float64

// parameters collects the PARAMETER clauses of a projected system keyed by
// normalized name.
func parameters(n *node) paramSet {
	params := make(paramSet)
	for _, c := range n.children {
		if c.keyword != "PARAMETER" {
			continue
		}
		if v, ok := c.number(1); ok {
			params[normalizeName(c.name())] = v
		}
	}
	return params
}

func (p paramSet) get(fallback float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := p[k]; ok {
			return v
		}
	}
	return fallback
}

func newProjection(method string, p paramSet, ell ellipsoid, linear float64) (inverter, error) {
	fe := p.get(0, "false_easting") * linear
	fn := p.get(0, "false_northing") * linear
	lon0 := p.get(0, "central_meridian", "longitude_of_center", "longitude_of_origin", "longitude_of_natural_origin")
	lat0 := p.get(0, "latitude_of_origin", "latitude_of_center", "latitude_of_natural_origin")
	k0 := p.get(1, "scale_factor", "scale_factor_at_natural_origin")

	switch normalizeName(method) {
	case "transverse_mercator", "gauss_kruger":
		return TransverseMercator{
			SemiMajor:         ell.a,
			InverseFlattening: ell.invf,
			Lat0:              lat0,
			Lon0:              lon0,
			ScaleFactor:       k0,
			FalseEasting:      fe,
			FalseNorthing:     fn,
		}, nil
	case "lambert_conformal_conic", "lambert_conformal_conic_2sp", "lambert_conformal_conic_1sp":
		lat1 := p.get(lat0, "standard_parallel_1")
		lat2 := p.get(lat1, "standard_parallel_2")
		if normalizeName(method) == "lambert_conformal_conic_1sp" {
			lat1, lat2 = lat0, lat0
		}
		if lat1 != lat2 {
			k0 = 1
		}
		return LambertConformalConic{
			SemiMajor:         ell.a,
			InverseFlattening: ell.invf,
			Lat1:              lat1,
			Lat2:              lat2,
			Lat0:              lat0,
			Lon0:              lon0,
			ScaleFactor:       k0,
			FalseEasting:      fe,
			FalseNorthing:     fn,
		}, nil
	case "mercator", "mercator_1sp", "mercator_2sp":
		if lat1, ok := p["standard_parallel_1"]; ok && lat1 != 0 {
			k0 = mercatorScale(ell, lat1)
		}
		return mercator{ell: ell, lon0: lon0, k0: k0, falseEasting: fe, falseNorthing: fn}, nil
	case "mercator_auxiliary_sphere", "popular_visualisation_pseudo_mercator":
		return mercator{ell: ell, sphere: true, lon0: lon0, k0: 1, falseEasting: fe, falseNorthing: fn}, nil
	default:
		return nil, fmt.Errorf("%w: projection %s", ErrUnsupported, method)
	}
}

func near1(v float64) bool { return v > 1-1e-9 && v < 1+1e-9 }

func wrapLongitude(lon float64) float64 {
	switch {
	case lon > 180:
		return lon - 360
	case lon < -180:
		return lon + 360
	default:
		return lon
	}
}

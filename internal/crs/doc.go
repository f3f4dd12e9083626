// Package crs identifies the coordinate reference system declared by a
// shapefile .prj and reprojects orb geometries to WGS 84 longitude/latitude.
//
// Identification reads the top-level EPSG authority of the WKT, falling back
// to well-known ESRI and OGC names, then to the datum of a geographic system.
// Registered EPSG codes (WGS 84 and the geographic systems coincident with it
// at map scale, Web Mercator, Lambert-93, the RGF93 CC zones, NTF Lambert II,
// and the UTM zones of WGS 84, ETRS89, NAD83 and ED50) reproject with their
// published parameters. Any other WKT1 definition is reprojected from its own
// SPHEROID, PRIMEM, UNIT, TOWGS84 and PROJECTION clauses when the projection
// is transverse Mercator, Lambert conformal conic or Mercator. Everything else
// is reported as ErrUnsupported or ErrUnidentified so callers can fail the
// dataset instead of writing coordinates in the wrong system.
package crs

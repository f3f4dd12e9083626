// Package shapefile loads ESRI shapefile datasets into orb feature collections.
//
// Geometry and DBF records are read with go-shp. The sibling .prj declares the
// coordinate reference system and the sibling .cpg, or failing that the DBF
// language driver, names the attribute text encoding. Coordinates are returned
// as stored; reprojection is left to the caller. Sidecar extensions are matched
// in lower or upper case, and a dataset without its DBF fails to load.
package shapefile

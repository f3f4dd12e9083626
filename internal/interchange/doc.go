// Package interchange writes feature collections as GeoJSON files.
//
// Documents follow RFC 7946: a FeatureCollection of Features, null geometry
// for features without shape, and a properties object on every feature.
// Properties are emitted in the dataset's column order rather than sorted.
// Files are written through a temporary sibling and renamed into place, so a
// rerun replaces an earlier output and a failed write leaves none behind.
package interchange

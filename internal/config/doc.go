// Package config loads, normalizes, and validates mpkconv configuration data.
//
// It supplies repository defaults matching the historical fixed directory
// names (mpk_dir, geojson_dir, temp_mpk_extract, commondata/shp4ia), expands
// user paths including tilde shortcuts, reads TOML files, and honours the
// MPKCONV_LOG_LEVEL environment override. The Config type is passed into the
// conversion pipeline at construction time instead of package-level constants.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config

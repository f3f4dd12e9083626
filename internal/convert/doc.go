// Package convert drives map-package archives through the conversion pipeline.
//
// For one archive, Converter.ConvertArchive detects the container, extracts it
// into the scratch area, locates the dataset directory, and converts every
// shapefile found there into a GeoJSON file in the archive's output
// directory. Failures are isolated: a failing dataset never stops its
// siblings, and a failing archive never stops the batch. The scratch area and
// any renamed archive copy are released on every exit path.
//
// Batch runs the converter over every archive in the configured input
// directory, one at a time, under an advisory lock on the scratch name.
package convert

// Package archive classifies map-package containers and extracts them.
//
// Classification inspects container signatures only; file extensions are
// ignored because map packages ship as .mpk regardless of the container
// inside. Detection yields a Kind that the extraction step dispatches on once,
// selecting the ZIP or 7z Extractor from a Registry.
//
// Extraction is all-or-nothing into a caller-owned directory. Entries that
// would land outside that directory fail the extraction with ErrUnsafePath;
// symbolic links and special files are skipped.
package archive

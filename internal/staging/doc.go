// Package staging owns the scratch area an archive is extracted into.
//
// A Scratch is prepared before extraction and released exactly once when the
// archive is done, whatever the outcome. Release also removes the renamed
// copy of the archive made for extraction tooling that keys on file
// extension. Cleanup errors are logged and never returned to callers.
//
// Lock guards the scratch name across processes, and Tree renders the layout
// of an extracted scratch area for diagnostics.
package staging

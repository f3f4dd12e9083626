// Package preflight provides readiness checks for the filesystem paths a
// conversion batch depends on.
//
// The CLI "mpkconv check" command runs RunAll and renders the results; the
// convert command runs the same checks and refuses to start when any fails.
// Checks never create directories: a missing output or scratch location is
// judged by its nearest existing ancestor.
package preflight

// Package main hosts the mpkconv CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, applies flag
// overrides, and hands the resulting config to the conversion packages:
// batch conversion, single-archive inspection, preflight checks, and
// configuration scaffolding.
//
// Keep this package lean: add behavior to the internal packages first, then
// surface it through a command or flag here.
package main

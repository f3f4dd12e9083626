// Package services defines shared helpers consumed by the conversion stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, archive names, stage names, and
//     dataset names for logging.
//   - Sentinel error markers plus the Wrap helper so archive- and
//     dataset-level failures classify consistently in logs and reports.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services

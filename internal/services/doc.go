// Package services defines the shared error taxonomy and context helpers used
// by every pipeline component.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, part indices, and batch indices so
//     log lines can be correlated back to the part being built.
//   - Structured error markers plus the Wrap helper. Markers encode the
//     recovery tier: item failures are skipped, batch failures drop one
//     window, part failures stop the run, run failures exit non-zero.
//
// Use these helpers when wiring new pipeline logic so failure handling and
// observability stay uniform across components.
package services

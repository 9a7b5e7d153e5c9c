// Package preflight provides readiness checks for the filesystem paths and
// external binaries chronoreel depends on.
//
// These checks run in two contexts:
//   - The runner calls RunAll before a build. If any check fails, the run
//     stops before the output directory is reset.
//   - The CLI "chronoreel doctor" command renders every result.
package preflight

// Package preflight provides readiness checks for the external tools
// and filesystem paths that mixdown depends on.
//
// These checks run in two contexts:
//   - The batch command verifies tool availability and free space before
//     starting a run, so a doomed run fails fast instead of midway through.
//   - The CLI "mixdown status" command uses RunAll to render environment
//     health as status lines.
//
// The free-space check is disabled when batch.min_free_gib is zero.
package preflight

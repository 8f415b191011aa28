// Package services defines shared utilities consumed by the external tool
// clients and the batch runner.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     (probe vs invalid input vs processing) for history records and
//     user-facing summaries.
//   - Context helpers that stamp batch run IDs and in-flight input paths
//     for logging.
//
// Use these helpers when wiring new tool integrations so error handling and
// observability stay uniform across the CLI.
package services

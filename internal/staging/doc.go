// Package staging manages scratch directories for in-flight mixes.
//
// Each mix gets its own uniquely named session under the configured staging
// root. Outputs are written inside the session and either exported to their
// final destination or left in place when no destination was requested.
// CleanStale reclaims sessions abandoned by interrupted runs.
package staging

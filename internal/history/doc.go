// Package history persists batch runs and per-file outcomes in SQLite so
// past invocations can be listed, inspected, and cleared from the CLI. It is
// an audit log: rows never feed back into mixing decisions.
package history

package history

import (
	"time"
)

// Run represents one batch invocation persisted in SQLite.
type Run struct {
	ID         string
	Source     string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt *time.Time
	Succeeded  int
	Failed     int
}

// Finished reports whether the run has been finalized.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// Duration returns the wall-clock span of a finished run, zero otherwise.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome records one file's result within a run. Output is empty when the
// file failed; Error is empty when it succeeded.
type Outcome struct {
	ID         int64
	RunID      string
	Input      string
	Output     string
	Title      string
	Streams    int
	Error      string
	Kind       string
	DurationMS int64
	CreatedAt  time.Time
}

// Failed reports whether the file could not be processed.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// DatabaseHealth captures diagnostic information about the history database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalRuns        int
	Error            string
}

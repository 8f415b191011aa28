package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// batchProgress renders a terminal progress bar for batch runs. On
// non-terminal outputs it stays nil and the per-file log lines carry the
// progress instead.
type batchProgress struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

func startBatchProgress(out io.Writer, total int) *batchProgress {
	if !shouldColorize(out) || total <= 0 {
		return nil
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetNumTrackersExpected(1)
	pw.SetUpdateFrequency(100 * time.Millisecond)

	tracker := &progress.Tracker{
		Message: fmt.Sprintf("Mixing %d file(s)", total),
		Total:   int64(total),
	}
	pw.AppendTracker(tracker)
	go pw.Render()

	return &batchProgress{writer: pw, tracker: tracker}
}

func (p *batchProgress) increment() {
	if p == nil {
		return
	}
	p.tracker.Increment(1)
}

func (p *batchProgress) finish() {
	if p == nil {
		return
	}
	p.tracker.MarkAsDone()
	p.writer.Stop()
	for p.writer.IsRenderInProgress() {
		time.Sleep(5 * time.Millisecond)
	}
}

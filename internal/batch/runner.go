package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"mixdown/internal/logging"
	"mixdown/internal/media/audio"
	"mixdown/internal/services"
	"mixdown/internal/services/ffmpeg"
)

const lockFileName = "mixdown.lock"

// Request describes a batch traversal over a source tree.
type Request struct {
	// Source is the directory scanned for video files.
	Source string
	// Output is the root the mixed files are written under, mirroring each
	// input's path relative to Source.
	Output string
	// Extensions filters discovery; DefaultExtensions when empty.
	Extensions []string
	// OutputExt is the container extension forced on outputs, ".mp4" when empty.
	OutputExt string
}

// Outcome records the result of one processed file. Exactly one of Output
// and Err is set.
type Outcome struct {
	Input   string
	Output  string
	Err     string
	Kind    services.Kind
	Streams int
	Elapsed time.Duration
}

// Failed reports whether the file could not be processed.
func (o Outcome) Failed() bool {
	return o.Err != ""
}

// Summary aggregates a finished or stopped run.
type Summary struct {
	Found     int
	Succeeded int
	Failed    int
}

// Runner mixes every video file under a source tree, one file at a time.
type Runner struct {
	mixer  ffmpeg.Mixer
	logger *slog.Logger
}

// NewRunner constructs a batch runner.
func NewRunner(mixer ffmpeg.Mixer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{mixer: mixer, logger: logger}
}

// Run discovers the source tree's video files and mixes each one's audio
// streams at unity volume into a single track, writing outputs under the
// request's output root. Every file produces exactly one Outcome, delivered
// through emit after the file finishes; a failure never aborts the run.
// Returning false from emit stops the run before the next file begins.
func (r *Runner) Run(ctx context.Context, req Request, emit func(Outcome) bool) (Summary, error) {
	var summary Summary

	info, err := os.Stat(req.Source)
	if err != nil {
		return summary, services.Wrap(services.ErrNotFound, "batch", "scan", req.Source, err)
	}
	if !info.IsDir() {
		return summary, services.Wrap(services.ErrInvalidInput, "batch", "scan", req.Source+" is not a directory", nil)
	}

	if err := os.MkdirAll(req.Output, 0o755); err != nil {
		return summary, services.Wrap(services.ErrProcessing, "batch", "prepare output", req.Output, err)
	}

	lock := flock.New(filepath.Join(req.Output, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, services.Wrap(services.ErrProcessing, "batch", "lock output", req.Output, err)
	}
	if !locked {
		return summary, services.Wrap(services.ErrInvalidInput, "batch", "lock output", "another batch run is writing to "+req.Output, nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	files, err := Discover(req.Source, req.Extensions)
	if err != nil {
		return summary, services.Wrap(services.ErrProcessing, "batch", "scan", req.Source, err)
	}
	summary.Found = len(files)

	runID, _ := services.RunIDFromContext(ctx)
	r.logger.Info("batch run started",
		logging.String("run_id", runID),
		logging.String("source", req.Source),
		logging.String("output", req.Output),
		logging.Int("files", len(files)))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome := r.processFile(services.WithInputPath(ctx, file), req, file)
		if outcome.Failed() {
			summary.Failed++
			r.logger.Warn("file failed",
				logging.String("run_id", runID),
				logging.String("input", outcome.Input),
				logging.String("error", outcome.Err))
		} else {
			summary.Succeeded++
			r.logger.Info("file mixed",
				logging.String("run_id", runID),
				logging.String("input", outcome.Input),
				logging.String("output", outcome.Output),
				logging.Int("streams", outcome.Streams),
				logging.Duration("elapsed", outcome.Elapsed))
		}
		if emit != nil && !emit(outcome) {
			return summary, nil
		}
	}

	return summary, nil
}

func (r *Runner) processFile(ctx context.Context, req Request, file string) Outcome {
	start := time.Now()
	outcome := Outcome{Input: file}

	target, err := mirrorPath(req.Source, req.Output, file, req.OutputExt)
	if err != nil {
		return outcome.fail(services.Wrap(services.ErrProcessing, "batch", "resolve output", file, err), start)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return outcome.fail(services.Wrap(services.ErrProcessing, "batch", "prepare output", filepath.Dir(target), err), start)
	}

	streams, err := r.mixer.ExtractAudioStreams(ctx, file)
	if err != nil {
		return outcome.fail(err, start)
	}
	outcome.Streams = len(streams)
	if len(streams) == 0 {
		outcome.Err = "No audio streams found"
		outcome.Kind = services.KindInvalidInput
		outcome.Elapsed = time.Since(start)
		return outcome
	}

	err = r.mixer.Mix(ctx, ffmpeg.MixRequest{
		Input:   file,
		Output:  target,
		Volumes: audio.UnityVolumes(streams),
	})
	if err != nil {
		return outcome.fail(err, start)
	}

	outcome.Output = target
	outcome.Elapsed = time.Since(start)
	return outcome
}

func (o Outcome) fail(err error, start time.Time) Outcome {
	o.Err = err.Error()
	o.Kind = services.FailureKind(err)
	o.Elapsed = time.Since(start)
	return o
}

// mirrorPath maps an input file to its output location: the path relative to
// the source root, re-rooted under the output root, with the container
// extension replaced.
func mirrorPath(sourceRoot, outputRoot, input, outputExt string) (string, error) {
	rel, err := filepath.Rel(sourceRoot, input)
	if err != nil {
		return "", fmt.Errorf("relativize %s: %w", input, err)
	}
	if outputExt = strings.TrimSpace(outputExt); outputExt == "" {
		outputExt = ".mp4"
	}
	target := filepath.Join(outputRoot, rel)
	return strings.TrimSuffix(target, filepath.Ext(target)) + outputExt, nil
}

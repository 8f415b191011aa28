package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mixdown/internal/batch"
	"mixdown/internal/config"
	"mixdown/internal/history"
	"mixdown/internal/logging"
	"mixdown/internal/preflight"
	"mixdown/internal/services"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var yes bool
	var extensions []string

	cmd := &cobra.Command{
		Use:   "batch <source>",
		Short: "Mix every video under a directory tree",
		Long: `Batch discovers video files under the source directory, mixes each one's
audio streams into a single track at unity volume, and writes the results
under the output root, mirroring the source layout. A failed file is
reported and skipped; it never stops the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(source)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", source, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory; use 'mixdown mix' for single files", source)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			mixer, err := ctx.mixer()
			if err != nil {
				return err
			}

			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				if !status.Available && !status.Optional {
					return services.Wrap(services.ErrConfiguration, "batch", "preflight",
						fmt.Sprintf("%s unavailable: %s", status.Name, status.Detail), nil)
				}
			}

			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output = defaultBatchOutput(source, cfg.Output.BatchSuffix)
			} else if output, err = config.ExpandPath(output); err != nil {
				return err
			}

			if check := preflight.CheckFreeSpace("output space", output, cfg.Batch.MinFreeGiB); !check.Passed {
				return services.Wrap(services.ErrConfiguration, "batch", "preflight", check.Detail, nil)
			}

			exts := cfg.Batch.Extensions
			if len(extensions) > 0 {
				exts = extensions
			}

			files, err := batch.Discover(source, exts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No video files found under %s\n", source)
				return nil
			}

			fmt.Fprintf(out, "Found %d video file(s) under %s:\n", len(files), source)
			for _, file := range files {
				fmt.Fprintf(out, "  %s\n", relativeTo(source, file))
			}
			fmt.Fprintf(out, "Output root: %s\n", output)

			if !yes && !confirmBatch(cmd, len(files)) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			return ctx.withStore(func(store *history.Store) error {
				run, err := store.StartRun(cmd.Context(), source, output)
				if err != nil {
					return err
				}

				runCtx := services.WithRunID(cmd.Context(), run.ID)
				notifier := ctx.notifier()
				_ = notifier.NotifyBatchStarted(runCtx, source, len(files))

				runner := batch.NewRunner(mixer, logging.NewComponentLogger(logger, "batch"))
				progress := startBatchProgress(out, len(files))
				var outcomes []batch.Outcome

				start := time.Now()
				summary, runErr := runner.Run(runCtx, batch.Request{
					Source:     source,
					Output:     output,
					Extensions: exts,
					OutputExt:  cfg.Output.Extension,
				}, func(outcome batch.Outcome) bool {
					outcomes = append(outcomes, outcome)
					if err := store.RecordOutcome(runCtx, history.Outcome{
						RunID:      run.ID,
						Input:      outcome.Input,
						Output:     outcome.Output,
						Title:      history.DisplayTitle(outcome.Input),
						Streams:    outcome.Streams,
						Error:      outcome.Err,
						Kind:       string(outcome.Kind),
						DurationMS: outcome.Elapsed.Milliseconds(),
					}); err != nil {
						logger.Warn("failed to record outcome",
							logging.String("input", outcome.Input),
							logging.Error(err))
					}
					progress.increment()
					return true
				})
				progress.finish()
				elapsed := time.Since(start)

				if finishErr := store.FinishRun(runCtx, run.ID, summary.Succeeded, summary.Failed); finishErr != nil {
					logger.Warn("failed to finalize run", logging.Error(finishErr))
				}
				if runErr != nil {
					_ = notifier.NotifyError(runCtx, runErr, filepath.Base(source))
					return runErr
				}
				_ = notifier.NotifyBatchCompleted(runCtx, summary.Succeeded, summary.Failed, elapsed)

				renderBatchSummary(out, source, outcomes)
				fmt.Fprintf(out, "Succeeded: %d  Failed: %d  (%d file(s) in %s)\n",
					summary.Succeeded, summary.Failed, summary.Found, formatDuration(elapsed))
				fmt.Fprintf(out, "Run recorded as %s\n", shortRunID(run.ID))

				if summary.Failed > 0 {
					return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Found)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output root (default: sibling <source>_mixed directory)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "Container extensions to process (default from config)")
	return cmd
}

// confirmBatch prompts on interactive terminals; non-interactive runs proceed
// so pipelines do not hang waiting for input.
func confirmBatch(cmd *cobra.Command, count int) bool {
	in := cmd.InOrStdin()
	if !isInteractive(in) {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Process %d file(s)? [Y/n]: ", count)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

func defaultBatchOutput(source, suffix string) string {
	return filepath.Clean(source) + suffix
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

func renderBatchSummary(out io.Writer, source string, outcomes []batch.Outcome) {
	if len(outcomes) == 0 {
		return
	}
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		result := "ok"
		detail := outcome.Output
		if outcome.Failed() {
			result = "failed"
			detail = outcome.Err
		}
		rows = append(rows, []string{
			relativeTo(source, outcome.Input),
			result,
			strconv.Itoa(outcome.Streams),
			detail,
		})
	}
	tableStr := renderTable(
		[]string{"File", "Result", "Streams", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
	fmt.Fprintln(out, tableStr)
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mixdown/internal/history"
)

const historyTimeFormat = "2006-01-02 15:04"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, ctx, limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, ctx, limit)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")

	showCmd := &cobra.Command{
		Use:   "show <run>",
		Short: "Show one run with its per-file outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				run, err := store.FindRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Source:   %s\n", run.Source)
				fmt.Fprintf(out, "Output:   %s\n", run.OutputDir)
				fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
				if run.Finished() {
					fmt.Fprintf(out, "Finished: %s (%s)\n", run.FinishedAt.Local().Format(time.RFC3339), formatDuration(run.Duration()))
				} else {
					fmt.Fprintln(out, "Finished: still running or interrupted")
				}
				fmt.Fprintf(out, "Result:   %d succeeded, %d failed\n", run.Succeeded, run.Failed)

				outcomes, err := store.OutcomesForRun(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if len(outcomes) == 0 {
					fmt.Fprintln(out, "No outcomes recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Title", "Result", "Streams", "Duration", "Detail"},
					buildOutcomeRows(outcomes),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d run(s)\n", removed)
				return nil
			})
		},
	}

	historyCmd.AddCommand(listCmd)
	historyCmd.AddCommand(showCmd)
	historyCmd.AddCommand(clearCmd)
	return historyCmd
}

func runHistoryList(cmd *cobra.Command, ctx *commandContext, limit int) error {
	return ctx.withStore(func(store *history.Store) error {
		runs, err := store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No batch runs recorded")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Run", "Started", "Source", "Succeeded", "Failed", "Duration"},
			buildRunRows(runs),
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
		))
		return nil
	})
}

func buildRunRows(runs []*history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.Finished() {
			duration = formatDuration(run.Duration())
		}
		rows = append(rows, []string{
			shortRunID(run.ID),
			run.StartedAt.Local().Format(historyTimeFormat),
			run.Source,
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Failed),
			duration,
		})
	}
	return rows
}

func buildOutcomeRows(outcomes []*history.Outcome) [][]string {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		result := "ok"
		detail := outcome.Output
		if outcome.Failed() {
			result = "failed"
			detail = outcome.Error
			if outcome.Kind != "" {
				result = "failed (" + outcome.Kind + ")"
			}
		}
		rows = append(rows, []string{
			outcome.Title,
			result,
			strconv.Itoa(outcome.Streams),
			formatDuration(time.Duration(outcome.DurationMS) * time.Millisecond),
			detail,
		})
	}
	return rows
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mixdown/internal/history"
	"mixdown/internal/preflight"
	"mixdown/internal/staging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var clean bool

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, external tools, staging, and history health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			configDetail := ctx.configPath()
			if configDetail == "" {
				configDetail = "built-in defaults"
			}
			fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, configDetail, colorize))
			fmt.Fprintln(out, renderStatusLine("Staging directory", statusInfo, cfg.Paths.StagingDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Log directory", statusInfo, cfg.Paths.LogDir, colorize))
			fmt.Fprintln(out, renderStatusLine("History database", statusInfo, cfg.Paths.HistoryDB, colorize))
			if cfg.Notifications.NtfyTopic != "" {
				fmt.Fprintln(out, renderStatusLine("Notifications", statusOK, "ntfy topic configured", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Notifications", statusInfo, "Disabled", colorize))
			}
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Staging", colorize) {
				fmt.Fprintln(out, line)
			}
			if clean {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				maxAge := time.Duration(cfg.Staging.RetentionHours) * time.Hour
				result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, maxAge, logger)
				fmt.Fprintln(out, renderStatusLine("Cleanup", statusOK, fmt.Sprintf("removed %d stale session(s)", len(result.Removed)), colorize))
				for _, cleanupErr := range result.Errors {
					fmt.Fprintln(out, renderStatusLine("Cleanup", statusWarn, fmt.Sprintf("%s: %v", cleanupErr.Path, cleanupErr.Error), colorize))
				}
			}
			renderStagingSessions(out, cfg.Paths.StagingDir, colorize)
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("History", colorize) {
				fmt.Fprintln(out, line)
			}
			if err := ctx.withStore(func(store *history.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				renderHistoryHealth(out, health, err, colorize)
				return nil
			}); err != nil {
				fmt.Fprintln(out, renderStatusLine("Database", statusError, err.Error(), colorize))
			}
			return nil
		},
	}
	statusCmd.Flags().BoolVar(&clean, "clean", false, "Remove staging sessions older than the retention window")
	return statusCmd
}

func renderStagingSessions(out io.Writer, stagingDir string, colorize bool) {
	dirs, err := staging.ListDirectories(stagingDir)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Sessions", statusError, err.Error(), colorize))
		return
	}
	if len(dirs) == 0 {
		fmt.Fprintln(out, renderStatusLine("Sessions", statusOK, "None", colorize))
		return
	}
	var total int64
	for _, dir := range dirs {
		total += dir.Size
	}
	detail := fmt.Sprintf("%d director%s, %s (clean with 'mixdown status --clean')",
		len(dirs), pluralY(len(dirs)), formatBytes(total))
	fmt.Fprintln(out, renderStatusLine("Sessions", statusWarn, detail, colorize))
}

func renderHistoryHealth(out io.Writer, health history.DatabaseHealth, err error, colorize bool) {
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Database", statusError, err.Error(), colorize))
		return
	}
	if !health.DatabaseExists {
		fmt.Fprintln(out, renderStatusLine("Database", statusInfo, "Not created yet", colorize))
		return
	}
	fmt.Fprintln(out, renderStatusLine("Database", statusOK, health.DBPath, colorize))
	if len(health.MissingColumns) > 0 {
		fmt.Fprintln(out, renderStatusLine("Schema", statusError, fmt.Sprintf("missing columns: %v", health.MissingColumns), colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Schema", statusOK, health.SchemaVersion, colorize))
	}
	integrity := statusError
	integrityDetail := "failed"
	if health.IntegrityCheck {
		integrity = statusOK
		integrityDetail = "ok"
	}
	fmt.Fprintln(out, renderStatusLine("Integrity", integrity, integrityDetail, colorize))
	fmt.Fprintln(out, renderStatusLine("Recorded runs", statusInfo, strconv.Itoa(health.TotalRuns), colorize))
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

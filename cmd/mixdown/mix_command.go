package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mixdown/internal/config"
	"mixdown/internal/logging"
	"mixdown/internal/media/audio"
	"mixdown/internal/services"
	"mixdown/internal/services/ffmpeg"
	"mixdown/internal/staging"
)

func newMixCommand(ctx *commandContext) *cobra.Command {
	var volumeFlags []string
	var allStreams bool
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "mix <file>",
		Short: "Mix a video's audio streams into one track",
		Long: `Mix combines the selected audio streams of a video, each scaled by its
own volume, into a single AAC track while the video stream is copied
unmodified. Without --volume every stream joins the mix at unity volume.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if info, err := os.Stat(input); err != nil {
				return fmt.Errorf("inspect %s: %w", input, err)
			} else if info.IsDir() {
				return fmt.Errorf("%s is a directory; use 'mixdown batch' for directories", input)
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

			runCtx := services.WithInputPath(cmd.Context(), input)
			log := logging.WithContext(runCtx, logging.NewComponentLogger(logger, "mix"))

			streams, err := mixer.ExtractAudioStreams(runCtx, input)
			if err != nil {
				return err
			}
			if len(streams) == 0 {
				return services.Wrap(services.ErrInvalidInput, "mix", "probe", "no audio streams in "+input, nil)
			}

			volumes, err := resolveVolumes(volumeFlags, allStreams, streams)
			if err != nil {
				return err
			}

			target, err := resolveMixTarget(outputFlag, input, cfg)
			if err != nil {
				return err
			}

			session, err := staging.NewSession(cfg.Paths.StagingDir)
			if err != nil {
				return err
			}
			defer func() {
				_ = session.Close()
			}()

			staged := session.OutputPath(filepath.Base(target))
			start := time.Now()
			if err := mixer.Mix(runCtx, ffmpeg.MixRequest{
				Input:   input,
				Output:  staged,
				Volumes: volumes,
			}); err != nil {
				_ = ctx.notifier().NotifyError(runCtx, err, filepath.Base(input))
				return err
			}
			if err := session.Export(staged, target); err != nil {
				return err
			}

			log.Info("mix completed",
				logging.String("output", target),
				logging.Int("streams", len(volumes)),
				logging.Duration("elapsed", time.Since(start)))

			fmt.Fprintf(cmd.OutOrStdout(), "Mixed %d stream(s) into %s\n", len(volumes), target)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&volumeFlags, "volume", "v", nil, "Per-stream volume as <stream>=<multiplier> or <stream>=<percent>% (repeatable)")
	cmd.Flags().BoolVar(&allStreams, "all", false, "Include unlisted streams at unity volume")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path (default: <name>_mixed.mp4 in the working directory)")
	return cmd
}

// resolveVolumes builds the final volume map from flag values. No flags means
// every stream at unity; explicit flags select exactly the listed streams
// unless --all backfills the rest.
func resolveVolumes(volumeFlags []string, allStreams bool, streams []audio.StreamInfo) (map[int]float64, error) {
	volumes, err := parseVolumeFlags(volumeFlags)
	if err != nil {
		return nil, err
	}
	if len(volumes) == 0 {
		return audio.UnityVolumes(streams), nil
	}

	for index := range volumes {
		if index >= len(streams) {
			return nil, fmt.Errorf("stream %d does not exist (found %d audio streams)", index, len(streams))
		}
	}
	if allStreams {
		for _, stream := range streams {
			if _, ok := volumes[stream.Index]; !ok {
				volumes[stream.Index] = 1.0
			}
		}
	}
	return volumes, nil
}

func resolveMixTarget(outputFlag, input string, cfg *config.Config) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	defaultName := stem + cfg.Output.BatchSuffix + cfg.Output.Extension

	if strings.TrimSpace(outputFlag) == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		return filepath.Join(cwd, defaultName), nil
	}

	target, err := config.ExpandPath(outputFlag)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return filepath.Join(target, defaultName), nil
	}
	return target, nil
}

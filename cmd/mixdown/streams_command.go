package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"mixdown/internal/config"
	"mixdown/internal/media/audio"
)

// streamView is the machine-readable projection of one audio stream.
type streamView struct {
	Index         int     `json:"index"`
	StreamIndex   int     `json:"stream_index"`
	Codec         string  `json:"codec"`
	SampleRate    int     `json:"sample_rate"`
	Channels      int     `json:"channels"`
	ChannelLayout string  `json:"channel_layout,omitempty"`
	Language      string  `json:"language,omitempty"`
	Title         string  `json:"title,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
	Label         string  `json:"label"`
}

func newStreamsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "streams <file>",
		Short: "List a video's audio streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}

			mixer, err := ctx.mixer()
			if err != nil {
				return err
			}
			streams, err := mixer.ExtractAudioStreams(cmd.Context(), path)
			if err != nil {
				return err
			}

			if jsonOutput {
				views := make([]streamView, 0, len(streams))
				for _, stream := range streams {
					views = append(views, streamView{
						Index:         stream.Index,
						StreamIndex:   stream.StreamIndex,
						Codec:         stream.Codec,
						SampleRate:    stream.SampleRate,
						Channels:      stream.Channels,
						ChannelLayout: stream.ChannelLayout,
						Language:      stream.Language,
						Title:         stream.Title,
						Duration:      stream.Duration,
						Label:         stream.DisplayName(),
					})
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(streams) == 0 {
				fmt.Fprintln(out, "No audio streams found")
				return nil
			}
			tableStr := renderTable(
				[]string{"#", "Label", "Layout", "Duration"},
				buildStreamRows(streams),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			)
			fmt.Fprintln(out, tableStr)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit streams as JSON")
	return cmd
}

func buildStreamRows(streams []audio.StreamInfo) [][]string {
	rows := make([][]string, 0, len(streams))
	for _, stream := range streams {
		layout := stream.ChannelLayout
		if layout == "" {
			layout = "-"
		}
		duration := "-"
		if stream.Duration > 0 {
			duration = strconv.FormatFloat(stream.Duration, 'f', 1, 64) + "s"
		}
		rows = append(rows, []string{
			strconv.Itoa(stream.Index),
			stream.DisplayName(),
			layout,
			duration,
		})
	}
	return rows
}

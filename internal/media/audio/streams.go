package audio

import (
	"fmt"
	"strconv"
	"strings"

	"mixdown/internal/media/ffprobe"
)

// StreamInfo describes a single audio stream within a media container.
type StreamInfo struct {
	// Index is the stream's position among the container's audio streams,
	// starting at 0. This is the index ffmpeg's a:N selector expects.
	Index int
	// StreamIndex is the absolute stream index within the container.
	StreamIndex int
	// Codec is the short codec name, "unknown" when ffprobe omits it.
	Codec string
	// SampleRate is the sample rate in hertz, 0 when unavailable.
	SampleRate int
	// Channels is the channel count, 0 when unavailable.
	Channels int
	// ChannelLayout is ffprobe's layout string ("stereo", "5.1"), may be empty.
	ChannelLayout string
	// Language is the lowercased language tag, may be empty.
	Language string
	// Title is the stream title tag, may be empty.
	Title string
	// Duration is the stream duration in seconds, 0 when unavailable.
	Duration float64
}

// DisplayName returns a one-line label for stream pickers and tables,
// for example "Stream 1 (Commentary) [EN] - AAC 2ch @ 48kHz".
func (s StreamInfo) DisplayName() string {
	parts := make([]string, 0, 6)
	parts = append(parts, fmt.Sprintf("Stream %d", s.Index))
	if s.Title != "" {
		parts = append(parts, "("+s.Title+")")
	}
	if s.Language != "" {
		parts = append(parts, "["+strings.ToUpper(s.Language)+"]")
	}
	parts = append(parts, "- "+strings.ToUpper(s.Codec))
	parts = append(parts, strconv.Itoa(s.Channels)+"ch")
	if s.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("@ %dkHz", s.SampleRate/1000))
	}
	return strings.Join(parts, " ")
}

// FromProbe catalogs the audio streams in a probe result, preserving the
// container's stream order. Non-audio streams are skipped, so the returned
// indices are contiguous from 0. Missing metadata falls back to defaults
// rather than failing; a container with no audio yields an empty slice.
func FromProbe(result ffprobe.Result) []StreamInfo {
	streams := make([]StreamInfo, 0, result.AudioStreamCount())
	for _, stream := range result.Streams {
		if !stream.IsAudio() {
			continue
		}
		streams = append(streams, StreamInfo{
			Index:         len(streams),
			StreamIndex:   stream.Index,
			Codec:         normalizeCodec(stream.CodecName),
			SampleRate:    stream.SampleRateHz(),
			Channels:      stream.Channels,
			ChannelLayout: strings.TrimSpace(stream.ChannelLayout),
			Language:      normalizeLanguage(stream),
			Title:         normalizeTitle(stream),
			Duration:      stream.DurationSeconds(),
		})
	}
	return streams
}

// UnityVolumes maps every cataloged stream's audio index to a 1.0 multiplier.
func UnityVolumes(streams []StreamInfo) map[int]float64 {
	volumes := make(map[int]float64, len(streams))
	for _, stream := range streams {
		volumes[stream.Index] = 1.0
	}
	return volumes
}

func normalizeCodec(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	return name
}

func normalizeLanguage(stream ffprobe.Stream) string {
	for _, key := range []string{"language", "language_ietf", "lang"} {
		if value := stream.Tag(key); value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}

func normalizeTitle(stream ffprobe.Stream) string {
	return stream.Tag("title")
}

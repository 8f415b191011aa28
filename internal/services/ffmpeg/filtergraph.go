package ffmpeg

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// buildFilterGraph renders the filter_complex expression for a volume map and
// returns the graph plus the label of its final audio output. Stream indices
// are processed in ascending order so the graph is deterministic. One stream
// gets its volume branch mapped directly; several are merged through amix,
// which keeps the longest input's duration and leaves levels unscaled so the
// per-stream multipliers stay authoritative.
func buildFilterGraph(volumes map[int]float64) (string, string) {
	indices := make([]int, 0, len(volumes))
	for index := range volumes {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	branches := make([]string, 0, len(indices))
	labels := make([]string, 0, len(indices))
	for n, index := range indices {
		label := fmt.Sprintf("[a%d]", n)
		branches = append(branches, fmt.Sprintf("[0:a:%d]volume=%s%s", index, formatVolume(volumes[index]), label))
		labels = append(labels, label)
	}

	if len(branches) == 1 {
		return branches[0], labels[0]
	}

	mix := fmt.Sprintf("%samix=inputs=%d:duration=longest:normalize=0[aout]", strings.Join(labels, ""), len(labels))
	return strings.Join(branches, ";") + ";" + mix, "[aout]"
}

func formatVolume(volume float64) string {
	return strconv.FormatFloat(volume, 'g', -1, 64)
}

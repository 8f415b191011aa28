package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseVolumeFlags converts repeated --volume values ("0=1.5", "1=80%") into
// a volume map keyed by audio stream index. The percent form mirrors the
// 0-200% range a mixing slider offers; bare multipliers only need to be
// finite and non-negative.
func parseVolumeFlags(values []string) (map[int]float64, error) {
	if len(values) == 0 {
		return nil, nil
	}

	volumes := make(map[int]float64, len(values))
	for _, value := range values {
		index, volume, err := parseVolumeFlag(value)
		if err != nil {
			return nil, err
		}
		if _, ok := volumes[index]; ok {
			return nil, fmt.Errorf("duplicate volume for stream %d", index)
		}
		volumes[index] = volume
	}
	return volumes, nil
}

func parseVolumeFlag(value string) (int, float64, error) {
	raw := strings.TrimSpace(value)
	indexPart, volumePart, found := strings.Cut(raw, "=")
	if !found {
		return 0, 0, fmt.Errorf("invalid volume %q: expected <stream>=<multiplier> or <stream>=<percent>%%", raw)
	}

	index, err := strconv.Atoi(strings.TrimSpace(indexPart))
	if err != nil || index < 0 {
		return 0, 0, fmt.Errorf("invalid stream index in volume %q", raw)
	}

	volumePart = strings.TrimSpace(volumePart)
	if percentPart, ok := strings.CutSuffix(volumePart, "%"); ok {
		percent, err := strconv.ParseFloat(strings.TrimSpace(percentPart), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid percent in volume %q", raw)
		}
		if percent < 0 || percent > 200 {
			return 0, 0, fmt.Errorf("volume percent %g out of range 0-200 in %q", percent, raw)
		}
		return index, percent / 100, nil
	}

	multiplier, err := strconv.ParseFloat(volumePart, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid multiplier in volume %q", raw)
	}
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier < 0 {
		return 0, 0, fmt.Errorf("volume multiplier %g must be finite and non-negative in %q", multiplier, raw)
	}
	return index, multiplier, nil
}

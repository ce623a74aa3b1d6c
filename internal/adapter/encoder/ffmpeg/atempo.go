package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// atempo accepts multipliers in [atempoMin, atempoMax] per filter pass.
const (
	atempoMin = 0.5
	atempoMax = 2.0
)

// atempoChain builds an -af expression for the given tempo multiplier.
// Multipliers outside the single-pass range are factored into a chain
// of in-range passes, e.g. 3.0 -> "atempo=2,atempo=1.5".
func atempoChain(speed float64) (string, error) {
	if speed <= 0 {
		return "", fmt.Errorf("tempo multiplier must be positive, got %v", speed)
	}

	var passes []string
	for speed > atempoMax {
		passes = append(passes, formatTempo(atempoMax))
		speed /= atempoMax
	}
	for speed < atempoMin {
		passes = append(passes, formatTempo(atempoMin))
		speed /= atempoMin
	}
	passes = append(passes, formatTempo(speed))

	return strings.Join(passes, ","), nil
}

func formatTempo(v float64) string {
	return "atempo=" + strconv.FormatFloat(v, 'f', -1, 64)
}

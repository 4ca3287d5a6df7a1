package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// All coordinates are kept in micro-points to avoid cumulative rounding
// errors across many incremental layout steps.
const MicroPointsPerPoint = 1000

// FromPoints converts points to micro-points, rounding half away from zero.
func FromPoints(pt float64) int64 {
	return int64(math.Round(pt * MicroPointsPerPoint))
}

// ToPoints converts micro-points back to points.
func ToPoints(v int64) float64 {
	return float64(v) / MicroPointsPerPoint
}

// points per unit
var unitScale = map[string]float64{
	"pt": 1,
	"in": 72,
	"cm": 72 / 2.54,
	"mm": 72 / 25.4,
}

// ParseLength parses length like "12pt", "2.5cm" or "10" (points) into
// micro-points.
func ParseLength(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("empty length")
	}
	scale := 1.0
	for suffix, v := range unitScale {
		if strings.HasSuffix(s, suffix) {
			s, scale = strings.TrimSpace(strings.TrimSuffix(s, suffix)), v
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad length %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("bad length %q", s)
	}
	return FromPoints(f * scale), nil
}

// FormatLength renders micro-points as points for logs and dumps.
func FormatLength(v int64) string {
	return strconv.FormatFloat(ToPoints(v), 'f', -1, 64) + "pt"
}

package dashboard

import (
	"math"
	"strings"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of unicode block characters exactly
// width cells wide. Longer inputs are averaged into width buckets; shorter
// inputs are stretched. A flat series renders at mid height.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	samples := resample(values, width)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range samples {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	top := len(sparkLevels) - 1
	for _, v := range samples {
		level := top / 2
		if hi > lo {
			level = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}

// resample maps values onto exactly n samples.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) <= n {
		for i := range out {
			out[i] = values[i*len(values)/n]
		}
		return out
	}
	for i := range out {
		start := i * len(values) / n
		end := (i + 1) * len(values) / n
		sum := 0.0
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

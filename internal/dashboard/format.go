package dashboard

import (
	"fmt"
	"math"
)

// Up and down markers used next to percent changes.
const (
	UpArrow   = "▲"
	DownArrow = "▼"
)

// FormatPrice formats a price with two decimals, or "-" for zero/NaN.
func FormatPrice(p float64) string {
	if p == 0 || math.IsNaN(p) {
		return "-"
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatSigned formats v with an explicit sign and two decimals.
func FormatSigned(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}

// FormatPercentChange formats a percent change with an arrow, e.g.
// "▲ +1.23%" or "▼ -0.50%". Zero counts as up.
func FormatPercentChange(pct float64) string {
	arrow := UpArrow
	if pct < 0 {
		arrow = DownArrow
	}
	return fmt.Sprintf("%s %+.2f%%", arrow, pct)
}

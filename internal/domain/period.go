package domain

// Period pairs a display label with a provider period code.
type Period struct {
	Label string
	Code  string
}

// IntradayPeriod is the period code that selects 5-minute granularity.
const IntradayPeriod = "1d"

// Periods is the fixed set of selectable chart periods, in display order.
var Periods = []Period{
	{Label: "1D", Code: "1d"},
	{Label: "1W", Code: "7d"},
	{Label: "1M", Code: "1mo"},
	{Label: "3M", Code: "3mo"},
	{Label: "6M", Code: "6mo"},
	{Label: "YTD", Code: "ytd"},
	{Label: "1Y", Code: "1y"},
	{Label: "2Y", Code: "2y"},
	{Label: "5Y", Code: "5y"},
	{Label: "10Y", Code: "10y"},
	{Label: "MAX", Code: "max"},
}

// IntervalFor returns the sampling interval used for a period code:
// 5-minute bars for a single day, daily bars otherwise.
func IntervalFor(periodCode string) string {
	if periodCode == IntradayPeriod {
		return "5m"
	}
	return "1d"
}

// PeriodByCode returns the index of the period with the given code.
func PeriodByCode(code string) (int, bool) {
	for i, p := range Periods {
		if p.Code == code {
			return i, true
		}
	}
	return 0, false
}

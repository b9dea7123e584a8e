package lastfm

import "strings"

// Period is a reporting window for top-list queries.
type Period string

// The six reporting windows recognized by the Last.fm API.
const (
	Period7Day    Period = "7day"
	Period1Month  Period = "1month"
	Period3Month  Period = "3month"
	Period6Month  Period = "6month"
	Period12Month Period = "12month"
	PeriodOverall Period = "overall"
)

// DefaultPeriod is used when a query does not name a window.
var DefaultPeriod = Period7Day

var validPeriods = []Period{
	Period7Day,
	Period1Month,
	Period3Month,
	Period6Month,
	Period12Month,
	PeriodOverall,
}

// ParsePeriod matches s against the period enumeration, case-insensitively.
// Only exact matches are recognized.
func ParsePeriod(s string) (Period, bool) {
	lower := strings.ToLower(s)
	for _, p := range validPeriods {
		if lower == string(p) {
			return p, true
		}
	}
	return "", false
}

// Periods returns the valid period tokens in canonical order.
func Periods() []Period {
	out := make([]Period, len(validPeriods))
	copy(out, validPeriods)
	return out
}

func (p Period) String() string {
	return string(p)
}

package marketdata

import (
	"regexp"
	"strconv"
	"time"

	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// Period is a look-back window such as "7d", "3mo" or "1y".
type Period struct {
	raw    string
	amount int
	unit   string
}

var periodPattern = regexp.MustCompile(`^(\d+)(d|wk|mo|y)$`)

// ParsePeriod parses "<n>d", "<n>wk", "<n>mo" or "<n>y" with n > 0.
func ParsePeriod(s string) (Period, error) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return Period{}, errors.Newf(errors.ErrCodeInvalidPeriod, "invalid period %q, expected e.g. 5d, 1wk, 3mo, 1y", s)
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil || amount <= 0 {
		return Period{}, errors.Newf(errors.ErrCodeInvalidPeriod, "invalid period %q: amount must be positive", s)
	}

	return Period{raw: s, amount: amount, unit: m[2]}, nil
}

// MustParsePeriod is ParsePeriod for constants; it panics on bad input.
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}

	return p
}

// String returns the period as written.
func (p Period) String() string {
	return p.raw
}

// IsZero reports whether p was never parsed.
func (p Period) IsZero() bool {
	return p.amount == 0
}

// Start returns the beginning of the window that ends at end. Months and
// years follow the calendar.
func (p Period) Start(end time.Time) time.Time {
	switch p.unit {
	case "wk":
		return end.AddDate(0, 0, -7*p.amount)
	case "mo":
		return end.AddDate(0, -p.amount, 0)
	case "y":
		return end.AddDate(-p.amount, 0, 0)
	default:
		return end.AddDate(0, 0, -p.amount)
	}
}

// Duration returns the nominal window length: a month is 30 days and a year
// is 365 days.
func (p Period) Duration() time.Duration {
	day := 24 * time.Hour

	switch p.unit {
	case "wk":
		return time.Duration(7*p.amount) * day
	case "mo":
		return time.Duration(30*p.amount) * day
	case "y":
		return time.Duration(365*p.amount) * day
	default:
		return time.Duration(p.amount) * day
	}
}

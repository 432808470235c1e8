package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date in ISO form (YYYY-MM-DD). Share scopes and
// timeline groups compare dates as exact strings, so the zone used to
// derive them has to be consistent: always UTC.
type Date string

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: bad date %q", ErrInvalidInput, s)
	}
	return Date(t.Format(dateLayout)), nil
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) Date {
	return Date(t.UTC().Format(dateLayout))
}

func (d Date) String() string { return string(d) }

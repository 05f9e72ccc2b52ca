package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf returns midnight UTC of t's calendar day, read in t's own location.
// Every date the scheduler compares or stores goes through here.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the server's current calendar day. Only entry points (cron, CLI,
// HTTP) call it; the core always receives "today" as a parameter.
func Today() time.Time {
	return DateOf(time.Now())
}

// AddDays shifts a calendar date by n days.
func AddDays(date time.Time, n int) time.Time {
	return DateOf(date).AddDate(0, 0, n)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateOrToday parses s, falling back to Today when s is empty.
func DateOrToday(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return Today(), nil
	}
	return ParseDate(s)
}

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day identifiers arrive in two shapes: the ISO form used by API query
// parameters ("2023-01-01") and the localized form used by the
// Netztransparenz CSV feed ("01.01.2023").
const (
	DayLayoutISO = "2006-01-02"
	DayLayoutDE  = "02.01.2006"
)

// ParseDay parses a day in either supported format.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DayLayoutISO, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DayLayoutDE, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid day %q (expected %s or %s)", s, DayLayoutISO, DayLayoutDE)
}

// FormatDayISO renders a day as YYYY-MM-DD.
func FormatDayISO(t time.Time) string { return t.Format(DayLayoutISO) }

// FormatDayDE renders a day as DD.MM.YYYY, the form used in all output.
func FormatDayDE(t time.Time) string { return t.Format(DayLayoutDE) }

// Midnight truncates a timestamp to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// HourLabel renders an hour as "HH:00". Hour 24 is a valid label: a discharge
// ending after hour 23 is reported as "24:00" rather than wrapping to the
// next day.
func HourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// ParseHourLabel recovers the numeric hour from an "HH:00" label.
func ParseHourLabel(s string) (int, error) {
	head, _, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid hour label %q", s)
	}
	h, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("invalid hour label %q", s)
	}
	return h, nil
}

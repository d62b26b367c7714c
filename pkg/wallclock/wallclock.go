// Package wallclock handles the clinic's timezone-less "HH:MM" times and
// calendar dates.
package wallclock

import (
	"errors"
	"fmt"
	"time"
)

const (
	TimeLayout = "15:04"
	DateLayout = "2006-01-02"

	minutesPerDay = 24 * 60
)

var (
	ErrInvalidTime = errors.New("invalid time format, use HH:MM")
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")
)

// Parse converts "HH:MM" into minutes since midnight.
func Parse(value string) (int, error) {
	if len(value) != len(TimeLayout) {
		return 0, ErrInvalidTime
	}
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Format converts minutes since midnight into "HH:MM".
func Format(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Valid reports whether value is a well-formed "HH:MM" string.
func Valid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// ParseDate parses "YYYY-MM-DD" into midnight UTC of that day.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders the calendar day of t as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf strips the clock from t, keeping the calendar day as seen in t's
// location, and returns it as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// Combine places the "HH:MM" wall-clock time on the given calendar day in loc.
func Combine(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	minutes, err := Parse(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc), nil
}

// Overlaps reports whether [startA, startA+durA) intersects [startB, startB+durB).
func Overlaps(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}

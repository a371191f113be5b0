package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format the tracker uses for spent_on.
const DateLayout = "2006-01-02"

// Window is an inclusive calendar-date range for time entries.
type Window struct {
	From time.Time
	To   time.Time
}

// LastDays returns the window ending on today's date and starting days earlier.
func LastDays(today time.Time, days int) Window {
	to := truncateDay(today)
	return Window{From: to.AddDate(0, 0, -days), To: to}
}

// ParseWindow parses two YYYY-MM-DD dates into a Window.
func ParseWindow(from, to string) (Window, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return Window{}, fmt.Errorf("%w: invalid from date %q (expected YYYY-MM-DD)", ErrConfiguration, from)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return Window{}, fmt.Errorf("%w: invalid to date %q (expected YYYY-MM-DD)", ErrConfiguration, to)
	}
	w := Window{From: f, To: t}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks that From is not after To.
func (w Window) Validate() error {
	if w.From.After(w.To) {
		return fmt.Errorf("%w: window start %s is after end %s", ErrConfiguration, w.FromString(), w.ToString())
	}
	return nil
}

// Contains reports whether t falls on a date inside the window.
func (w Window) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(truncateDay(w.From)) && !d.After(truncateDay(w.To))
}

func (w Window) FromString() string { return w.From.Format(DateLayout) }
func (w Window) ToString() string   { return w.To.Format(DateLayout) }

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

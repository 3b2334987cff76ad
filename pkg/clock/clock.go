// Package clock centralizes all calendar-date handling for the application.
//
// Every date-bucketed comparison in the system goes through this package so
// that classification logic never mixes UTC-midnight and local-midnight
// semantics. All calendar dates are interpreted in one fixed timezone.
package clock

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the canonical calendar-date format (YYYY-MM-DD).
	DateLayout = "2006-01-02"
	// MonthLayout is the canonical year-month format (YYYY-MM).
	MonthLayout = "2006-01"
)

// JST is the fixed application timezone. A fixed offset avoids a tzdata
// dependency; Japan observes no daylight saving.
var JST = time.FixedZone("JST", 9*60*60)

// Clock resolves "today" and day/month boundaries in a fixed timezone.
// The now function is injectable for tests.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New builds a Clock for the given location. A nil now falls back to time.Now.
func New(loc *time.Location, now func() time.Time) *Clock {
	if loc == nil {
		loc = JST
	}
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}
}

// NewJST builds the production clock pinned to JST.
func NewJST() *Clock {
	return New(JST, nil)
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	return c.now()
}

// Today returns the current calendar date string as observed in the fixed zone.
func (c *Clock) Today() string {
	return c.now().In(c.loc).Format(DateLayout)
}

// FormatDate converts an instant to its fixed-zone calendar date string.
func (c *Clock) FormatDate(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// ParseDate converts a YYYY-MM-DD string to an instant anchored at local noon.
// Anchoring at noon keeps the calendar date stable when the instant is later
// rendered in another zone.
func (c *Clock) ParseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d.Add(12 * time.Hour), nil
}

// DateRange returns the fixed-zone day's [00:00:00.000, 23:59:59.999] as
// absolute instants, for range-querying timestamp columns.
func (c *Clock) DateRange(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	start := d
	end := d.Add(24*time.Hour - time.Millisecond)
	return start, end, nil
}

// MonthRange returns first-day-00:00:00.000 to last-day-23:59:59.999 of the
// given YYYY-MM month as absolute instants. The last day follows the calendar
// length of that month, leap years included.
func (c *Clock) MonthRange(month string) (time.Time, time.Time, error) {
	m, err := time.ParseInLocation(MonthLayout, month, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	start := m
	end := m.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end, nil
}

// AddDays shifts a calendar date by n days. The arithmetic is anchored at
// local noon; irrelevant for a fixed-offset zone but it keeps the function
// safe if the location ever carries DST transitions.
func (c *Clock) AddDays(date string, n int) (string, error) {
	noon, err := c.ParseDate(date)
	if err != nil {
		return "", err
	}
	return noon.In(c.loc).AddDate(0, 0, n).Format(DateLayout), nil
}

// IsToday reports whether the instant falls on today's fixed-zone calendar date.
func (c *Clock) IsToday(t time.Time) bool {
	return c.FormatDate(t) == c.Today()
}

// IsTodayDate reports whether the date string equals today's date.
func (c *Clock) IsTodayDate(date string) bool {
	return date == c.Today()
}

// ValidDate reports whether date is a well-formed YYYY-MM-DD string.
func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

// ValidMonth reports whether month is a well-formed YYYY-MM string.
func ValidMonth(month string) bool {
	_, err := time.Parse(MonthLayout, month)
	return err == nil
}

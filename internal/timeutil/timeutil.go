// Package timeutil provides timezone-safe parsing and relative formatting
// for deadline timestamps. All comparisons go through a Clock so jobs and
// tests share one notion of "now".
package timeutil

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ParseTime parses a timestamp string into a UTC time. Source records carry
// a mix of RFC3339 and looser formats, so parsing is lenient. Timestamps
// without zone information are assumed UTC. Returns nil for empty or
// unparseable input.
func ParseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// Clock answers time questions relative to a fixed local timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a clock for the named IANA timezone. An empty name or
// unknown zone falls back to UTC.
func NewClock(tz string) *Clock {
	loc, err := time.LoadLocation(tz)
	if tz == "" || err != nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// NewClockAt creates a clock with an injected now function. Used by tests
// and anywhere deterministic time is needed.
func NewClockAt(now func() time.Time, loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: now}
}

// Now returns the current time in UTC.
func (c *Clock) Now() time.Time {
	return c.now().UTC()
}

// Local returns the current time in the clock's timezone.
func (c *Clock) Local() time.Time {
	return c.now().In(c.loc)
}

// Today returns the local calendar date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Local().Format("2006-01-02")
}

// HoursUntil returns hours from now until t. Negative when t has passed.
// Returns nil when t is nil.
func (c *Clock) HoursUntil(t *time.Time) *float64 {
	if t == nil {
		return nil
	}
	h := t.Sub(c.Now()).Hours()
	return &h
}

// DaysUntil returns days from now until t, or nil when t is nil.
func (c *Clock) DaysUntil(t *time.Time) *float64 {
	h := c.HoursUntil(t)
	if h == nil {
		return nil
	}
	d := *h / 24
	return &d
}

// FormatRelative renders a deadline as human-readable relative time:
// "in 6 hours", "tomorrow", "in 3 days", "overdue by 2 hours".
func (c *Clock) FormatRelative(t *time.Time) string {
	h := c.HoursUntil(t)
	if h == nil {
		return "no due date"
	}
	hours := *h
	switch {
	case hours < 0:
		abs := -hours
		if abs < 1 {
			return fmt.Sprintf("overdue by %d minutes", int(abs*60))
		}
		if abs < 24 {
			return fmt.Sprintf("overdue by %d hours", int(abs))
		}
		return fmt.Sprintf("overdue by %d days", int(abs/24))
	case hours < 1:
		return fmt.Sprintf("in %d minutes", int(hours*60))
	case hours < 24:
		return fmt.Sprintf("in %d hours", int(hours))
	case hours < 48:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", int(hours/24))
	}
}

// FormatDateTime formats a timestamp for display in the local timezone.
func (c *Clock) FormatDateTime(t *time.Time, includeTime bool) string {
	if t == nil {
		return "N/A"
	}
	local := t.In(c.loc)
	if includeTime {
		return local.Format("Jan 02, 2006 at 3:04 PM")
	}
	return local.Format("Jan 02, 2006")
}

// IsToday reports whether t falls on today's local calendar date.
func (c *Clock) IsToday(t *time.Time) bool {
	if t == nil {
		return false
	}
	return t.In(c.loc).Format("2006-01-02") == c.Today()
}

// IsTomorrow reports whether t falls on tomorrow's local calendar date.
func (c *Clock) IsTomorrow(t *time.Time) bool {
	if t == nil {
		return false
	}
	tomorrow := c.Local().AddDate(0, 0, 1).Format("2006-01-02")
	return t.In(c.loc).Format("2006-01-02") == tomorrow
}

// IsThisWeek reports whether t is within the next 7 days (and not past).
func (c *Clock) IsThisWeek(t *time.Time) bool {
	h := c.HoursUntil(t)
	if h == nil {
		return false
	}
	return *h >= 0 && *h <= 168
}

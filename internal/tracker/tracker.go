// Package tracker implements the study-session log and its day-based
// streak state machine. All transitions are pure functions over calendar
// date strings (YYYY-MM-DD); persistence belongs to the caller.
package tracker

import (
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Streak is the persisted streak state. Best never decreases.
type Streak struct {
	Current       int    `json:"current"`
	Best          int    `json:"best"`
	LastStudyDate string `json:"last_study_date,omitempty"` // empty = no history
}

// yesterdayOf returns the calendar date one day before the given date.
// Unparseable input returns an empty string, which matches nothing.
func yesterdayOf(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dateLayout)
}

// Log records a study day. Same-day re-logs are no-ops, consecutive days
// extend the streak, and a gap of two or more days restarts it at 1.
// LastStudyDate always becomes today.
func (s *Streak) Log(today string) {
	switch {
	case s.LastStudyDate == "":
		s.Current = 1
		if s.Best < 1 {
			s.Best = 1
		}
	case s.LastStudyDate == today:
		// already logged today
	case s.LastStudyDate == yesterdayOf(today):
		s.Current++
		if s.Current > s.Best {
			s.Best = s.Current
		}
	default:
		s.Current = 1
	}
	s.LastStudyDate = today
}

// Decay zeroes the current streak when the last study day is neither today
// nor yesterday. It is a separate transition so the job driver can invoke
// it before reads and persist the result; reads themselves never mutate.
// Returns true when the reset fired.
func (s *Streak) Decay(today string) bool {
	if s.LastStudyDate == "" || s.Current == 0 {
		return false
	}
	if s.LastStudyDate == today || s.LastStudyDate == yesterdayOf(today) {
		return false
	}
	s.Current = 0
	return true
}

// Session is one logged study session.
type Session struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Class     string `json:"class"`
	Minutes   int    `json:"minutes"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// StudyLog holds the tracked classes, the session history, and the streak.
type StudyLog struct {
	Classes  []string  `json:"classes"`
	Sessions []Session `json:"sessions"`
	Streak   Streak    `json:"streak"`
}

// normalizeClass canonicalizes a class name for lookups.
func normalizeClass(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// AddClass registers a class. Returns false if it already exists.
func (l *StudyLog) AddClass(name string) bool {
	name = normalizeClass(name)
	for _, c := range l.Classes {
		if c == name {
			return false
		}
	}
	l.Classes = append(l.Classes, name)
	sort.Strings(l.Classes)
	return true
}

// RemoveClass unregisters a class. Returns false if it was not tracked.
func (l *StudyLog) RemoveClass(name string) bool {
	name = normalizeClass(name)
	for i, c := range l.Classes {
		if c == name {
			l.Classes = append(l.Classes[:i], l.Classes[i+1:]...)
			return true
		}
	}
	return false
}

// LogSession appends a session for today and advances the streak. Unknown
// classes are registered automatically.
func (l *StudyLog) LogSession(class string, minutes int, today string, now time.Time) Session {
	class = normalizeClass(class)
	if class != "" {
		l.AddClass(class)
	}
	session := Session{
		Date:      today,
		Class:     class,
		Minutes:   minutes,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	l.Sessions = append(l.Sessions, session)
	l.Streak.Log(today)
	return session
}

// ClassStats aggregates one class's activity over a window.
type ClassStats struct {
	Minutes  int
	Sessions int
}

// WeekStats summarizes the trailing seven days of study activity.
type WeekStats struct {
	ByClass       map[string]ClassStats
	TotalMinutes  int
	TotalSessions int
	DaysStudied   int
	AvgPerDay     float64
}

// WeekStats aggregates sessions from the last 7 days relative to today.
func (l *StudyLog) WeekStats(today string) WeekStats {
	cutoff := ""
	if t, err := time.Parse(dateLayout, today); err == nil {
		cutoff = t.AddDate(0, 0, -7).Format(dateLayout)
	}

	stats := WeekStats{ByClass: make(map[string]ClassStats)}
	days := make(map[string]bool)
	for _, s := range l.Sessions {
		if s.Date < cutoff {
			continue
		}
		cs := stats.ByClass[s.Class]
		cs.Minutes += s.Minutes
		cs.Sessions++
		stats.ByClass[s.Class] = cs
		stats.TotalMinutes += s.Minutes
		stats.TotalSessions++
		days[s.Date] = true
	}
	stats.DaysStudied = len(days)
	if stats.TotalMinutes > 0 {
		stats.AvgPerDay = float64(stats.TotalMinutes) / 7
	}
	return stats
}

// TodaySummary aggregates one calendar day's study activity.
type TodaySummary struct {
	TotalMinutes int
	Sessions     int
	Classes      []string
}

// TodaySummary sums today's sessions and lists the classes studied.
func (l *StudyLog) TodaySummary(today string) TodaySummary {
	summary := TodaySummary{}
	seen := make(map[string]bool)
	for _, s := range l.Sessions {
		if s.Date != today {
			continue
		}
		summary.TotalMinutes += s.Minutes
		summary.Sessions++
		if !seen[s.Class] {
			seen[s.Class] = true
			summary.Classes = append(summary.Classes, s.Class)
		}
	}
	sort.Strings(summary.Classes)
	return summary
}

// NeglectedClasses returns tracked classes with no session in the last
// `days` days.
func (l *StudyLog) NeglectedClasses(today string, days int) []string {
	if len(l.Classes) == 0 {
		return nil
	}
	cutoff := ""
	if t, err := time.Parse(dateLayout, today); err == nil {
		cutoff = t.AddDate(0, 0, -days).Format(dateLayout)
	}

	recent := make(map[string]bool)
	for _, s := range l.Sessions {
		if s.Date >= cutoff {
			recent[s.Class] = true
		}
	}
	var neglected []string
	for _, c := range l.Classes {
		if !recent[c] {
			neglected = append(neglected, c)
		}
	}
	return neglected
}

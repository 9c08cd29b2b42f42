package board

import (
	"strings"
	"time"
)

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of t's calendar day in loc
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// IsToday reports whether t falls on now's calendar day
func IsToday(t, now time.Time) bool {
	return SameDay(t, now, now.Location())
}

// IsTomorrow reports whether t falls on the day after now
func IsTomorrow(t, now time.Time) bool {
	return SameDay(t, now.AddDate(0, 0, 1), now.Location())
}

// IsYesterday reports whether t falls on the day before now
func IsYesterday(t, now time.Time) bool {
	return SameDay(t, now.AddDate(0, 0, -1), now.Location())
}

// StartOfWeek returns midnight of the first day of t's week
func StartOfWeek(t time.Time, weekStart time.Weekday, loc *time.Location) time.Time {
	d := StartOfDay(t, loc)
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// EndOfWeek returns the last instant of t's week
func EndOfWeek(t time.Time, weekStart time.Weekday, loc *time.Location) time.Time {
	return StartOfWeek(t, weekStart, loc).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// SameWeek reports whether t is in the same week as now
func SameWeek(t, now time.Time, weekStart time.Weekday) bool {
	loc := now.Location()
	return StartOfWeek(t, weekStart, loc).Equal(StartOfWeek(now, weekStart, loc))
}

// SameMonth reports whether t is in the same calendar month as now
func SameMonth(t, now time.Time) bool {
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}

// StartOfMonth returns midnight of the first day of t's month
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// EndOfMonth returns the last instant of t's month
func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	return StartOfMonth(t, loc).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// ParseWeekday parses a weekday name such as "sunday" or "Mon"
func ParseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	return time.Sunday, false
}

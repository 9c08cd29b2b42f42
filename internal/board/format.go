package board

import (
	"fmt"
	"time"
)

// Display layouts. Timestamps are stored as instants and only formatted here.
const (
	ClockLayout = "3:04 PM"
	ShortLayout = "Jan 2, 3:04 PM"
	LongLayout  = "Monday, January 2, 2006"
	InputLayout = "2006-01-02 15:04"
)

// FormatDue describes a due date relative to now: "Today at 3:00 PM",
// "Tomorrow at 9:30 AM" or "Mar 4 at 5:00 PM"
func FormatDue(due, now time.Time) string {
	due = due.In(now.Location())
	clock := due.Format(ClockLayout)
	switch {
	case IsToday(due, now):
		return "Today at " + clock
	case IsTomorrow(due, now):
		return "Tomorrow at " + clock
	case IsYesterday(due, now):
		return "Yesterday at " + clock
	}
	return fmt.Sprintf("%s at %s", due.Format("Jan 2"), clock)
}

// FormatStamp formats an instant as "Jan 2, 3:04 PM" in loc
func FormatStamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(ShortLayout)
}

// ParseInput parses a due date typed as "2006-01-02 15:04" in loc.
// A bare date gets the given default clock time.
func ParseInput(s string, loc *time.Location, defaultHour int) (time.Time, error) {
	if t, err := time.ParseInLocation(InputLayout, s, loc); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date %q: expected YYYY-MM-DD HH:MM", s)
	}
	return d.Add(time.Duration(defaultHour) * time.Hour), nil
}

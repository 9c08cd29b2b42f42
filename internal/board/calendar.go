package board

import (
	"time"

	"github.com/tgienger/taskboard/internal/models"
)

// MonthGrid returns the weeks covering month, from the start of the week
// holding the 1st to the end of the week holding the last day. Each week has
// seven days at midnight in month's location.
func MonthGrid(month time.Time, weekStart time.Weekday) [][]time.Time {
	loc := month.Location()
	first := StartOfWeek(StartOfMonth(month, loc), weekStart, loc)
	last := EndOfWeek(EndOfMonth(month, loc), weekStart, loc)

	var weeks [][]time.Time
	var week []time.Time
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		week = append(week, day)
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	return weeks
}

// OnDay returns the tasks due on day's calendar day, in input order
func OnDay(tasks []models.Task, day time.Time) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if SameDay(t.DueDate, day, day.Location()) {
			out = append(out, t)
		}
	}
	return out
}

// WeekdayHeaders returns short weekday names starting at weekStart
func WeekdayHeaders(weekStart time.Weekday) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = time.Weekday((int(weekStart) + i) % 7).String()[:3]
	}
	return out
}

// AtDayTime returns day's date with the clock time of tmpl
func AtDayTime(day, tmpl time.Time) time.Time {
	tmpl = tmpl.In(day.Location())
	return time.Date(day.Year(), day.Month(), day.Day(),
		tmpl.Hour(), tmpl.Minute(), 0, 0, day.Location())
}

package board

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tgienger/taskboard/internal/models"
)

// Period narrows the completed archive by completion time
type Period string

const (
	PeriodAll       Period = "all"
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodWeek      Period = "week"
	PeriodMonth     Period = "month"
)

// Periods in display order
var Periods = []Period{PeriodAll, PeriodToday, PeriodYesterday, PeriodWeek, PeriodMonth}

// Label returns the button caption for the period
func (p Period) Label() string {
	switch p {
	case PeriodToday:
		return "Today"
	case PeriodYesterday:
		return "Yesterday"
	case PeriodWeek:
		return "This Week"
	case PeriodMonth:
		return "This Month"
	}
	return "All Time"
}

// Next returns the period after p in display order
func (p Period) Next() Period {
	for i, known := range Periods {
		if known == p {
			return Periods[(i+1)%len(Periods)]
		}
	}
	return PeriodAll
}

// ParsePeriod parses a period name; the empty string means all
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PeriodAll, nil
	}
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// CompletedGroups buckets completed tasks by completion day. Buckets are disjoint.
type CompletedGroups struct {
	Today       []models.Task
	Yesterday   []models.Task
	EarlierWeek []models.Task
	Older       []models.Task
}

// Len returns the number of tasks across all buckets
func (g CompletedGroups) Len() int {
	return len(g.Today) + len(g.Yesterday) + len(g.EarlierWeek) + len(g.Older)
}

// GroupCompleted buckets the completed tasks into today, yesterday, earlier
// this week and older. Open tasks are ignored. Each bucket is most recent first.
func GroupCompleted(tasks []models.Task, now time.Time, weekStart time.Weekday) CompletedGroups {
	var g CompletedGroups
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		at := *t.CompletedAt
		switch {
		case IsToday(at, now):
			g.Today = append(g.Today, t)
		case IsYesterday(at, now):
			g.Yesterday = append(g.Yesterday, t)
		case SameWeek(at, now, weekStart):
			g.EarlierWeek = append(g.EarlierWeek, t)
		default:
			g.Older = append(g.Older, t)
		}
	}
	for _, bucket := range [][]models.Task{g.Today, g.Yesterday, g.EarlierWeek, g.Older} {
		sortByCompletedDesc(bucket)
	}
	return g
}

func sortByCompletedDesc(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CompletedAt.After(*tasks[j].CompletedAt)
	})
}

// InPeriod reports whether a completion time falls in the period
func InPeriod(at time.Time, p Period, now time.Time, weekStart time.Weekday) bool {
	switch p {
	case PeriodToday:
		return IsToday(at, now)
	case PeriodYesterday:
		return IsYesterday(at, now)
	case PeriodWeek:
		return SameWeek(at, now, weekStart)
	case PeriodMonth:
		return SameMonth(at, now)
	}
	return true
}

// CompletedQuery narrows the archive by title search and period
type CompletedQuery struct {
	Search string
	Period Period
}

// Apply returns completed tasks whose title contains Search (case-insensitive)
// and whose completion time lies in Period
func (q CompletedQuery) Apply(tasks []models.Task, now time.Time, weekStart time.Weekday) []models.Task {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	var out []models.Task
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		if !InPeriod(*t.CompletedAt, q.Period, now, weekStart) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// PeriodCounts counts searched tasks per period. PeriodAll counts every
// completed task regardless of the search.
func (q CompletedQuery) PeriodCounts(tasks []models.Task, now time.Time, weekStart time.Weekday) map[Period]int {
	counts := make(map[Period]int, len(Periods))
	for _, t := range tasks {
		if t.Completed && t.CompletedAt != nil {
			counts[PeriodAll]++
		}
	}
	searched := CompletedQuery{Search: q.Search, Period: PeriodAll}.Apply(tasks, now, weekStart)
	for _, p := range Periods[1:] {
		for _, t := range searched {
			if InPeriod(*t.CompletedAt, p, now, weekStart) {
				counts[p]++
			}
		}
	}
	return counts
}

// Archive holds the completed page totals
type Archive struct {
	Total    int
	Today    int
	ThisWeek int
}

// ArchiveTotals counts all completed tasks, those done today and those done this week
func ArchiveTotals(tasks []models.Task, now time.Time, weekStart time.Weekday) Archive {
	var a Archive
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		a.Total++
		if IsToday(*t.CompletedAt, now) {
			a.Today++
		}
		if SameWeek(*t.CompletedAt, now, weekStart) {
			a.ThisWeek++
		}
	}
	return a
}

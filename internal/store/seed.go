package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tgienger/taskboard/internal/models"
)

//go:embed seed/tasks.json
var seedData []byte

// LoadSeed decodes the task collection embedded at build time
func LoadSeed() ([]models.Task, error) {
	return decodeSeed(seedData)
}

// LoadSeedFile decodes a seed document from disk, in the same shape as the embedded one
func LoadSeedFile(path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return decodeSeed(data)
}

func decodeSeed(data []byte) ([]models.Task, error) {
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i := range tasks {
		if tasks[i].Checklist == nil {
			tasks[i].Checklist = []models.ChecklistItem{}
		}
	}
	return tasks, nil
}

// Rebase shifts every timestamp by a whole number of days so the newest
// createdAt falls on the same calendar day as now. Clock times are kept.
func Rebase(tasks []models.Task, now time.Time) []models.Task {
	if len(tasks) == 0 {
		return tasks
	}

	newest := tasks[0].CreatedAt
	for _, t := range tasks[1:] {
		if t.CreatedAt.After(newest) {
			newest = t.CreatedAt
		}
	}

	days := daysBetween(newest.In(now.Location()), now)
	if days == 0 {
		return tasks
	}

	shift := func(t time.Time) time.Time { return t.AddDate(0, 0, days) }
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		c := t.Clone()
		c.CreatedAt = shift(c.CreatedAt)
		c.DueDate = shift(c.DueDate)
		if c.CompletedAt != nil {
			v := shift(*c.CompletedAt)
			c.CompletedAt = &v
		}
		for j := range c.Checklist {
			if at := c.Checklist[j].CheckedAt; at != nil {
				v := shift(*at)
				c.Checklist[j].CheckedAt = &v
			}
		}
		out[i] = c
	}
	return out
}

// daysBetween counts calendar days from a to b in b's location
func daysBetween(a, b time.Time) int {
	loc := b.Location()
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, loc)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc)
	return int(db.Sub(da).Round(24*time.Hour) / (24 * time.Hour))
}

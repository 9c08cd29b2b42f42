package board

import "github.com/tgienger/taskboard/internal/models"

// Cache is a page's local copy of the collection. Results returned by the
// service are merged into it; derived views are recomputed from it.
type Cache struct {
	tasks   []models.Task
	loaded  bool
	version uint64
	err     error
}

// Replace swaps in a fresh snapshot taken at the given store version
func (c *Cache) Replace(tasks []models.Task, version uint64) {
	c.tasks = make([]models.Task, len(tasks))
	for i, t := range tasks {
		c.tasks[i] = t.Clone()
	}
	c.loaded = true
	c.version = version
	c.err = nil
}

// Loaded reports whether a snapshot has been stored
func (c *Cache) Loaded() bool { return c.loaded }

// Stale reports whether the store has changed since the last snapshot
func (c *Cache) Stale(version uint64) bool {
	return !c.loaded || c.err != nil || c.version != version
}

// Fail records a failed load. The cached tasks are kept.
func (c *Cache) Fail(err error) { c.err = err }

// Err returns the error of the last load, nil once a load succeeds
func (c *Cache) Err() error { return c.err }

// Upsert replaces the task with the same id, or appends it
func (c *Cache) Upsert(t models.Task) {
	t = t.Clone()
	for i := range c.tasks {
		if c.tasks[i].ID == t.ID {
			c.tasks[i] = t
			return
		}
	}
	c.tasks = append(c.tasks, t)
}

// Remove drops the task with the given id, if present
func (c *Cache) Remove(id int64) {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return
		}
	}
}

// Get returns a copy of the cached task with the given id
func (c *Cache) Get(id int64) (models.Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Task{}, false
}

// Tasks returns copies of the cached tasks in cache order
func (c *Cache) Tasks() []models.Task {
	out := make([]models.Task, len(c.tasks))
	for i, t := range c.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of cached tasks
func (c *Cache) Len() int { return len(c.tasks) }

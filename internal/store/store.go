package store

import (
	"errors"
	"sync"

	"github.com/tgienger/taskboard/internal/models"
)

// ErrNotFound is returned when a task id is not in the store
var ErrNotFound = errors.New("task not found")

// Store holds the task collection in memory. It owns the live records;
// every accessor hands out copies.
type Store struct {
	mu      sync.Mutex
	tasks   []models.Task
	lastID  int64
	version uint64
}

// New creates a store pre-populated with the given tasks, in order
func New(seed []models.Task) *Store {
	s := &Store{tasks: make([]models.Task, 0, len(seed))}
	for _, t := range seed {
		s.tasks = append(s.tasks, t.Clone())
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	return s
}

// Insert assigns the next id, appends the task and returns the stored copy
func (s *Store) Insert(task models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task = task.Clone()
	task.ID = s.nextID()
	s.tasks = append(s.tasks, task)
	s.version++
	return task.Clone()
}

// nextID returns max(existing ids, 0) + 1, where ids that were deleted still
// count as existing so they are never handed out twice. Caller must hold the lock.
func (s *Store) nextID() int64 {
	for _, t := range s.tasks {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	s.lastID++
	return s.lastID
}

// Find returns a copy of the task with the given id
func (s *Store) Find(id int64) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrNotFound
	}
	return s.tasks[i].Clone(), nil
}

// All returns copies of every task in insertion order
func (s *Store) All() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Remove deletes the task and returns the removed copy
func (s *Store) Remove(id int64) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrNotFound
	}
	removed := s.tasks[i].Clone()
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.version++
	return removed, nil
}

// Mutate runs fn against a working copy of the task and stores it if fn succeeds.
// On error the stored record is unchanged. The id cannot be changed by fn.
func (s *Store) Mutate(id int64, fn func(*models.Task) error) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrNotFound
	}

	work := s.tasks[i].Clone()
	if err := fn(&work); err != nil {
		return models.Task{}, err
	}
	work.ID = id
	s.tasks[i] = work
	s.version++
	return work.Clone(), nil
}

// Len returns the number of tasks
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Version increases on every successful mutation
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) indexOf(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

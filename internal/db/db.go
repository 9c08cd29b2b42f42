// Package db persists UI preferences in SQLite. Tasks are never stored here.
package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/models"
)

//go:embed schema.sql
var schema string

// Setting keys
const (
	KeyLastPage       = "last_page"
	KeyFilterStatus   = "filter_status"
	KeyFilterPriority = "filter_priority"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Open opens the settings database at path and initializes the schema.
// An empty path uses the XDG data directory; ":memory:" opens a private
// in-memory database.
func Open(path string) (*DB, error) {
	if path == "" {
		p, err := getDBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db}, nil
}

// getDBPath returns the path to the database file
func getDBPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, "taskboard")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, "taskboard.db"), nil
}

// GetSetting retrieves a setting value by key; a missing key yields ""
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// LastPage returns the page name saved by SetLastPage
func (db *DB) LastPage() (string, error) {
	return db.GetSetting(KeyLastPage)
}

// SetLastPage remembers the page to reopen on the next start
func (db *DB) SetLastPage(page string) error {
	return db.SetSetting(KeyLastPage, page)
}

// TaskFilter loads the saved task page filter. Unknown values saved by an
// older build fall back to the zero filter.
func (db *DB) TaskFilter() (board.Filter, error) {
	status, err := db.GetSetting(KeyFilterStatus)
	if err != nil {
		return board.Filter{}, err
	}
	prios, err := db.GetSetting(KeyFilterPriority)
	if err != nil {
		return board.Filter{}, err
	}

	var f board.Filter
	if st, err := board.ParseStatus(status); err == nil {
		f.Status = st
	} else {
		f.Status = board.StatusAll
	}
	for _, name := range strings.Split(prios, ",") {
		if p, err := models.ParsePriority(name); err == nil {
			f = f.TogglePriority(p)
		}
	}
	return f, nil
}

// SetTaskFilter saves the task page filter
func (db *DB) SetTaskFilter(f board.Filter) error {
	status := f.Status
	if status == "" {
		status = board.StatusAll
	}
	names := make([]string, len(f.Priorities))
	for i, p := range f.Priorities {
		names[i] = string(p)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := tx.Exec(upsert, KeyFilterStatus, string(status)); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, KeyFilterPriority, strings.Join(names, ",")); err != nil {
		return err
	}
	return tx.Commit()
}

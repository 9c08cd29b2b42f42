package main

import (
	"fmt"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/taskboard/internal/config"
	"github.com/tgienger/taskboard/internal/db"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/scheduler"
	"github.com/tgienger/taskboard/internal/service"
	"github.com/tgienger/taskboard/internal/store"
	"github.com/tgienger/taskboard/internal/ui"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
	"github.com/tgienger/taskboard/internal/ui/views"
)

// newService seeds an in-memory store and wraps it in the task service
func newService(cfg *config.Config, now func() time.Time) (*service.TaskService, error) {
	var (
		seed []models.Task
		err  error
	)
	if cfg.Seed.File != "" {
		seed, err = store.LoadSeedFile(cfg.Seed.File)
	} else {
		seed, err = store.LoadSeed()
	}
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	if cfg.Seed.Rebase {
		seed = store.Rebase(seed, now())
	}

	opts := []service.Option{service.WithClock(now)}
	if !cfg.Latency.Enabled {
		opts = append(opts, service.WithoutLatency())
	}
	return service.New(store.New(seed), opts...)
}

// setupLogging sends the standard logger to the configured file. The TUI owns
// the terminal, so without a file logging is discarded.
func setupLogging(cfg *config.Config) (io.Closer, error) {
	if cfg.Log.File == "" {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	f, err := tea.LogToFile(cfg.Log.File, "taskboard")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func runBoard(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	svc, err := newService(cfg, time.Now)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	defer database.Close()

	deps := &views.Deps{
		Service:   svc,
		Settings:  database,
		Now:       time.Now,
		WeekStart: cfg.WeekStart(),
		Styles:    styles.NewStyles(),
		Keys:      keys.DefaultKeyMap(),
	}
	app := ui.NewApp(deps, database)
	p := tea.NewProgram(app, tea.WithAltScreen())

	sched := scheduler.New(time.Local)
	err = sched.Register(scheduler.Jobs{
		DayChanged: func() { p.Send(ui.DayChangedMsg{}) },
		Refresh:    func() { p.Send(ui.RefreshMsg{}) },
	}, cfg.Refresh.Interval)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	log.Printf("[taskboard] starting %s", version)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tgienger/taskboard/internal/board"
)

// Config holds the taskboard settings
type Config struct {
	Latency  LatencyConfig  `yaml:"latency" mapstructure:"latency"`
	State    StateConfig    `yaml:"state" mapstructure:"state"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Seed     SeedConfig     `yaml:"seed" mapstructure:"seed"`
	Calendar CalendarConfig `yaml:"calendar" mapstructure:"calendar"`
	Refresh  RefreshConfig  `yaml:"refresh" mapstructure:"refresh"`
}

// LatencyConfig toggles the simulated service delays
type LatencyConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// StateConfig locates the settings database. Empty means the XDG data dir.
type StateConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig names the log file. Empty disables logging.
type LogConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// SeedConfig controls the initial collection
type SeedConfig struct {
	File   string `yaml:"file" mapstructure:"file"`
	Rebase bool   `yaml:"rebase" mapstructure:"rebase"`
}

// CalendarConfig holds calendar display options
type CalendarConfig struct {
	WeekStart string `yaml:"week_start" mapstructure:"week_start"`
}

// RefreshConfig sets how often pages reload from the service. Zero disables it.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Latency:  LatencyConfig{Enabled: true},
		Seed:     SeedConfig{Rebase: true},
		Calendar: CalendarConfig{WeekStart: "sunday"},
		Refresh:  RefreshConfig{Interval: time.Minute},
	}
}

// WeekStart returns the configured first day of the week
func (c *Config) WeekStart() time.Weekday {
	d, _ := board.ParseWeekday(c.Calendar.WeekStart)
	return d
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	if _, ok := board.ParseWeekday(c.Calendar.WeekStart); !ok {
		return fmt.Errorf("calendar.week_start: unknown weekday %q", c.Calendar.WeekStart)
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh.interval: must not be negative")
	}
	return nil
}

// Load reads configuration from path, or from the default location when path
// is empty. A missing default file is not an error. TASKBOARD_* environment
// variables override file values.
func Load(path string) (*Config, error) {
	v := newViper()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("latency.enabled", def.Latency.Enabled)
	v.SetDefault("state.path", def.State.Path)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("seed.file", def.Seed.File)
	v.SetDefault("seed.rebase", def.Seed.Rebase)
	v.SetDefault("calendar.week_start", def.Calendar.WeekStart)
	v.SetDefault("refresh.interval", def.Refresh.Interval)

	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath returns $XDG_CONFIG_HOME/taskboard/config.yaml, falling back to
// ~/.config. It returns "" when neither can be determined.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "taskboard", "config.yaml")
}

package korm

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"
)

// Config describes how to open a SQLite database.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string `yaml:"path"`

	// ForeignKeys turns on enforcement of foreign key constraints.
	ForeignKeys bool `yaml:"foreign_keys"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures the logger of a database opened with [Open].
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error or
	// disabled.
	Level string `yaml:"level"`

	// Format is "json" or "console".
	Format string `yaml:"format"`

	// Output defaults to standard error.
	Output io.Writer `yaml:"-"`
}

// DefaultConfig returns a configuration for an in-memory database with
// foreign keys enforced and logging disabled.
func DefaultConfig() Config {
	return Config{
		Path:        ":memory:",
		ForeignKeys: true,
		Log: LogConfig{
			Level:  "disabled",
			Format: "json",
		},
	}
}

// LoadConfig reads a YAML configuration file. Settings missing from the
// file keep their [DefaultConfig] values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DSN returns the data source name passed to the sqlite3 driver.
func (cfg Config) DSN() string {
	fk := "off"
	if cfg.ForeignKeys {
		fk = "on"
	}
	return cfg.Path + "?_foreign_keys=" + fk
}

// Open opens the database described by cfg. The handle is limited to a
// single connection so that every statement sees the same database, which
// matters for ":memory:".
func Open(cfg Config) (*DB, error) {
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	sqldb, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	log.Debug().Str("path", cfg.Path).Bool("foreign_keys", cfg.ForeignKeys).Msg("database opened")
	return NewDB(sqldb, WithLogger(log)), nil
}

// newLogger builds a zerolog logger from cfg. The level applies to the
// returned logger only.
func newLogger(cfg LogConfig) (zerolog.Logger, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Level))
	if name == "" {
		name = "disabled"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("cannot configure logger: %w", err)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	switch cfg.Format {
	case "", "json":
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("cannot configure logger: unknown format %q", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Package config handles loading and parsing application configuration.
// It supports two ways of locating the YAML file (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Without a file, every value comes from the environment or its
// env-default. The parsed values are returned as a *Config pointer so
// the struct is shared by reference rather than copied everywhere.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev" validate:"oneof=dev staging prod"`

	Storage Storage `yaml:"storage"`
	Console Console `yaml:"console"`
}

// Storage selects and tunes the RecordStore backend.
type Storage struct {
	// Backend is "memory" (B-tree) or "sqlite".
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory" validate:"oneof=memory sqlite"`

	// Path is the SQLite data source. The default keeps the database in
	// memory for the lifetime of the process.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:":memory:" validate:"required"`

	// BTreeDegree is the branching factor of the memory backend.
	BTreeDegree int `yaml:"btree_degree" env:"STORAGE_BTREE_DEGREE" env-default:"32" validate:"min=2"`
}

// Console holds settings for the interactive loop.
type Console struct {
	// Schema names the record type managed: student, marksheet, employee.
	Schema string `yaml:"schema" env:"CONSOLE_SCHEMA" env-default:"student" validate:"required"`

	// Seed is "builtin" to pre-load the schema's sample records, or "none".
	Seed string `yaml:"seed" env:"CONSOLE_SEED" env-default:"builtin" validate:"oneof=builtin none"`

	// DuplicateKeys decides what creating an existing key does:
	// "reject" reports it, "upsert" silently overwrites.
	DuplicateKeys string `yaml:"duplicate_keys" env:"CONSOLE_DUPLICATE_KEYS" env-default:"reject" validate:"oneof=reject upsert"`
}

// Load reads configuration from the file at CONFIG_PATH, falling back to
// flagPath, and validates it. When neither is set only the environment
// is consulted.
func Load(flagPath string) (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = flagPath
	}

	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from environment: %w", err)
		}
	} else {
		// Verify the file exists before trying to read it, so the user
		// gets a clear message rather than a cryptic open error.
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

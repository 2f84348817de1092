// main is the entry point of the records console.
//
// STARTUP SEQUENCE:
//  1. Parse command-line flags (cobra)
//  2. Load configuration from a YAML file and/or the environment
//  3. Initialise the logger
//  4. Open the configured storage backend and seed it
//  5. Run the interactive menu loop on stdin/stdout until the user quits
//
// RUNNING THE CONSOLE:
//
//	go run ./cmd/records --config=config/local.yaml
//
// or (with environment variables only):
//
//	CONSOLE_SCHEMA=employee go run ./cmd/records
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/records/internal/config"
	"github.com/aanand-mishra/records/internal/console"
	"github.com/aanand-mishra/records/internal/schemas"
	"github.com/aanand-mishra/records/internal/storage"
	"github.com/aanand-mishra/records/internal/storage/memory"
	"github.com/aanand-mishra/records/internal/storage/sqlite"
	"github.com/aanand-mishra/records/internal/types"
)

const version = "1.0.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		schemaName string
	)

	cmd := &cobra.Command{
		Use:     "records",
		Short:   "Interactive in-memory record management console",
		Version: version,
		// Usage is noise for runtime failures; flag errors still print it.
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if schemaName != "" {
				cfg.Console.Schema = schemaName
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration YAML file")
	cmd.Flags().StringVar(&schemaName, "schema", "", fmt.Sprintf("Record schema to manage %v", schemas.Names()))

	return cmd
}

func run(cfg *config.Config) error {
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting records console",
		slog.String("env", cfg.Env),
		slog.String("version", version),
		slog.String("schema", cfg.Console.Schema),
	)

	schema, seed, err := schemas.Lookup(cfg.Console.Schema)
	if err != nil {
		return err
	}

	store, err := openStorage(cfg, schema)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("backend", cfg.Storage.Backend))

	if cfg.Console.Seed == "builtin" {
		if err := storage.Seed(store, seed); err != nil {
			log.Error("failed to seed storage", slog.String("error", err.Error()))
			return err
		}
		log.Debug("storage seeded", slog.Int("records", len(seed)))
	}

	c := console.New(os.Stdin, os.Stdout, store, schema, log, console.DuplicatePolicy(cfg.Console.DuplicateKeys))
	if err := c.Run(); err != nil {
		log.Error("console stopped", slog.String("error", err.Error()))
		return err
	}

	log.Info("console stopped")
	return nil
}

func openStorage(cfg *config.Config, schema types.Schema) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := sqlite.New(cfg, schema)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return memory.New(schema, cfg.Storage.BTreeDegree), nil
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Logs go to stderr: stdout belongs to the menu and its tables.
//
// Development (dev): human-readable text output at INFO level, so the
// per-keystroke DEBUG lines stay out of an interactive session.
// Staging (staging): JSON output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

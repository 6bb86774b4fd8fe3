package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"
	infra_config "github.com/spounge-ai/brainstormity/internal/infra/config"
	"github.com/spounge-ai/brainstormity/internal/infra/persistence"
)

func main() {
	configPath := flag.StringP("config", "c", os.Getenv("BRAINSTORM_CONFIG_PATH"), "Path to a YAML config file")
	databaseURL := flag.String("database-url", "", "Postgres URL (overrides database.url)")
	down := flag.Int("down", 0, "Roll back this many migrations instead of migrating up")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	url := *databaseURL
	if url == "" {
		cfg, err := infra_config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		url = cfg.Database.URL
	}
	if url == "" {
		logger.Error("no database url: set database.url or pass --database-url")
		os.Exit(1)
	}

	if *down > 0 {
		if err := persistence.RollbackMigrations(url, *down); err != nil {
			logger.Error("rollback failed", "error", err)
			os.Exit(1)
		}
	} else if err := persistence.RunMigrations(url); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	version, dirty, err := persistence.MigrationVersion(url)
	if err != nil {
		logger.Error("failed to read schema version", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Schema at version %d (dirty=%t)\n", version, dirty)
}

package main

import (
	"flag"
	"fmt"
	"os"

	"fintrack/internal/config"
	"fintrack/internal/db"
	"fintrack/internal/logging"
)

func main() {
	steps := flag.Int("steps", 0, "migrations to apply; negative rolls back, 0 applies all pending")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.Production(), cfg.LogLevel)
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", logging.FieldError, err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database.DB, *steps); err != nil {
		logger.Error("migration failed", logging.FieldError, err)
		os.Exit(1)
	}
	version, dirty, err := db.MigrationVersion(database.DB)
	if err != nil {
		logger.Error("failed to read migration version", logging.FieldError, err)
		os.Exit(1)
	}
	fmt.Printf("schema at version %d (dirty=%v)\n", version, dirty)
}

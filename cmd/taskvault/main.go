package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"task-vault/internal/config"
	"task-vault/internal/logging"
	"task-vault/internal/repository"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskvault",
		Short:         "Task list with point-in-time backups",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wiring shared by every command.
type app struct {
	cfg    config.Config
	logger *log.Logger
	db     *gorm.DB
	store  *repository.Store
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: db, store: repository.NewStore(db)}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

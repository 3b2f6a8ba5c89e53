package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"task-vault/internal/service"
)

func exportCmd() *cobra.Command {
	var userID, outDir string

	cmd := &cobra.Command{
		Use:   "export <backup-id>",
		Short: "Write a backup to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := service.WithUser(cmd.Context(), userID)
			export, err := service.NewBackupService(a.store, a.logger).ExportBackup(ctx, args[0])
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(outDir, export.Filename)
			if err := os.WriteFile(path, export.Content, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			a.logger.Info("backup exported", "backup", args[0], "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owner user id")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func importCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store an exported backup document as a new backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := service.WithUser(cmd.Context(), userID)
			backup, err := service.NewBackupService(a.store, a.logger).ImportBackup(ctx, data)
			if err != nil {
				return err
			}

			a.logger.Info("backup imported", "backup", backup.ID, "tasks", len(backup.TasksData))
			fmt.Fprintln(cmd.OutOrStdout(), backup.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owner user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/semaphore/internal/config"
	"github.com/zulandar/semaphore/internal/db"
	"github.com/zulandar/semaphore/internal/store"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBCleanupCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Semaphore database",
		Long:  "Opens the configured database and migrates all tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gdb, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if cfg.Database.Path != "" {
		fmt.Fprintf(out, "Opened SQLite database %s\n", cfg.Database.Path)
	} else {
		fmt.Fprintf(out, "Connected to MySQL at %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	}

	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
	return nil
}

func newDBCleanupCmd() *cobra.Command {
	var configPath string
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete message logs older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if days <= 0 {
				days = cfg.Logs.RetentionDays
			}
			gdb, err := db.Connect(cfg.Database)
			if err != nil {
				return err
			}
			deleted, err := store.DeleteLogsOlderThan(gdb, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d log entries older than %d days\n", deleted, days)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	cmd.Flags().IntVar(&days, "days", 0, "retention in days (default from config)")
	return cmd
}

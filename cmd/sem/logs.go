package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/semaphore/internal/store"
)

func newLogsCmd() *cobra.Command {
	var configPath string
	var ruleName, status string
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show message forwarding logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB(configPath)
			if err != nil {
				return err
			}
			logs, total, err := store.Logs(gdb, store.LogFilters{
				RuleName: ruleName,
				Status:   status,
				Page:     page,
				PerPage:  perPage,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range logs {
				line := fmt.Sprintf("%s  %-8s  %-24s  msg %d  %s -> %s",
					entry.CreatedAt.Format("2006-01-02 15:04:05"),
					entry.Status, entry.RuleName, entry.SourceMessageID,
					entry.SourceChatID, entry.TargetChatID)
				if entry.ErrorMessage != "" {
					line += "  (" + entry.ErrorMessage + ")"
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%d of %d entries (page %d)\n", len(logs), total, max(page, 1))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	cmd.Flags().StringVar(&ruleName, "rule", "", "filter by rule name")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (success, failed)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 50, "entries per page")
	return cmd
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/config"
	"github.com/zulandar/semaphore/internal/db"
	"github.com/zulandar/semaphore/internal/models"
	"github.com/zulandar/semaphore/internal/store"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Forwarding rule management commands",
	}

	cmd.AddCommand(newRuleListCmd())
	cmd.AddCommand(newRuleAddCmd())
	cmd.AddCommand(newRuleEnableCmd(true))
	cmd.AddCommand(newRuleEnableCmd(false))
	cmd.AddCommand(newRuleDeleteCmd())
	return cmd
}

func newRuleListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all forwarding rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB(configPath)
			if err != nil {
				return err
			}
			rules, err := store.AllRules(gdb)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintln(out, "No rules defined")
				return nil
			}
			for _, r := range rules {
				fmt.Fprintf(out, "%4d  %-8s %-24s %s -> %s\n",
					r.ID, activeLabel(r.IsActive), r.Name,
					chatLabel(r.SourceChatID, r.SourceChatName),
					chatLabel(r.TargetChatID, r.TargetChatName))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	return cmd
}

func newRuleAddCmd() *cobra.Command {
	var configPath string
	var name, source, target, clientID string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a forwarding rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDB(configPath)
			if err != nil {
				return err
			}
			rule := models.DefaultForwardRule()
			rule.Name = name
			rule.SourceChatID = source
			rule.TargetChatID = target
			rule.ClientID = clientID
			if err := store.CreateRule(gdb, &rule); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created rule %q (id=%d)\n", rule.Name, rule.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	cmd.Flags().StringVar(&name, "name", "", "rule name (required)")
	cmd.Flags().StringVar(&source, "source", "", "source chat ID (required)")
	cmd.Flags().StringVar(&target, "target", "", "target chat ID (required)")
	cmd.Flags().StringVar(&clientID, "client", "", "owning client ID")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")
	return cmd
}

func newRuleEnableCmd(enable bool) *cobra.Command {
	use, short := "enable <rule-id>", "Activate a forwarding rule"
	if !enable {
		use, short = "disable <rule-id>", "Deactivate a forwarding rule"
	}
	var configPath string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("bad rule ID %q", args[0])
			}
			gdb, err := openDB(configPath)
			if err != nil {
				return err
			}
			rule, err := store.UpdateRule(gdb, uint(id), map[string]interface{}{"is_active": enable})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %q is now %s\n", rule.Name, activeLabel(rule.IsActive))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	return cmd
}

func newRuleDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a forwarding rule and its filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("bad rule ID %q", args[0])
			}
			gdb, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := store.DeleteRule(gdb, uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	return cmd
}

// openDB loads config and opens the configured database.
func openDB(configPath string) (*gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return db.Connect(cfg.Database)
}

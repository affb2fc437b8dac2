package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/api"
	"github.com/zulandar/semaphore/internal/config"
	"github.com/zulandar/semaphore/internal/db"
	"github.com/zulandar/semaphore/internal/relay"
	"github.com/zulandar/semaphore/internal/relay/mtproto"
	"github.com/zulandar/semaphore/internal/store"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the forwarding daemon and management API",
		Long:  "Starts every configured Telegram client, the REST API, and the scheduled log cleanup. Blocks until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gdb, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	sup, err := relay.NewSupervisor(relay.SupervisorOpts{
		DB:      gdb,
		Factory: transportFactory(cfg),
	})
	if err != nil {
		return err
	}

	clients := bootClients(cfg, gdb)
	for _, cc := range clients {
		if err := sup.AddClient(cc); err != nil {
			log.Printf("serve: add client %s: %v", cc.ID, err)
			continue
		}
		if err := sup.StartClient(cc.ID); err != nil {
			// Interactive logins finish through the API; keep going.
			log.Printf("serve: start client %s: %v", cc.ID, err)
		}
	}
	fmt.Fprintf(out, "Registered %d clients\n", len(clients))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := cron.New()
	_, err = sched.AddFunc(cfg.Logs.CleanupCron, func() {
		deleted, err := store.DeleteLogsOlderThan(gdb, cfg.Logs.RetentionDays)
		if err != nil {
			log.Printf("serve: log cleanup: %v", err)
			return
		}
		log.Printf("serve: log cleanup removed %d entries", deleted)
	})
	if err != nil {
		return fmt.Errorf("schedule log cleanup: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	err = api.Start(ctx, api.StartOpts{
		DB:         gdb,
		Supervisor: sup,
		Port:       cfg.API.Port,
		Out:        out,
	})

	sup.StopAll()
	fmt.Fprintln(out, "Semaphore stopped")
	return err
}

// transportFactory builds MTProto transports using the client's own
// credentials, falling back to the global telegram section.
func transportFactory(cfg *config.Config) relay.TransportFactory {
	return func(cc config.ClientConfig) (relay.Transport, error) {
		apiID := cc.APIID
		if apiID == 0 {
			apiID = cfg.Telegram.APIID
		}
		apiHash := cc.APIHash
		if apiHash == "" {
			apiHash = cfg.Telegram.APIHash
		}
		return mtproto.New(mtproto.Opts{
			ClientID:    cc.ID,
			Kind:        cc.Kind,
			Phone:       cc.Phone,
			Token:       cc.Token,
			APIID:       apiID,
			APIHash:     apiHash,
			SessionsDir: cfg.Telegram.SessionsDir,
			Proxy:       cfg.Telegram.Proxy,
		})
	}
}

// bootClients merges config-file clients with persisted accounts added
// through the API. The config file wins on ID collisions.
func bootClients(cfg *config.Config, gdb *gorm.DB) []config.ClientConfig {
	clients := make([]config.ClientConfig, 0, len(cfg.Clients))
	seen := make(map[string]bool)
	for _, cc := range cfg.Clients {
		clients = append(clients, cc)
		seen[cc.ID] = true
	}

	accts, err := store.AllClients(gdb)
	if err != nil {
		log.Printf("serve: load persisted clients: %v", err)
		return clients
	}
	for _, acct := range accts {
		if seen[acct.ClientID] || !acct.AutoStart {
			continue
		}
		clients = append(clients, config.ClientConfig{
			ID:      acct.ClientID,
			Kind:    acct.Kind,
			Phone:   acct.Phone,
			Token:   acct.Token,
			APIID:   acct.APIID,
			APIHash: acct.APIHash,
			AdminID: acct.AdminID,
		})
	}
	return clients
}

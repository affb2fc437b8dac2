package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zulandar/semaphore/internal/config"
	"github.com/zulandar/semaphore/internal/relay"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Telegram client management commands",
	}

	cmd.AddCommand(newClientListCmd())
	cmd.AddCommand(newClientLoginCmd())
	return cmd
}

func newClientListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(cfg.Clients) == 0 {
				fmt.Fprintln(out, "No clients configured")
				return nil
			}
			for _, cc := range cfg.Clients {
				identity := cc.Phone
				if cc.Kind == "bot" {
					identity = "bot token"
				}
				fmt.Fprintf(out, "%-20s %-5s %s\n", cc.ID, cc.Kind, identity)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	return cmd
}

// newClientLoginCmd performs the interactive login for one user client,
// creating or refreshing its session file. Codes are read from stdin and
// the 2FA password with echo disabled.
func newClientLoginCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "login <client-id>",
		Short: "Interactively authenticate a user client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			var client *config.ClientConfig
			for i := range cfg.Clients {
				if cfg.Clients[i].ID == args[0] {
					client = &cfg.Clients[i]
					break
				}
			}
			if client == nil {
				return fmt.Errorf("client %q not found in %s", args[0], configPath)
			}
			return runClientLogin(cmd, cfg, *client)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semaphore.yaml", "path to Semaphore config file")
	return cmd
}

func runClientLogin(cmd *cobra.Command, cfg *config.Config, cc config.ClientConfig) error {
	out := cmd.OutOrStdout()

	transport, err := transportFactory(cfg)(cc)
	if err != nil {
		return err
	}
	auth, ok := transport.(relay.InteractiveAuth)
	if !ok {
		return fmt.Errorf("client %q does not support interactive login", cc.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan relay.UserInfo, 1)
	runErr := make(chan error, 1)
	go func() {
		runErr <- transport.Run(ctx, relay.Handlers{
			OnReady: func(self relay.UserInfo) { ready <- self },
		})
	}()

	fmt.Fprintf(out, "Connecting client %q...\n", cc.ID)
	reader := bufio.NewReader(cmd.InOrStdin())

	for {
		select {
		case self := <-ready:
			fmt.Fprintf(out, "Logged in as %s (id=%d), session saved\n", self.Username, self.ID)
			cancel()
			<-runErr
			return nil
		case err := <-runErr:
			return fmt.Errorf("login: %w", err)
		case <-time.After(200 * time.Millisecond):
		}

		switch auth.LoginState() {
		case relay.LoginWaitingCode:
			fmt.Fprint(out, "Enter login code: ")
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read code: %w", err)
			}
			if err := auth.SubmitCode(strings.TrimSpace(code)); err != nil {
				return err
			}
			// The flow moves on; wait for the next state.
			waitStateChange(auth, relay.LoginWaitingCode)
		case relay.LoginWaitingPassword:
			fmt.Fprint(out, "Enter 2FA password: ")
			password, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if err := auth.SubmitPassword(string(password)); err != nil {
				return err
			}
			waitStateChange(auth, relay.LoginWaitingPassword)
		}
	}
}

// waitStateChange blocks briefly until the flow leaves the given state, so
// the prompt loop doesn't re-ask before the flow advances.
func waitStateChange(auth relay.InteractiveAuth, state string) {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if auth.LoginState() != state {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

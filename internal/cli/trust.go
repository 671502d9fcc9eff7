package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagesentry/pagesentry/internal/alert"
)

var trustStateDir string

// trustCmd represents the trust command
var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Manage the trusted-domain allow-list",
	Long: `Manage the domains exempt from monitoring.

Pages on trusted domains are never scanned or highlighted. A trusted
entry matches the exact host, any subdomain of it, and any host that
contains it.`,
}

var trustAddCmd = &cobra.Command{
	Use:   "add <domain>",
	Short: "Add a domain to the allow-list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain := strings.ToLower(strings.TrimSpace(args[0]))
		if domain == "" {
			return fmt.Errorf("empty domain")
		}

		state, store, err := loadState()
		if err != nil {
			return err
		}

		for _, entry := range state.TrustedDomains {
			if entry == domain {
				fmt.Printf("%s is already trusted\n", domain)
				return nil
			}
		}
		state.TrustedDomains = append(state.TrustedDomains, domain)
		if err := store.Save(state); err != nil {
			return fmt.Errorf("save state: %w", err)
		}

		fmt.Printf("Added %s to trusted domains\n", domain)
		return nil
	},
}

var trustRemoveCmd = &cobra.Command{
	Use:   "remove <domain>",
	Short: "Remove a domain from the allow-list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain := strings.ToLower(strings.TrimSpace(args[0]))

		state, store, err := loadState()
		if err != nil {
			return err
		}

		for i, entry := range state.TrustedDomains {
			if entry == domain {
				state.TrustedDomains = append(state.TrustedDomains[:i], state.TrustedDomains[i+1:]...)
				if err := store.Save(state); err != nil {
					return fmt.Errorf("save state: %w", err)
				}
				fmt.Printf("Removed %s from trusted domains\n", domain)
				return nil
			}
		}

		fmt.Printf("%s is not in the trusted list\n", domain)
		return nil
	},
}

var trustListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trusted domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _, err := loadState()
		if err != nil {
			return err
		}

		if len(state.TrustedDomains) == 0 {
			fmt.Println("No trusted domains.")
			return nil
		}
		for _, entry := range state.TrustedDomains {
			fmt.Println(entry)
		}
		return nil
	},
}

func init() {
	trustCmd.PersistentFlags().StringVar(&trustStateDir, "state-dir", "", "state directory (default: $HOME/.pagesentry)")

	trustCmd.AddCommand(trustAddCmd)
	trustCmd.AddCommand(trustRemoveCmd)
	trustCmd.AddCommand(trustListCmd)
	rootCmd.AddCommand(trustCmd)
}

// loadState opens the persisted coordinator state, initializing defaults on
// first use.
func loadState() (*alert.State, *alert.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dir := cfg.Storage.Dir
	if trustStateDir != "" {
		dir = trustStateDir
	}

	store := alert.NewStore(stateDir(dir))
	state, err := store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load state: %w", err)
	}
	if state == nil {
		state = alert.DefaultState(cfg.Alerts.NotificationLevel, cfg.Alerts.TrustedDomains)
	}
	return state, store, nil
}

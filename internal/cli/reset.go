package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearth-app/hearth/internal/daemon"
	"github.com/hearth-app/hearth/internal/domain"
)

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().Bool("yes", false, "Confirm wiping all balance, upgrades, and items")
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the daemon's economy state",
	Long: `Reset the running daemon: balance, lifetime counters, owned upgrades,
and the item inventory are all cleared, in memory and on disk.`,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("reset wipes everything; re-run with --yes to confirm")
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return err
	}

	var wallet domain.WalletSnapshot
	client := newAPIClient(cfg)
	if err := client.post("/api/reset", &wallet); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Reset complete. Balance: %s credits.\n", domain.HumanCredits(wallet.Balance))
	return nil
}

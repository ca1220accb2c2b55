package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearth-app/hearth/internal/daemon"
	"github.com/hearth-app/hearth/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running daemon's wallet",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return err
	}

	var wallet domain.WalletSnapshot
	if err := newAPIClient(cfg).get("/api/wallet", &wallet); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Balance:           %s credits\n", domain.HumanCredits(wallet.Balance))
	fmt.Fprintf(os.Stdout, "Accrual rate:      %d credits/tick\n", wallet.AccrualRate)
	fmt.Fprintf(os.Stdout, "Lifetime earned:   %s\n", domain.HumanCredits(wallet.LifetimeEarned))
	fmt.Fprintf(os.Stdout, "Profile lifetime:  %s\n", domain.HumanCredits(wallet.ProfileLifetimeEarned))
	return nil
}

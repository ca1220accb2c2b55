package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearth-app/hearth/internal/daemon"
	"github.com/hearth-app/hearth/internal/domain"
)

func init() {
	rootCmd.AddCommand(buyCmd)
}

var buyCmd = &cobra.Command{
	Use:   "buy UPGRADE_ID",
	Short: "Buy an upgrade from the running daemon",
	Long:  `Buy an upgrade by id. Use 'hearth status' first to see the balance.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runBuy,
}

func runBuy(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return err
	}

	var resp struct {
		Wallet domain.WalletSnapshot `json:"wallet"`
	}
	client := newAPIClient(cfg)
	if err := client.post("/api/upgrades/"+args[0]+"/buy", &resp); err != nil {
		return fmt.Errorf("buy %s: %w", args[0], err)
	}

	fmt.Fprintf(os.Stdout, "Bought %s.\n", args[0])
	fmt.Fprintf(os.Stdout, "Balance:       %s credits\n", domain.HumanCredits(resp.Wallet.Balance))
	fmt.Fprintf(os.Stdout, "Accrual rate:  %d credits/tick\n", resp.Wallet.AccrualRate)
	return nil
}

// Package cli wires the cobra command tree for the hearth binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped by the build.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "hearth",
	Short: "Idle credit engine with an upgrade shop and catalog",
	Long: `Hearth is a local idle-accrual daemon. Credits accrue every second at a
rate derived from owned upgrades, persist across restarts, and keep
accruing (on reconciliation) while the host is suspended.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config.toml (default ~/.hearth/config.toml)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hearth version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "hearth %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package cli implements the coinquest command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coinquest",
	Short: "CoinQuest rewards daemon and CLI",
	Long: `CoinQuest is a rewards engine: a coin ledger with XP and levels,
earnable tasks, a rewarded-ad gate, and arcade mini-games (Lucky Wheel,
AI trivia, tap mining). Run 'coinquest serve' to start the daemon, then
point a UI or the CLI at its HTTP API.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, "coinquest 0.1.0")
	},
}

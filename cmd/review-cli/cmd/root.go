package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "review-cli",
	Short: "Transaction review and submission from the command line",
	Long: `Inspect what a transaction manifest will do before signing it:
preview withdrawals and deposits, adjust deposit guarantees, and
submit the finalized transaction to the network gateway.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("gateway", "http://localhost:8088", "gateway base URL")
	rootCmd.PersistentFlags().Uint8("network", 2, "network id")
}

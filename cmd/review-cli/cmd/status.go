package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"review-core/internal/gateway"
)

var statusCmd = &cobra.Command{
	Use:   "status <intent-id>",
	Short: "Look up the ledger status of a submitted intent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		gatewayURL, _ := cmd.Flags().GetString("gateway")
		networkID, _ := cmd.Flags().GetUint8("network")

		gw := gateway.NewClient(gatewayURL, networkID, 30*time.Second)
		status, err := gw.PollStatus(context.Background(), args[0])
		if err != nil {
			fmt.Printf("status lookup failed: %v\n", err)
			os.Exit(1)
		}

		switch {
		case status.Committed:
			fmt.Printf("committed: %s\n", status.TxID)
		case status.PermanentFailure:
			fmt.Printf("failed permanently: %s\n", status.Reason)
		default:
			fmt.Println("pending")
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

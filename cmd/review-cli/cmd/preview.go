package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview what a manifest will do",
	Long:  `Runs the manifest through the gateway's analysis and prints the withdrawals, deposits, dApps, and fee it would produce.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestFile, _ := cmd.Flags().GetString("input")

		// Preview never signs, so no notary key is needed.
		session, err := buildSession(cmd, manifestFile, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if err := session.OnAppear(context.Background()); err != nil {
			fmt.Printf("review failed: %v\n", err)
			os.Exit(1)
		}

		printSnapshot(session.Snapshot())

		raw, err := session.RawTransaction()
		if err == nil {
			fmt.Println("\nFinal manifest:")
			fmt.Println(raw)
		}
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("input", "i", "manifest.rtm", "manifest file path")
	previewCmd.Flags().StringArray("account", nil, "owned account as address=Label (repeatable)")
	previewCmd.Flags().Int("default-guarantee", 100, "default guarantee percent for estimated deposits")
}

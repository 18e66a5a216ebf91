package cmd

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"review-core/internal/notary"
	"review-core/internal/submit"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Review, sign, and submit a manifest",
	Long: `Previews the manifest, applies the requested guarantee percentage to
every estimated deposit, signs with the notary key, submits through the
gateway, and watches the transaction until its outcome is known.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestFile, _ := cmd.Flags().GetString("input")
		keyFile, _ := cmd.Flags().GetString("keystore")
		guaranteePercent, _ := cmd.Flags().GetInt64("guarantee")

		fmt.Print("Keystore passphrase: ")
		passphrase, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Printf("reading passphrase failed: %v\n", err)
			os.Exit(1)
		}

		signer, err := notary.Load(keyFile, string(passphrase))
		if err != nil {
			fmt.Printf("loading notary key failed: %v\n", err)
			os.Exit(1)
		}

		session, err := buildSession(cmd, manifestFile, signer)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if err := session.OnAppear(context.Background()); err != nil {
			fmt.Printf("review failed: %v\n", err)
			os.Exit(1)
		}

		if guaranteePercent > 0 {
			percent := decimal.NewFromInt(guaranteePercent)
			for _, group := range session.Snapshot().Deposits {
				for _, tr := range group.Transfers {
					if tr.Guarantee == nil {
						continue
					}
					if _, err := session.EditGuarantee(tr.ID, percent); err != nil {
						fmt.Printf("guarantee edit failed for %s: %v\n", tr.ID, err)
						os.Exit(1)
					}
				}
			}
		}

		printSnapshot(session.Snapshot())

		fmt.Print("Submit this transaction? [y/N]: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("aborted")
			return
		}

		done := make(chan submit.State, 8)
		session.OnSubmissionChange(func(st submit.State) {
			fmt.Printf("  -> %s\n", st.Phase)
			if st.Phase.Terminal() || (st.Phase == submit.PhaseNotStarted && st.FailureReason != "") {
				done <- st
			}
		})

		if err := session.Approve(context.Background()); err != nil {
			fmt.Printf("approval failed: %v\n", err)
			os.Exit(1)
		}

		final := <-done
		switch final.Phase {
		case submit.PhaseCommitted:
			fmt.Printf("committed: %s\n", final.TxID)
		case submit.PhaseRejected:
			fmt.Printf("rejected: %s (transaction was not applied)\n", final.FailureReason)
		default:
			fmt.Printf("failed: %s\n", final.FailureReason)
			if !final.OutcomeKnown {
				fmt.Printf("outcome unknown; check intent %s before retrying\n", final.IntentID)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringP("input", "i", "manifest.rtm", "manifest file path")
	submitCmd.Flags().StringP("keystore", "k", "notary.json", "notary key file path")
	submitCmd.Flags().Int64("guarantee", 0, "guarantee percent applied to every estimated deposit (0 keeps defaults)")
	submitCmd.Flags().StringArray("account", nil, "owned account as address=Label (repeatable)")
	submitCmd.Flags().Int("default-guarantee", 100, "default guarantee percent for estimated deposits")
}

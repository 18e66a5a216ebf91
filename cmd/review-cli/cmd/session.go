package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"review-core/internal/gateway"
	"review-core/internal/manifest"
	"review-core/internal/review"
	"review-core/internal/submit"
)

// staticAccounts serves the owned-accounts set from --account flags, so
// the CLI labels transfers without a database.
type staticAccounts struct {
	accounts []review.OwnedAccount
}

func (s staticAccounts) ResolveOwnedAccounts(context.Context) ([]review.OwnedAccount, error) {
	return s.accounts, nil
}

func parseAccountFlags(specs []string) ([]review.OwnedAccount, error) {
	out := make([]review.OwnedAccount, 0, len(specs))
	for _, spec := range specs {
		addr, label, found := strings.Cut(spec, "=")
		if !found || addr == "" {
			return nil, fmt.Errorf("bad --account %q, expected address=Label", spec)
		}
		out = append(out, review.OwnedAccount{Address: addr, DisplayLabel: label})
	}
	return out, nil
}

func buildSession(cmd *cobra.Command, manifestFile string, signer submit.Signer) (*review.Session, error) {
	data, err := os.ReadFile(manifestFile)
	if err != nil {
		return nil, fmt.Errorf("reading manifest file: %w", err)
	}

	gatewayURL, _ := cmd.Flags().GetString("gateway")
	networkID, _ := cmd.Flags().GetUint8("network")
	accountSpecs, _ := cmd.Flags().GetStringArray("account")
	percent, _ := cmd.Flags().GetInt("default-guarantee")

	accounts, err := parseAccountFlags(accountSpecs)
	if err != nil {
		return nil, err
	}

	gw := gateway.NewClient(gatewayURL, networkID, 30*time.Second)

	deps := review.SessionDeps{
		Preview:                 gw,
		Metadata:                gw,
		Accounts:                staticAccounts{accounts: accounts},
		Signer:                  signer,
		Submit:                  gw,
		Poll:                    submit.PollStrategy{Interval: 2 * time.Second, MaxTries: 20},
		NetworkID:               networkID,
		DefaultGuaranteePercent: percent,
		MetadataWorkers:         4,
	}
	return review.NewSession(manifest.Parse(string(data)), deps), nil
}

func printSnapshot(s *review.Snapshot) {
	fmt.Println("================ Transaction Review ================")

	printGroups := func(title string, groups []review.AccountTransfers) {
		fmt.Printf("%s:\n", title)
		if len(groups) == 0 {
			fmt.Println("  (none)")
			return
		}
		for _, group := range groups {
			label := group.Account.DisplayLabel
			if label == "" {
				label = "external"
			}
			fmt.Printf("  %s (%s)\n", group.Account.Address, label)
			for _, tr := range group.Transfers {
				name := tr.Metadata.Name
				marker := ""
				if tr.Certainty.Estimated {
					marker = " (estimated)"
				}
				fmt.Printf("    %s %s%s\n", tr.Specifier.Quantity(), name, marker)
				if tr.Guarantee != nil {
					fmt.Printf("      guaranteed at least %s  [transfer %s]\n", tr.Guarantee.Amount, tr.ID)
				}
			}
		}
	}

	printGroups("Withdrawing", s.Withdrawals)
	printGroups("Depositing", s.Deposits)

	if len(s.DappsUsed) > 0 {
		fmt.Println("Using dApps:")
		for _, d := range s.DappsUsed {
			fmt.Printf("  %s (%s)\n", d.Name, d.Address)
		}
	}
	if len(s.Proofs) > 0 {
		fmt.Println("Presenting proofs:")
		for _, p := range s.Proofs {
			fmt.Printf("  %s (%s)\n", p.Name, p.ResourceAddress)
		}
	}

	fmt.Printf("Estimated fee: %s\n", s.Fee)
	fmt.Println("====================================================")
}

package review

import (
	"github.com/shopspring/decimal"

	"review-core/internal/manifest"
)

// BuildSnapshot assembles the immutable review aggregate. Pure
// aggregation: every input was fetched and joined before this runs, so
// the builder never observes partial concurrent state.
func BuildSnapshot(
	withdrawals []AccountTransfers,
	deposits []AccountTransfers,
	dappsUsed []DappEntry,
	proofs []ProofEntry,
	fee decimal.Decimal,
	m manifest.Manifest,
	manifestWithLockFee manifest.Manifest,
	accountsDegraded bool,
) *Snapshot {
	requires := false
	for _, group := range deposits {
		for _, tr := range group.Transfers {
			if tr.Guarantee != nil {
				requires = true
				break
			}
		}
		if requires {
			break
		}
	}

	return &Snapshot{
		Withdrawals:         withdrawals,
		Deposits:            deposits,
		DappsUsed:           dedupeDapps(dappsUsed),
		Proofs:              proofs,
		Fee:                 fee,
		Manifest:            m,
		ManifestWithLockFee: manifestWithLockFee,
		RequiresGuarantees:  requires,
		AccountsDegraded:    accountsDegraded,
	}
}

// dedupeDapps keeps the first entry per address, preserving encounter
// order.
func dedupeDapps(in []DappEntry) []DappEntry {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]DappEntry, 0, len(in))
	for _, d := range in {
		if _, ok := seen[d.Address]; ok {
			continue
		}
		seen[d.Address] = struct{}{}
		out = append(out, d)
	}
	return out
}

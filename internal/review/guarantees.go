package review

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"review-core/internal/manifest"
	"review-core/pkg/errno"
)

var hundred = decimal.NewFromInt(100)

// ApplyGuaranteePercentage sets the minimum-accepted percentage for one
// estimated deposit and returns the superseding snapshot. The input
// snapshot is never mutated; on any error it remains the authoritative
// state.
//
// The new amount is always recomputed from the transfer's original
// estimated amount, truncated at the resource's divisibility. Recomputing
// from the estimate rather than the previous guarantee makes the edit
// idempotent: the same percentage applied N times yields the same value,
// with no drift from repeated rounding.
func ApplyGuaranteePercentage(s *Snapshot, transferID uuid.UUID, percent decimal.Decimal) (*Snapshot, error) {
	if percent.LessThanOrEqual(decimal.Zero) || percent.GreaterThan(hundred) {
		return nil, errno.ErrGuaranteeOutOfBound
	}

	groupIdx, transferIdx := -1, -1
	for gi, group := range s.Deposits {
		for ti, tr := range group.Transfers {
			if tr.ID == transferID {
				groupIdx, transferIdx = gi, ti
				break
			}
		}
		if groupIdx >= 0 {
			break
		}
	}
	if groupIdx < 0 {
		return nil, errno.ErrTransferNotFound
	}

	current := s.Deposits[groupIdx].Transfers[transferIdx]
	if current.Guarantee == nil {
		return nil, errno.ErrNotGuaranteed
	}

	updatedGuarantee := &manifest.Guarantee{
		Amount:           GuaranteeAmount(current.Specifier.Amount, percent, current.Metadata.Divisibility),
		InstructionIndex: current.Guarantee.InstructionIndex,
		ResourceAddress:  current.Guarantee.ResourceAddress,
	}

	updated := current
	updated.Guarantee = updatedGuarantee

	// Copy-on-write along the path to the edited transfer; all other
	// groups and fields stay referentially identical.
	deposits := make([]AccountTransfers, len(s.Deposits))
	copy(deposits, s.Deposits)

	transfers := make([]Transfer, len(deposits[groupIdx].Transfers))
	copy(transfers, deposits[groupIdx].Transfers)
	transfers[transferIdx] = updated
	deposits[groupIdx].Transfers = transfers

	next := *s
	next.Deposits = deposits
	return &next, nil
}

package review

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"review-core/internal/manifest"
)

// ResourceKind tells fungible and non-fungible resources apart.
type ResourceKind string

const (
	ResourceFungible    ResourceKind = "fungible"
	ResourceNonFungible ResourceKind = "non_fungible"
)

// Account is either wallet-owned (Known) or an external party seen in the
// manifest. Identity is the address; once resolved for a review the value
// never changes.
type Account struct {
	Address       string `json:"address"`
	Known         bool   `json:"known"`
	DisplayLabel  string `json:"display_label,omitempty"`
	AppearanceTag int    `json:"appearance_tag,omitempty"`
	// Approved tracks whether the user has acknowledged this external
	// party. Addresses met purely as manifest parties are provisionally
	// trusted for display; nothing moves without explicit approval later.
	Approved bool `json:"approved,omitempty"`
}

// KnownAccount builds a wallet-owned account value.
func KnownAccount(address, label string, appearanceTag int) Account {
	return Account{Address: address, Known: true, DisplayLabel: label, AppearanceTag: appearanceTag}
}

// ExternalAccount builds an account for an address the wallet does not own.
func ExternalAccount(address string) Account {
	return Account{Address: address, Approved: true}
}

// ResourceSpecifier names a resource and how much of it moves: a decimal
// amount for fungibles, a set of local ids for non-fungibles.
type ResourceSpecifier struct {
	ResourceAddress string          `json:"resource_address"`
	Kind            ResourceKind    `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	LocalIDs        []string        `json:"local_ids,omitempty"`
}

// Quantity is the amount for fungibles and the id count for non-fungibles
// (one unit per id).
func (s ResourceSpecifier) Quantity() decimal.Decimal {
	if s.Kind == ResourceNonFungible {
		return decimal.NewFromInt(int64(len(s.LocalIDs)))
	}
	return s.Amount
}

// Certainty marks an effect's amount as fixed at manifest construction
// time or dependent on runtime execution. For estimated effects the
// instruction index is the only handle that can bind a guarantee back to
// the manifest; it must survive unchanged from analysis to rewriting.
type Certainty struct {
	Estimated        bool                      `json:"estimated"`
	InstructionIndex manifest.InstructionIndex `json:"instruction_index,omitempty"`
}

// Exact marks a fully determined amount.
func Exact() Certainty {
	return Certainty{}
}

// Estimated marks a runtime-dependent amount produced by the instruction
// at the given index.
func Estimated(idx manifest.InstructionIndex) Certainty {
	return Certainty{Estimated: true, InstructionIndex: idx}
}

// ResourceMetadata is display metadata fetched once per distinct resource
// address and cached for the duration of one review.
type ResourceMetadata struct {
	Name         string       `json:"name"`
	Symbol       string       `json:"symbol,omitempty"`
	IconURL      string       `json:"icon_url,omitempty"`
	Kind         ResourceKind `json:"kind"`
	Divisibility int32        `json:"divisibility"`
}

// PlaceholderMetadata stands in when a metadata lookup fails. The transfer
// is still shown, just degraded.
func PlaceholderMetadata(resourceAddress string) ResourceMetadata {
	kind := ResourceFungible
	if manifest.DecodeAddressKind(resourceAddress) == manifest.AddressNonFungibleResource {
		kind = ResourceNonFungible
	}
	return ResourceMetadata{
		Name:         "Unknown resource",
		Kind:         kind,
		Divisibility: maxDivisibility,
	}
}

// maxDivisibility caps decimal places on ledger amounts.
const maxDivisibility = 18

// Transfer is one classified resource movement for one account.
type Transfer struct {
	ID        uuid.UUID           `json:"id"`
	Account   Account             `json:"account"`
	Specifier ResourceSpecifier   `json:"specifier"`
	Metadata  ResourceMetadata    `json:"metadata"`
	Certainty Certainty           `json:"certainty"`
	Guarantee *manifest.Guarantee `json:"guarantee,omitempty"`
}

// AccountTransfers groups the transfers of a single account, in manifest
// encounter order.
type AccountTransfers struct {
	Account   Account    `json:"account"`
	Transfers []Transfer `json:"transfers"`
}

// DappEntry is a dApp component invoked by the manifest, deduplicated by
// address.
type DappEntry struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	IconURL     string `json:"icon_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProofEntry is a badge/proof the manifest presents.
type ProofEntry struct {
	ResourceAddress string `json:"resource_address"`
	Name            string `json:"name"`
	IconURL         string `json:"icon_url,omitempty"`
}

// Snapshot is the immutable review aggregate shown to the user. Guarantee
// edits produce a new Snapshot; everything untouched stays referentially
// identical.
type Snapshot struct {
	Withdrawals []AccountTransfers `json:"withdrawals"`
	Deposits    []AccountTransfers `json:"deposits"`
	DappsUsed   []DappEntry        `json:"dapps_used"`
	Proofs      []ProofEntry       `json:"proofs"`
	Fee         decimal.Decimal    `json:"fee"`

	Manifest            manifest.Manifest `json:"manifest"`
	ManifestWithLockFee manifest.Manifest `json:"manifest_with_lock_fee"`

	// RequiresGuarantees gates both the customize affordance and whether
	// approval rewrites the manifest at all.
	RequiresGuarantees bool `json:"requires_guarantees"`

	// AccountsDegraded is set when the owned-accounts store was
	// unavailable: wallet-owned effects were dropped rather than shown as
	// external parties, so the summary may be incomplete.
	AccountsDegraded bool `json:"accounts_degraded,omitempty"`
}

// AllGuarantees collects the guarantees attached to deposit transfers, in
// display order.
func (s *Snapshot) AllGuarantees() []manifest.Guarantee {
	var out []manifest.Guarantee
	for _, group := range s.Deposits {
		for _, tr := range group.Transfers {
			if tr.Guarantee != nil {
				out = append(out, *tr.Guarantee)
			}
		}
	}
	return out
}

// FindDeposit returns the deposit transfer with the given id.
func (s *Snapshot) FindDeposit(transferID uuid.UUID) (Transfer, bool) {
	for _, group := range s.Deposits {
		for _, tr := range group.Transfers {
			if tr.ID == transferID {
				return tr, true
			}
		}
	}
	return Transfer{}, false
}

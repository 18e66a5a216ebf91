package review

import (
	"context"

	"github.com/shopspring/decimal"

	"review-core/internal/manifest"
)

// RawEffect is one analyzer-reported account movement, before resolution
// and classification.
type RawEffect struct {
	AccountAddress string
	Specifier      ResourceSpecifier
	Certainty      Certainty
}

// PreviewResult is what the manifest analyzer returns for a manifest.
type PreviewResult struct {
	RawWithdrawals       []RawEffect
	RawDeposits          []RawEffect
	EncounteredAddresses []string
	ProofResources       []string
	FeeEstimate          decimal.Decimal
	FeePayerAddress      string
	ManifestWithLockFee  manifest.Manifest
}

// PreviewClient runs the manifest through the ledger's analysis service.
// A failure here is terminal for the review screen.
type PreviewClient interface {
	PreviewManifest(ctx context.Context, m manifest.Manifest) (*PreviewResult, error)
}

// EntityMetadata is display metadata for a dApp component or proof
// resource.
type EntityMetadata struct {
	Name        string
	IconURL     string
	Description string
}

// MetadataClient fetches on-ledger display metadata. Each call is
// independently retryable; failures degrade to placeholders and never
// fail a review.
type MetadataClient interface {
	FetchResourceMetadata(ctx context.Context, resourceAddress string) (*ResourceMetadata, error)
	FetchEntityMetadata(ctx context.Context, address string) (*EntityMetadata, error)
}

// OwnedAccount is a wallet-owned account row from the local store.
type OwnedAccount struct {
	Address       string
	DisplayLabel  string
	AppearanceTag int
}

// AccountStore lists the wallet's own accounts on the active network.
type AccountStore interface {
	ResolveOwnedAccounts(ctx context.Context) ([]OwnedAccount, error)
}

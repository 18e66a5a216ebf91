package review

import (
	"context"

	"go.uber.org/zap"

	"review-core/pkg/logger"
)

// AccountResolver maps manifest addresses onto the wallet's own accounts.
// The owned set is loaded once per review and the result is immutable
// after that.
type AccountResolver struct {
	store AccountStore
}

func NewAccountResolver(store AccountStore) *AccountResolver {
	return &AccountResolver{store: store}
}

// ResolvedAccounts is the loaded lookup table. When the store itself was
// unavailable, loadFailed is set and every resolution is reported as
// unavailable: the affected effects get dropped from the summary instead
// of aborting the review or inventing accounts.
type ResolvedAccounts struct {
	owned      map[string]OwnedAccount
	loadFailed bool
}

// Load reads the owned-accounts set. It never returns an error: a store
// failure degrades to a table that cannot resolve anything.
func (r *AccountResolver) Load(ctx context.Context) *ResolvedAccounts {
	accounts, err := r.store.ResolveOwnedAccounts(ctx)
	if err != nil {
		logger.Warn("owned accounts lookup failed, review will be partial", zap.Error(err))
		return &ResolvedAccounts{loadFailed: true}
	}

	owned := make(map[string]OwnedAccount, len(accounts))
	for _, a := range accounts {
		owned[a.Address] = a
	}
	return &ResolvedAccounts{owned: owned}
}

// Resolve maps an address to an account. The second return value is false
// only when the owned-accounts store was unavailable; a plain miss is a
// valid resolution to an external account.
func (ra *ResolvedAccounts) Resolve(address string) (Account, bool) {
	if ra.loadFailed {
		return Account{}, false
	}

	if a, ok := ra.owned[address]; ok {
		return KnownAccount(a.Address, a.DisplayLabel, a.AppearanceTag), true
	}
	return ExternalAccount(address), true
}

// Degraded reports whether resolution is running without the owned set.
func (ra *ResolvedAccounts) Degraded() bool {
	return ra.loadFailed
}

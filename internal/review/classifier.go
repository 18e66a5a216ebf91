package review

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"review-core/internal/manifest"
	"review-core/pkg/cache"
	"review-core/pkg/logger"
	"review-core/pkg/monitor"
)

// Classifier turns raw analyzer effects into per-account transfer groups
// with resolved metadata and default guarantees attached.
//
// The metadata cache is scoped to one review: it is read-shared between
// withdrawal and deposit classification but rebuilt for every new review
// so the summary never shows ledger state from a previous screen.
type Classifier struct {
	metadata MetadataClient
	cache    cache.Cache
	workers  int

	// defaultGuaranteePercent pre-populates guarantees on estimated
	// fungible deposits; 100 keeps the full estimated amount.
	defaultGuaranteePercent decimal.Decimal
}

func NewClassifier(metadata MetadataClient, defaultGuaranteePercent int, workers int) *Classifier {
	if workers <= 0 {
		workers = 4
	}
	pct := decimal.NewFromInt(int64(defaultGuaranteePercent))
	if pct.LessThanOrEqual(decimal.Zero) || pct.GreaterThan(decimal.NewFromInt(100)) {
		pct = decimal.NewFromInt(100)
	}
	return &Classifier{
		metadata:                metadata,
		cache:                   cache.NewMemoryCache(),
		workers:                 workers,
		defaultGuaranteePercent: pct,
	}
}

// PrefetchResources resolves metadata for every distinct resource address
// in the effects, fanning the lookups out over a bounded worker pool. A
// failed lookup degrades that resource to placeholder metadata; it never
// cancels the sibling fetches.
func (c *Classifier) PrefetchResources(ctx context.Context, effects ...[]RawEffect) {
	seen := make(map[string]struct{})
	var addrs []string
	for _, list := range effects {
		for _, e := range list {
			if _, ok := seen[e.Specifier.ResourceAddress]; ok {
				continue
			}
			seen[e.Specifier.ResourceAddress] = struct{}{}
			addrs = append(addrs, e.Specifier.ResourceAddress)
		}
	}
	if len(addrs) == 0 {
		return
	}

	jobs := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range jobs {
				c.fetchResource(ctx, addr)
			}
		}()
	}

	for _, addr := range addrs {
		jobs <- addr
	}
	close(jobs)
	wg.Wait()
}

func (c *Classifier) fetchResource(ctx context.Context, addr string) {
	md, err := c.metadata.FetchResourceMetadata(ctx, addr)
	if err != nil {
		logger.Warn("resource metadata fetch failed, using placeholder",
			zap.String("resource", addr), zap.Error(err))
		if monitor.Business != nil {
			monitor.Business.MetadataFetchFailures.WithLabelValues("resource").Inc()
		}
		return
	}
	_ = c.cache.Set(ctx, "resource:"+addr, *md, time.Minute)
}

// resourceMetadata reads the per-review cache, falling back to the
// placeholder for addresses whose fetch failed or never ran.
func (c *Classifier) resourceMetadata(ctx context.Context, addr string) ResourceMetadata {
	if v, err := c.cache.Get(ctx, "resource:"+addr); err == nil {
		if md, ok := v.(ResourceMetadata); ok {
			return md
		}
	}
	return PlaceholderMetadata(addr)
}

// Classify groups raw effects by account and annotates each with resource
// metadata. Grouping is by address equality: however many times an
// address appears in the manifest, its effects land in one group, in
// manifest encounter order.
//
// An effect whose account cannot be resolved (owned-accounts store down)
// is dropped; groups that end up empty are dropped too rather than shown
// blank.
func (c *Classifier) Classify(ctx context.Context, effects []RawEffect, accounts *ResolvedAccounts) []AccountTransfers {
	groups := make(map[string]*AccountTransfers)
	var order []string

	for _, effect := range effects {
		account, ok := accounts.Resolve(effect.AccountAddress)
		if !ok {
			logger.Warn("dropping effect for unresolvable account",
				zap.String("address", effect.AccountAddress))
			continue
		}

		tr := c.buildTransfer(ctx, account, effect)

		group, ok := groups[account.Address]
		if !ok {
			group = &AccountTransfers{Account: account}
			groups[account.Address] = group
			order = append(order, account.Address)
		}
		group.Transfers = append(group.Transfers, tr)
	}

	out := make([]AccountTransfers, 0, len(order))
	for _, addr := range order {
		group := groups[addr]
		if len(group.Transfers) == 0 {
			continue
		}
		out = append(out, *group)
	}
	return out
}

func (c *Classifier) buildTransfer(ctx context.Context, account Account, effect RawEffect) Transfer {
	md := c.resourceMetadata(ctx, effect.Specifier.ResourceAddress)

	tr := Transfer{
		ID:        uuid.New(),
		Account:   account,
		Specifier: effect.Specifier,
		Metadata:  md,
		Certainty: effect.Certainty,
	}

	// Guarantees only make sense for continuous amounts: an estimated
	// non-fungible transfer is still whole ids.
	if effect.Certainty.Estimated && md.Kind == ResourceFungible && effect.Specifier.Kind == ResourceFungible {
		tr.Guarantee = &manifest.Guarantee{
			Amount:           GuaranteeAmount(effect.Specifier.Amount, c.defaultGuaranteePercent, md.Divisibility),
			InstructionIndex: effect.Certainty.InstructionIndex,
			ResourceAddress:  effect.Specifier.ResourceAddress,
		}
	}

	return tr
}

// GuaranteeAmount computes estimated * percent / 100, truncated toward
// zero at the resource's divisibility. Rounding is always down so the
// guarantee never promises more than the user authorized.
func GuaranteeAmount(estimated, percent decimal.Decimal, divisibility int32) decimal.Decimal {
	if divisibility < 0 || divisibility > maxDivisibility {
		divisibility = maxDivisibility
	}
	// Shift instead of Div: dividing by 100 must stay exact, Div would
	// clamp at the package's division precision first.
	return estimated.Mul(percent).Shift(-2).RoundDown(divisibility)
}

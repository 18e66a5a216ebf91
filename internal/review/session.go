package review

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"review-core/internal/manifest"
	"review-core/internal/submit"
	"review-core/pkg/errno"
	"review-core/pkg/logger"
	"review-core/pkg/monitor"
)

// SessionDeps are the capabilities a review session runs against. They
// are injected explicitly so the whole flow is testable with fakes.
type SessionDeps struct {
	Preview  PreviewClient
	Metadata MetadataClient
	Accounts AccountStore
	Signer   submit.Signer
	Submit   submit.SubmitClient

	Poll                    submit.PollStrategy
	NetworkID               uint8
	TipPercentage           uint16
	DefaultGuaranteePercent int
	MetadataWorkers         int
}

// Session owns one transaction review from preview to terminal
// submission outcome. The snapshot and submission state are owned here;
// the presentation layer only ever reads them.
type Session struct {
	ID uuid.UUID

	deps       SessionDeps
	resolver   *AccountResolver
	classifier *Classifier
	orch       *submit.Orchestrator
	header     submit.Header

	mu         sync.RWMutex
	manifest   manifest.Manifest
	snapshot   *Snapshot
	onSnapshot []func(*Snapshot)
}

// NewSession prepares a review for the given manifest. Nothing touches
// the network until OnAppear.
func NewSession(m manifest.Manifest, deps SessionDeps) *Session {
	return &Session{
		ID:         uuid.New(),
		deps:       deps,
		manifest:   m,
		resolver:   NewAccountResolver(deps.Accounts),
		classifier: NewClassifier(deps.Metadata, deps.DefaultGuaranteePercent, deps.MetadataWorkers),
		orch:       submit.NewOrchestrator(deps.Signer, deps.Submit, deps.Poll),
		header: submit.Header{
			NetworkID:     deps.NetworkID,
			Nonce:         randomNonce(),
			TipPercentage: deps.TipPercentage,
		},
	}
}

// OnAppear runs the analysis phase and publishes the first snapshot. A
// preview failure is terminal for the screen; everything downstream of
// the preview degrades per item instead of failing the review.
func (s *Session) OnAppear(ctx context.Context) error {
	if monitor.Business != nil {
		monitor.Business.ReviewStartedTotal.Inc()
	}

	preview, err := s.deps.Preview.PreviewManifest(ctx, s.manifest)
	if err != nil {
		if monitor.Business != nil {
			monitor.Business.ReviewFailedTotal.Inc()
		}
		return fmt.Errorf("%w: %v", errno.ErrPreviewFailed, err)
	}

	accounts := s.resolver.Load(ctx)

	// Some gateways return no fee-bearing variant; build one locally from
	// the reported fee payer so approval still locks a fee.
	withFee := preview.ManifestWithLockFee
	if len(withFee.Instructions) == 0 && preview.FeePayerAddress != "" {
		withFee = s.manifest.WithLockFee(preview.FeePayerAddress, preview.FeeEstimate)
	}

	// Fan out all metadata lookups, join, then build. The builder never
	// sees a half-fetched review.
	s.classifier.PrefetchResources(ctx, preview.RawWithdrawals, preview.RawDeposits)
	dapps := s.fetchDapps(ctx, preview.EncounteredAddresses)
	proofs := s.fetchProofs(ctx, preview.ProofResources)

	withdrawals := s.classifier.Classify(ctx, preview.RawWithdrawals, accounts)
	deposits := s.classifier.Classify(ctx, preview.RawDeposits, accounts)

	snapshot := BuildSnapshot(
		withdrawals,
		deposits,
		dapps,
		proofs,
		preview.FeeEstimate,
		s.manifest,
		withFee,
		accounts.Degraded(),
	)

	s.publish(snapshot)
	return nil
}

// Snapshot returns the current review snapshot, nil before OnAppear
// completes.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// OnSnapshotChange registers an observer for superseding snapshots.
func (s *Session) OnSnapshotChange(fn func(*Snapshot)) {
	s.mu.Lock()
	s.onSnapshot = append(s.onSnapshot, fn)
	s.mu.Unlock()
}

// EditGuarantee applies a new minimum percentage to one estimated
// deposit. On success the returned snapshot supersedes the previous one;
// on failure the previous snapshot stays authoritative.
func (s *Session) EditGuarantee(transferID uuid.UUID, percent decimal.Decimal) (*Snapshot, error) {
	s.mu.Lock()
	current := s.snapshot
	s.mu.Unlock()

	if current == nil {
		return nil, errno.ErrReviewNotReady
	}

	next, err := ApplyGuaranteePercentage(current, transferID, percent)
	if err != nil {
		return nil, err
	}

	if monitor.Business != nil {
		monitor.Business.GuaranteeEditsTotal.Inc()
	}
	s.publish(next)
	return next, nil
}

// Approve finalizes the manifest (fee lock plus guarantee assertions) and
// hands it to the submission orchestrator. A second approval while one is
// in flight is rejected without side effects.
func (s *Session) Approve(ctx context.Context) error {
	final, err := s.FinalManifest()
	if err != nil {
		return err
	}
	return s.orch.Approve(ctx, final, s.header)
}

// Cancel aborts the active submission wait, if any, and reports what the
// cancellation actually achieved.
func (s *Session) Cancel() submit.CancelOutcome {
	return s.orch.Cancel()
}

// SubmissionState exposes the orchestrator's observable state.
func (s *Session) SubmissionState() submit.State {
	return s.orch.State()
}

// OnSubmissionChange registers an observer for submission transitions.
func (s *Session) OnSubmissionChange(fn func(submit.State)) {
	s.orch.OnChange(fn)
}

// FinalManifest is the manifest that will actually be signed: the
// fee-bearing variant with guarantee assertions injected. A review with
// no guarantees skips rewriting entirely — the deterministic manifest is
// passed through untouched.
func (s *Session) FinalManifest() (manifest.Manifest, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()

	if snapshot == nil {
		return manifest.Manifest{}, errno.ErrReviewNotReady
	}

	base := snapshot.ManifestWithLockFee
	if len(base.Instructions) == 0 {
		base = snapshot.Manifest
	}

	if !snapshot.RequiresGuarantees {
		return base, nil
	}

	// Guarantee indices refer to the analyzed manifest; wallet-added
	// instructions in front of it shift every insertion point by the
	// same amount.
	prefix := len(base.Instructions) - len(snapshot.Manifest.Instructions)
	if prefix < 0 {
		prefix = 0
	}
	return base.WithGuarantees(snapshot.AllGuarantees(), prefix), nil
}

// RawTransaction renders the final manifest in its textual form without
// touching review state.
func (s *Session) RawTransaction() (string, error) {
	final, err := s.FinalManifest()
	if err != nil {
		return "", err
	}
	return final.String(), nil
}

func (s *Session) publish(snapshot *Snapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	observers := make([]func(*Snapshot), len(s.onSnapshot))
	copy(observers, s.onSnapshot)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

// fetchDapps resolves metadata for every component address the manifest
// touches. Each lookup degrades independently; one dApp's failure never
// hides another.
func (s *Session) fetchDapps(ctx context.Context, addresses []string) []DappEntry {
	var components []string
	for _, addr := range addresses {
		if manifest.DecodeAddressKind(addr) == manifest.AddressComponent {
			components = append(components, addr)
		}
	}
	if len(components) == 0 {
		return nil
	}

	entries := make([]DappEntry, len(components))
	var wg sync.WaitGroup
	for i, addr := range components {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			md, err := s.deps.Metadata.FetchEntityMetadata(ctx, addr)
			if err != nil {
				logger.Warn("dApp metadata fetch failed, using placeholder",
					zap.String("component", addr), zap.Error(err))
				if monitor.Business != nil {
					monitor.Business.MetadataFetchFailures.WithLabelValues("dapp").Inc()
				}
				entries[i] = DappEntry{Address: addr, Name: "Unknown dApp"}
				return
			}
			entries[i] = DappEntry{
				Address:     addr,
				Name:        md.Name,
				IconURL:     md.IconURL,
				Description: md.Description,
			}
		}(i, addr)
	}
	wg.Wait()
	return entries
}

func (s *Session) fetchProofs(ctx context.Context, resources []string) []ProofEntry {
	if len(resources) == 0 {
		return nil
	}

	entries := make([]ProofEntry, len(resources))
	var wg sync.WaitGroup
	for i, addr := range resources {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			md, err := s.deps.Metadata.FetchEntityMetadata(ctx, addr)
			if err != nil {
				logger.Warn("proof metadata fetch failed, using placeholder",
					zap.String("resource", addr), zap.Error(err))
				if monitor.Business != nil {
					monitor.Business.MetadataFetchFailures.WithLabelValues("proof").Inc()
				}
				entries[i] = ProofEntry{ResourceAddress: addr, Name: "Unknown badge"}
				return
			}
			entries[i] = ProofEntry{ResourceAddress: addr, Name: md.Name, IconURL: md.IconURL}
		}(i, addr)
	}
	wg.Wait()
	return entries
}

func randomNonce() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(b[:])
}

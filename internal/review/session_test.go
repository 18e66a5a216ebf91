package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-core/internal/manifest"
	"review-core/internal/submit"
	"review-core/pkg/errno"
)

type stubSigner struct {
	err error
}

func (s *stubSigner) Sign(_ context.Context, _ manifest.Manifest, _ submit.Header) (*submit.SignedPayload, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &submit.SignedPayload{IntentID: "intent-1", Payload: []byte("signed")}, nil
}

type stubSubmitClient struct {
	mu    sync.Mutex
	polls int
}

func (c *stubSubmitClient) Submit(context.Context, *submit.SignedPayload) (*submit.SubmitResult, error) {
	return &submit.SubmitResult{}, nil
}

func (c *stubSubmitClient) PollStatus(_ context.Context, _ string) (*submit.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls++
	if c.polls < 2 {
		return &submit.Status{Pending: true}, nil
	}
	return &submit.Status{Committed: true, TxID: "txid_abc"}, nil
}

// swapScenario is the canonical review: account_a pays 100 XRD exactly,
// account_b receives an estimated 53.2 GUM produced by instruction 4.
func swapScenario(t *testing.T) (*Session, manifest.Manifest) {
	t.Helper()

	m := manifest.Manifest{Instructions: make([]manifest.Instruction, 6)}
	for i := range m.Instructions {
		m.Instructions[i] = manifest.Instruction{Kind: manifest.KindCallMethod, Raw: "CALL_METHOD;"}
	}
	withFee := m.WithLockFee("account_a", dec("1.2"))

	md := newFakeMetadata()
	md.resources["resource_xrd"] = fungible("Radix", 18)
	md.resources["resource_gum"] = fungible("Gumball", 6)
	md.entities["component_dex"] = EntityMetadata{Name: "Gumball Dex"}

	preview := &fakePreview{result: &PreviewResult{
		RawWithdrawals: []RawEffect{
			{AccountAddress: "account_a", Specifier: ResourceSpecifier{ResourceAddress: "resource_xrd", Kind: ResourceFungible, Amount: dec("100")}, Certainty: Exact()},
		},
		RawDeposits: []RawEffect{
			{AccountAddress: "account_b", Specifier: ResourceSpecifier{ResourceAddress: "resource_gum", Kind: ResourceFungible, Amount: dec("53.2")}, Certainty: Estimated(4)},
		},
		EncounteredAddresses: []string{"component_dex", "account_a"},
		FeeEstimate:          dec("1.2"),
		FeePayerAddress:      "account_a",
		ManifestWithLockFee:  withFee,
	}}

	s := NewSession(m, SessionDeps{
		Preview:  preview,
		Metadata: md,
		Accounts: &fakeStore{accounts: []OwnedAccount{
			{Address: "account_a", DisplayLabel: "Main"},
			{Address: "account_b", DisplayLabel: "Savings"},
		}},
		Signer:                  &stubSigner{},
		Submit:                  &stubSubmitClient{},
		Poll:                    submit.PollStrategy{Interval: 5 * time.Millisecond, MaxTries: 10},
		NetworkID:               1,
		DefaultGuaranteePercent: 100,
		MetadataWorkers:         2,
	})
	return s, m
}

func TestSession_OnAppearBuildsSnapshot(t *testing.T) {
	s, _ := swapScenario(t)
	require.Nil(t, s.Snapshot())

	require.NoError(t, s.OnAppear(context.Background()))

	snap := s.Snapshot()
	require.NotNil(t, snap)

	require.Len(t, snap.Withdrawals, 1)
	assert.Equal(t, "Main", snap.Withdrawals[0].Account.DisplayLabel)
	assert.Nil(t, snap.Withdrawals[0].Transfers[0].Guarantee)

	require.Len(t, snap.Deposits, 1)
	deposit := snap.Deposits[0].Transfers[0]
	require.NotNil(t, deposit.Guarantee)
	assert.True(t, deposit.Guarantee.Amount.Equal(dec("53.2")))
	assert.True(t, snap.RequiresGuarantees)

	require.Len(t, snap.DappsUsed, 1)
	assert.Equal(t, "Gumball Dex", snap.DappsUsed[0].Name)

	assert.True(t, snap.Fee.Equal(dec("1.2")))
}

func TestSession_StoreFailureFlagsDegradedSnapshot(t *testing.T) {
	s, _ := swapScenario(t)
	s.deps.Accounts = &fakeStore{err: errors.New("db down")}
	s.resolver = NewAccountResolver(s.deps.Accounts)

	require.NoError(t, s.OnAppear(context.Background()))

	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.True(t, snap.AccountsDegraded)
	assert.Empty(t, snap.Withdrawals)
	assert.Empty(t, snap.Deposits)
}

func TestSession_FinalManifestBuildsFeeLockFromFeePayer(t *testing.T) {
	s, m := swapScenario(t)
	// Gateway returned no fee-bearing variant, only the fee payer.
	s.deps.Preview.(*fakePreview).result.ManifestWithLockFee = manifest.Manifest{}

	require.NoError(t, s.OnAppear(context.Background()))

	snap := s.Snapshot()
	require.Len(t, snap.ManifestWithLockFee.Instructions, len(m.Instructions)+1)
	lock := snap.ManifestWithLockFee.Instructions[0]
	assert.Equal(t, manifest.KindLockFee, lock.Kind)
	assert.Equal(t, "account_a", lock.Address)
	assert.True(t, lock.Amount.Equal(dec("1.2")))

	final, err := s.FinalManifest()
	require.NoError(t, err)
	require.Len(t, final.Instructions, len(m.Instructions)+2)
	assertion := final.Instructions[6]
	assert.Equal(t, manifest.KindAssertWorktopContains, assertion.Kind)
	assert.Equal(t, "resource_gum", assertion.Address)
}

func TestSession_PreviewFailureIsTerminal(t *testing.T) {
	s, _ := swapScenario(t)
	s.deps.Preview = &fakePreview{err: errors.New("gateway 500")}

	err := s.OnAppear(context.Background())
	assert.ErrorIs(t, err, errno.ErrPreviewFailed)
	assert.Nil(t, s.Snapshot())
}

func TestSession_EditGuaranteeSupersedesSnapshot(t *testing.T) {
	s, _ := swapScenario(t)
	require.NoError(t, s.OnAppear(context.Background()))

	first := s.Snapshot()
	id := first.Deposits[0].Transfers[0].ID

	next, err := s.EditGuarantee(id, decimal.NewFromInt(90))
	require.NoError(t, err)
	assert.Same(t, next, s.Snapshot())

	tr, _ := next.FindDeposit(id)
	assert.True(t, tr.Guarantee.Amount.Equal(dec("47.88")), "got %s", tr.Guarantee.Amount)

	// A failed edit leaves the published snapshot alone.
	_, err = s.EditGuarantee(id, decimal.NewFromInt(0))
	assert.ErrorIs(t, err, errno.ErrGuaranteeOutOfBound)
	assert.Same(t, next, s.Snapshot())
}

func TestSession_EditGuaranteeBeforeAppear(t *testing.T) {
	s, _ := swapScenario(t)
	_, err := s.EditGuarantee(uuid.New(), decimal.NewFromInt(90))
	assert.ErrorIs(t, err, errno.ErrReviewNotReady)
}

func TestSession_FinalManifestInsertsGuaranteeAfterShiftedSource(t *testing.T) {
	s, m := swapScenario(t)
	require.NoError(t, s.OnAppear(context.Background()))

	id := s.Snapshot().Deposits[0].Transfers[0].ID
	_, err := s.EditGuarantee(id, decimal.NewFromInt(90))
	require.NoError(t, err)

	final, err := s.FinalManifest()
	require.NoError(t, err)

	// 6 user instructions + fee lock + 1 assertion.
	require.Len(t, final.Instructions, len(m.Instructions)+2)
	assert.Equal(t, manifest.KindLockFee, final.Instructions[0].Kind)

	// Instruction index 4 sits at position 5 behind the fee lock; the
	// assertion lands directly after it.
	assertion := final.Instructions[6]
	assert.Equal(t, manifest.KindAssertWorktopContains, assertion.Kind)
	assert.Equal(t, "resource_gum", assertion.Address)
	assert.True(t, assertion.Amount.Equal(dec("47.88")))

	raw, err := s.RawTransaction()
	require.NoError(t, err)
	assert.Contains(t, raw, "ASSERT_WORKTOP_CONTAINS resource_gum 47.88;")
}

func TestSession_ApproveRunsToCommitted(t *testing.T) {
	s, _ := swapScenario(t)
	require.NoError(t, s.OnAppear(context.Background()))

	done := make(chan submit.State, 8)
	s.OnSubmissionChange(func(st submit.State) {
		if st.Phase.Terminal() {
			done <- st
		}
	})

	require.NoError(t, s.Approve(context.Background()))

	// Double approval while in flight is rejected without state damage.
	err := s.Approve(context.Background())
	assert.ErrorIs(t, err, errno.ErrSubmissionInFlight)

	select {
	case st := <-done:
		assert.Equal(t, submit.PhaseCommitted, st.Phase)
		assert.Equal(t, "txid_abc", st.TxID)
		assert.True(t, st.OutcomeKnown)
	case <-time.After(2 * time.Second):
		t.Fatal("submission never reached a terminal phase")
	}
}

func TestSession_ApproveBeforeAppear(t *testing.T) {
	s, _ := swapScenario(t)
	err := s.Approve(context.Background())
	assert.ErrorIs(t, err, errno.ErrReviewNotReady)
}

package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-core/internal/manifest"
	"review-core/pkg/errno"
)

func guaranteedSnapshot(t *testing.T) (*Snapshot, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	tr := Transfer{
		ID:        id,
		Account:   ExternalAccount("account_b"),
		Specifier: ResourceSpecifier{ResourceAddress: "resource_gum", Kind: ResourceFungible, Amount: dec("53.2")},
		Metadata:  fungible("Gumball", 6),
		Certainty: Estimated(4),
		Guarantee: &manifest.Guarantee{Amount: dec("53.2"), InstructionIndex: 4, ResourceAddress: "resource_gum"},
	}
	exact := Transfer{
		ID:        uuid.New(),
		Account:   ExternalAccount("account_b"),
		Specifier: ResourceSpecifier{ResourceAddress: "resource_xrd", Kind: ResourceFungible, Amount: dec("7")},
		Metadata:  fungible("Radix", 18),
		Certainty: Exact(),
	}
	s := BuildSnapshot(nil, []AccountTransfers{{Account: tr.Account, Transfers: []Transfer{tr, exact}}}, nil, nil, dec("0"), manifest.Manifest{}, manifest.Manifest{}, false)
	return s, id
}

func TestApplyGuaranteePercentage_RecomputesFromEstimate(t *testing.T) {
	s, id := guaranteedSnapshot(t)

	next, err := ApplyGuaranteePercentage(s, id, decimal.NewFromInt(90))
	require.NoError(t, err)

	tr, ok := next.FindDeposit(id)
	require.True(t, ok)
	assert.True(t, tr.Guarantee.Amount.Equal(dec("47.88")), "got %s", tr.Guarantee.Amount)
	assert.EqualValues(t, 4, tr.Guarantee.InstructionIndex)

	// The previous snapshot stays authoritative for anyone still holding it.
	prev, _ := s.FindDeposit(id)
	assert.True(t, prev.Guarantee.Amount.Equal(dec("53.2")))
}

func TestApplyGuaranteePercentage_Idempotent(t *testing.T) {
	s, id := guaranteedSnapshot(t)

	once, err := ApplyGuaranteePercentage(s, id, decimal.NewFromInt(90))
	require.NoError(t, err)
	twice, err := ApplyGuaranteePercentage(once, id, decimal.NewFromInt(90))
	require.NoError(t, err)

	a, _ := once.FindDeposit(id)
	b, _ := twice.FindDeposit(id)
	assert.True(t, a.Guarantee.Amount.Equal(b.Guarantee.Amount))
}

func TestApplyGuaranteePercentage_Bounds(t *testing.T) {
	s, id := guaranteedSnapshot(t)

	for _, pct := range []string{"0", "-5", "100.5"} {
		_, err := ApplyGuaranteePercentage(s, id, dec(pct))
		assert.ErrorIs(t, err, errno.ErrGuaranteeOutOfBound, "percent %s", pct)
	}

	// 100 is inclusive.
	next, err := ApplyGuaranteePercentage(s, id, decimal.NewFromInt(100))
	require.NoError(t, err)
	tr, _ := next.FindDeposit(id)
	assert.True(t, tr.Guarantee.Amount.Equal(dec("53.2")))
}

func TestApplyGuaranteePercentage_UnknownTransfer(t *testing.T) {
	s, _ := guaranteedSnapshot(t)
	_, err := ApplyGuaranteePercentage(s, uuid.New(), decimal.NewFromInt(90))
	assert.ErrorIs(t, err, errno.ErrTransferNotFound)
}

func TestApplyGuaranteePercentage_ExactTransferRejected(t *testing.T) {
	s, _ := guaranteedSnapshot(t)
	exactID := s.Deposits[0].Transfers[1].ID

	_, err := ApplyGuaranteePercentage(s, exactID, decimal.NewFromInt(90))
	assert.ErrorIs(t, err, errno.ErrNotGuaranteed)
}

func TestApplyGuaranteePercentage_UntouchedGroupsShared(t *testing.T) {
	s, id := guaranteedSnapshot(t)
	other := AccountTransfers{Account: ExternalAccount("account_c"), Transfers: []Transfer{{ID: uuid.New()}}}
	s.Deposits = append(s.Deposits, other)

	next, err := ApplyGuaranteePercentage(s, id, decimal.NewFromInt(50))
	require.NoError(t, err)

	// Copy-on-write: the untouched group's transfer slice is shared, not copied.
	assert.Same(t, &s.Deposits[1].Transfers[0], &next.Deposits[1].Transfers[0])
}

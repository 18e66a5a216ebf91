package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-core/internal/manifest"
)

func TestBuildSnapshot_RequiresGuarantees(t *testing.T) {
	guaranteed := Transfer{ID: uuid.New(), Guarantee: &manifest.Guarantee{Amount: dec("1"), InstructionIndex: 2}}
	plain := Transfer{ID: uuid.New()}

	with := BuildSnapshot(nil, []AccountTransfers{{Transfers: []Transfer{plain, guaranteed}}}, nil, nil, dec("0"), manifest.Manifest{}, manifest.Manifest{}, false)
	assert.True(t, with.RequiresGuarantees)

	without := BuildSnapshot(nil, []AccountTransfers{{Transfers: []Transfer{plain}}}, nil, nil, dec("0"), manifest.Manifest{}, manifest.Manifest{}, false)
	assert.False(t, without.RequiresGuarantees)
}

func TestBuildSnapshot_DedupesDappsKeepingFirst(t *testing.T) {
	dapps := []DappEntry{
		{Address: "component_dex", Name: "Dex"},
		{Address: "component_pool", Name: "Pool"},
		{Address: "component_dex", Name: "Dex again"},
	}

	s := BuildSnapshot(nil, nil, dapps, nil, dec("0"), manifest.Manifest{}, manifest.Manifest{}, false)

	require.Len(t, s.DappsUsed, 2)
	assert.Equal(t, "Dex", s.DappsUsed[0].Name)
	assert.Equal(t, "component_pool", s.DappsUsed[1].Address)
}

func TestBuildSnapshot_CarriesDegradedResolution(t *testing.T) {
	s := BuildSnapshot(nil, nil, nil, nil, dec("0"), manifest.Manifest{}, manifest.Manifest{}, true)
	assert.True(t, s.AccountsDegraded)
}

func TestSnapshot_AllGuarantees(t *testing.T) {
	g1 := &manifest.Guarantee{Amount: dec("1"), InstructionIndex: 1}
	g2 := &manifest.Guarantee{Amount: dec("2"), InstructionIndex: 5}

	s := BuildSnapshot(
		[]AccountTransfers{{Transfers: []Transfer{{ID: uuid.New(), Guarantee: &manifest.Guarantee{Amount: dec("9")}}}}},
		[]AccountTransfers{
			{Transfers: []Transfer{{ID: uuid.New(), Guarantee: g1}}},
			{Transfers: []Transfer{{ID: uuid.New()}, {ID: uuid.New(), Guarantee: g2}}},
		},
		nil, nil, dec("0"), manifest.Manifest{}, manifest.Manifest{}, false,
	)

	// Only deposit guarantees are collected; withdrawals never carry them
	// into the rewrite.
	got := s.AllGuarantees()
	require.Len(t, got, 2)
	assert.Equal(t, *g1, got[0])
	assert.Equal(t, *g2, got[1])
}

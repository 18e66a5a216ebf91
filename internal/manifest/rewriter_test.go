package manifest

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callMethod(n int) Instruction {
	return Instruction{Kind: KindCallMethod, Raw: string(rune('a' + n))}
}

func testManifest(n int) Manifest {
	ins := make([]Instruction, n)
	for i := range ins {
		ins[i] = callMethod(i)
	}
	return Manifest{Instructions: ins}
}

func TestWithGuarantees_EmptyIsIdentity(t *testing.T) {
	m := testManifest(5)
	out := m.WithGuarantees(nil, 0)

	require.Len(t, out.Instructions, 5)
	assert.Equal(t, m, out)
	// Identity, not a rewrite: the instruction slice is the same backing array.
	assert.Same(t, &m.Instructions[0], &out.Instructions[0])
}

func TestWithGuarantees_InsertsAfterSourceInstruction(t *testing.T) {
	m := testManifest(6)
	g := Guarantee{
		Amount:           decimal.RequireFromString("47.88"),
		InstructionIndex: 4,
		ResourceAddress:  "resource_t0k3n",
	}

	out := m.WithGuarantees([]Guarantee{g}, 0)

	require.Len(t, out.Instructions, 7)
	assert.Equal(t, KindAssertWorktopContains, out.Instructions[5].Kind)
	assert.Equal(t, "resource_t0k3n", out.Instructions[5].Address)
	assert.True(t, out.Instructions[5].Amount.Equal(g.Amount))
	// Instruction at index 4 still precedes the assertion, index 5 follows it.
	assert.Equal(t, m.Instructions[4], out.Instructions[4])
	assert.Equal(t, m.Instructions[5], out.Instructions[6])
	// The input manifest is untouched.
	assert.Len(t, m.Instructions, 6)
}

func TestWithGuarantees_PrefixShiftsInsertionNotIndex(t *testing.T) {
	base := testManifest(6)
	withFee := base.WithLockFee("account_feepayer", decimal.NewFromInt(10))
	g := Guarantee{Amount: decimal.NewFromInt(1), InstructionIndex: 2, ResourceAddress: "resource_x"}

	out := withFee.WithGuarantees([]Guarantee{g}, 1)

	require.Len(t, out.Instructions, 8)
	assert.Equal(t, KindLockFee, out.Instructions[0].Kind)
	// Index 2 of the analyzed manifest lives at position 3 once the fee
	// lock is prepended; the assertion lands right behind it.
	assert.Equal(t, base.Instructions[2], out.Instructions[3])
	assert.Equal(t, KindAssertWorktopContains, out.Instructions[4].Kind)
}

func TestWithGuarantees_InputOrderIrrelevant(t *testing.T) {
	m := testManifest(10)
	guarantees := []Guarantee{
		{Amount: decimal.NewFromInt(1), InstructionIndex: 1, ResourceAddress: "resource_a"},
		{Amount: decimal.NewFromInt(2), InstructionIndex: 4, ResourceAddress: "resource_b"},
		{Amount: decimal.NewFromInt(3), InstructionIndex: 8, ResourceAddress: "resource_c"},
	}

	ascending := make([]Guarantee, len(guarantees))
	copy(ascending, guarantees)
	sort.Slice(ascending, func(i, j int) bool { return ascending[i].InstructionIndex < ascending[j].InstructionIndex })

	shuffled := make([]Guarantee, len(guarantees))
	copy(shuffled, guarantees)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	fromAscending := m.WithGuarantees(ascending, 0)
	fromShuffled := m.WithGuarantees(shuffled, 0)

	assert.Equal(t, fromAscending, fromShuffled)
}

func TestWithGuarantees_EveryAssertionFollowsItsSource(t *testing.T) {
	const size = 20
	m := testManifest(size)

	var guarantees []Guarantee
	for _, idx := range []InstructionIndex{0, 3, 7, 12, 19} {
		guarantees = append(guarantees, Guarantee{
			Amount:           decimal.NewFromInt(int64(idx) + 1),
			InstructionIndex: idx,
			ResourceAddress:  "resource_x",
		})
	}

	out := m.WithGuarantees(guarantees, 0)
	require.Len(t, out.Instructions, size+len(guarantees))

	// Walk the result: each assertion must directly follow the original
	// instruction its guarantee pointed at, regardless of how many
	// insertions happened elsewhere.
	for _, g := range guarantees {
		source := m.Instructions[g.InstructionIndex]
		pos := -1
		for i, ins := range out.Instructions {
			if ins == source {
				pos = i
				break
			}
		}
		require.GreaterOrEqual(t, pos, 0)
		assertion := out.Instructions[pos+1]
		assert.Equal(t, KindAssertWorktopContains, assertion.Kind)
		assert.True(t, assertion.Amount.Equal(g.Amount), "assertion after instruction %d carries the wrong amount", g.InstructionIndex)
	}
}

func TestWithLockFee_Prepends(t *testing.T) {
	m := testManifest(3)
	out := m.WithLockFee("account_payer", decimal.NewFromInt(25))

	require.Len(t, out.Instructions, 4)
	assert.Equal(t, KindLockFee, out.Instructions[0].Kind)
	assert.Equal(t, "account_payer", out.Instructions[0].Address)
	assert.Equal(t, m.Instructions[0], out.Instructions[1])
	assert.Len(t, m.Instructions, 3)
}

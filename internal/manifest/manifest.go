package manifest

import (
	"strings"

	"github.com/shopspring/decimal"
)

// InstructionIndex locates an instruction inside the manifest it was
// analyzed from. It is deliberately a distinct type: indices from the
// analyzer are threaded through classification and guarantee editing all
// the way back into the rewriter, and mixing them up with plain ints or
// slice offsets corrupts the guarantee they anchor.
type InstructionIndex uint64

// InstructionKind discriminates the instruction variants the engine cares
// about. Anything else round-trips through KindOther untouched.
type InstructionKind string

const (
	KindCallMethod            InstructionKind = "CALL_METHOD"
	KindTakeFromWorktop       InstructionKind = "TAKE_FROM_WORKTOP"
	KindAssertWorktopContains InstructionKind = "ASSERT_WORKTOP_CONTAINS"
	KindLockFee               InstructionKind = "LOCK_FEE"
	KindOther                 InstructionKind = "OTHER"
)

// Instruction is one decoded ledger instruction. Only the fields relevant
// to its kind are set; Raw preserves the toolkit's textual form for
// display and re-encoding.
type Instruction struct {
	Kind    InstructionKind  `json:"kind"`
	Address string           `json:"address,omitempty"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Raw     string           `json:"raw,omitempty"`
}

// Manifest is an ordered list of instructions. Treat values as immutable:
// every rewrite returns a fresh manifest and leaves the receiver alone,
// which is what keeps analyzer-issued instruction indices valid for the
// whole lifetime of a review.
type Manifest struct {
	Instructions []Instruction `json:"instructions"`
}

// Guarantee is a user-authorized minimum for an estimated deposit. It is
// enforced by an assertion instruction inserted right after the
// instruction that produced the estimate.
type Guarantee struct {
	Amount           decimal.Decimal  `json:"amount"`
	InstructionIndex InstructionIndex `json:"instruction_index"`
	ResourceAddress  string           `json:"resource_address"`
}

// AssertWorktopContains builds the assertion instruction for a guarantee.
func AssertWorktopContains(resourceAddress string, amount decimal.Decimal) Instruction {
	return Instruction{
		Kind:    KindAssertWorktopContains,
		Address: resourceAddress,
		Amount:  &amount,
	}
}

// LockFee builds the fee-lock call against the fee payer account.
func LockFee(accountAddress string, fee decimal.Decimal) Instruction {
	return Instruction{
		Kind:    KindLockFee,
		Address: accountAddress,
		Amount:  &fee,
	}
}

// Clone returns a manifest whose instruction slice is independent of the
// receiver's.
func (m Manifest) Clone() Manifest {
	out := make([]Instruction, len(m.Instructions))
	copy(out, m.Instructions)
	return Manifest{Instructions: out}
}

// WithLockFee returns a copy with a fee lock prepended. Callers that later
// inject guarantees must account for the shifted user instructions via the
// prefix argument of WithGuarantees.
func (m Manifest) WithLockFee(accountAddress string, fee decimal.Decimal) Manifest {
	out := make([]Instruction, 0, len(m.Instructions)+1)
	out = append(out, LockFee(accountAddress, fee))
	out = append(out, m.Instructions...)
	return Manifest{Instructions: out}
}

// String renders the manifest in the toolkit's textual form, one
// instruction per line.
func (m Manifest) String() string {
	var b strings.Builder
	for i, ins := range m.Instructions {
		if i > 0 {
			b.WriteByte('\n')
		}
		if ins.Raw != "" {
			b.WriteString(ins.Raw)
			continue
		}
		b.WriteString(string(ins.Kind))
		if ins.Address != "" {
			b.WriteByte(' ')
			b.WriteString(ins.Address)
		}
		if ins.Amount != nil {
			b.WriteByte(' ')
			b.WriteString(ins.Amount.String())
		}
		b.WriteByte(';')
	}
	return b.String()
}

package manifest

import (
	"sort"
)

// WithGuarantees returns a manifest with one assertion instruction per
// guarantee, each inserted immediately after the instruction the
// guarantee's index points at.
//
// prefix is the number of wallet-added instructions sitting in front of
// the user's instructions (1 when a fee lock was prepended, 0 otherwise);
// guarantee indices always refer to the manifest the analyzer saw.
//
// Insertion runs in strictly descending index order. Inserting at a lower
// index never shifts the positions still to be visited at higher indices,
// so every index stays valid against the original numbering without any
// re-derivation. The order of the input slice is irrelevant.
//
// An empty guarantee list returns the receiver untouched. That identity
// short-circuit matters: a deterministic manifest must not be re-encoded
// for nothing, or its hash could drift downstream.
func (m Manifest) WithGuarantees(guarantees []Guarantee, prefix int) Manifest {
	if len(guarantees) == 0 {
		return m
	}

	sorted := make([]Guarantee, len(guarantees))
	copy(sorted, guarantees)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InstructionIndex > sorted[j].InstructionIndex
	})

	out := make([]Instruction, len(m.Instructions), len(m.Instructions)+len(sorted))
	copy(out, m.Instructions)

	for _, g := range sorted {
		pos := int(g.InstructionIndex) + prefix + 1
		if pos > len(out) {
			pos = len(out)
		}
		ins := AssertWorktopContains(g.ResourceAddress, g.Amount)

		out = append(out, Instruction{})
		copy(out[pos+1:], out[pos:])
		out[pos] = ins
	}

	return Manifest{Instructions: out}
}

package manifest

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse decodes the textual manifest form produced by String: one
// instruction per line, terminated by a semicolon. Unrecognized
// instructions are preserved verbatim as KindOther so a round trip
// never loses them.
func Parse(text string) Manifest {
	var instructions []Instruction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		instructions = append(instructions, parseLine(line))
	}
	return Manifest{Instructions: instructions}
}

func parseLine(line string) Instruction {
	body := strings.TrimSuffix(line, ";")
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return Instruction{Kind: KindOther, Raw: line}
	}

	kind := InstructionKind(fields[0])
	switch kind {
	case KindCallMethod, KindTakeFromWorktop, KindAssertWorktopContains, KindLockFee:
	default:
		return Instruction{Kind: KindOther, Raw: line}
	}

	ins := Instruction{Kind: kind, Raw: line}
	if len(fields) > 1 {
		ins.Address = fields[1]
	}
	if len(fields) > 2 {
		if amount, err := decimal.NewFromString(fields[2]); err == nil {
			ins.Amount = &amount
		}
	}
	return ins
}

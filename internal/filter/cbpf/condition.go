package cbpf

// Comparison is a cBPF jump test code (the JMP subcode, without class/src bits).
type Comparison uint16

const (
	Equal        Comparison = Comparison(JEQ)
	GreaterThan  Comparison = Comparison(JGT)
	GreaterEqual Comparison = Comparison(JGE)
	AndMask      Comparison = Comparison(JSET)
)

// Condition is the atom of a predicate: a computation prelude that loads a
// packet field, compared against an immediate operand.
type Condition struct {
	Computation []Instruction
	Comparison  Comparison
	Operand     uint32
}

// Build lowers the condition to a sequence ending in a conditional jump to
// jt (true) or jf (false), inserting trampolines when either distance
// exceeds the 8-bit jt/jf field.
//
// The returned slice is in pre-reversal emission order: jump instruction(s)
// first, computation prelude last. The compiler's final whole-program
// reverse restores the natural computation-then-jump order.
func (c Condition) Build(jt, jf int) []Instruction {
	code := ClassJMP | uint16(c.Comparison) | SrcK

	var res []Instruction
	switch {
	case jt <= maxJump && jf <= maxJump:
		res = []Instruction{New(code, uint8(jt), uint8(jf), c.Operand)}

	case jt <= maxJump && jf > maxJump:
		res = []Instruction{
			Jump(uint32(jf)),
			New(code, uint8(jt+1), 0, c.Operand),
		}

	case jt > maxJump && jf <= maxJump:
		res = []Instruction{
			Jump(uint32(jt)),
			New(code, 0, uint8(jf+1), c.Operand),
		}

	default:
		res = []Instruction{
			Jump(uint32(jf)),
			Jump(uint32(jt+1)),
			New(code, 0, 1, c.Operand),
		}
	}

	res = append(res, c.Computation...)
	return res
}

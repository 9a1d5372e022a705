package ebpf

// Comparison is an eBPF conditional jump opcode (the JMP subcode, without
// class/src bits).
type Comparison uint8

const (
	Equal          Comparison = 0x10
	NotEqual       Comparison = 0x50
	GreaterThan    Comparison = 0x20
	GreaterEqual   Comparison = 0x30
	LesserThan     Comparison = 0xa0
	LesserEqual    Comparison = 0xb0
	AndMask        Comparison = 0x40
	SGreaterThan   Comparison = 0x60
	SGreaterEqual  Comparison = 0x70
	SLesserThan    Comparison = 0xc0
	SLesserEqual   Comparison = 0xd0
)

// Condition is the atom of a predicate: a computation prelude that loads a
// packet field into R0, compared against an immediate operand.
type Condition struct {
	Computation []Instruction
	Comparison  Comparison
	Operand     int32
}

// Build lowers the condition to a sequence ending in a conditional jump to
// jt (true) or jf (false). eBPF has no 8-bit jt/jf field: instead every
// condition emits an unconditional jump by jf followed by a conditional
// jump with true-distance jt+1, so falling through the conditional lands on
// the unconditional jump.
//
// The returned slice is in pre-reversal emission order: jump instructions
// first, computation prelude last. The compiler's final whole-program
// reverse restores the natural computation-then-jump order.
func (c Condition) Build(jt, jf int) []Instruction {
	code := ClassJMP | uint8(c.Comparison) | SrcK

	res := []Instruction{
		JumpAlways(int16(jf)),
		New(code, Return, Return, int16(jt+1), c.Operand),
	}
	res = append(res, c.Computation...)
	return res
}

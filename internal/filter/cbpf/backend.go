package cbpf

// InitializationSequence is empty for cBPF: there is no register setup
// before the walk-generated body runs.
func InitializationSequence() []Instruction {
	return nil
}

// ReturnSequence yields the three fixed exit instructions, written here in
// the pre-reversal order the compiler prepends them in:
// [DROP, RETURN_A, LOAD_LENGTH]. After the whole-program reverse this block
// becomes the final program's tail, in the order [LOAD_LENGTH, RETURN_A, DROP].
//
// passEntry and dropEntry are the jt/jf jump-distance values a terminal
// condition placed immediately before this tail must use to reach the PASS
// and DROP instructions respectively (distance 0 = the instruction right
// after the jump). Given the tail above, PASS (LOAD_LENGTH) sits at
// distance 0 and DROP sits at distance 2; RETURN_A is never a jump target,
// only a fallthrough from LOAD_LENGTH.
func ReturnSequence() (seq []Instruction, passEntry, dropEntry int) {
	seq = []Instruction{
		New(ClassRET|RetK, 0, 0, 0), // DROP: return 0
		New(ClassRET|RetA, 0, 0, 0), // RETURN_A: return accumulator
		LoadPacketLength(),          // LOAD_LENGTH: A = packet length
	}
	return seq, 0, 2
}

// Tautology is the minimal sequence that unconditionally accepts: load the
// packet length and return it.
func Tautology() []Instruction {
	seq, _, _ := ReturnSequence()
	return []Instruction{seq[2], seq[1]}
}

// Contradiction is the minimal sequence that unconditionally drops.
func Contradiction() []Instruction {
	seq, _, _ := ReturnSequence()
	return []Instruction{seq[0]}
}

// Backend adapts the package-level functions above to compiler.Backend[Instruction].
type Backend struct{}

func (Backend) InitializationSequence() []Instruction               { return InitializationSequence() }
func (Backend) ReturnSequence() ([]Instruction, int, int)           { return ReturnSequence() }
func (Backend) Tautology() []Instruction                            { return Tautology() }
func (Backend) Contradiction() []Instruction                        { return Contradiction() }

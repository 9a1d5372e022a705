package ebpf

// contextLengthOffset is the byte offset of the length field at the head of
// the packet context struct (mirrors __sk_buff/xdp_md, where len is the
// first word), read directly off the packet register once it is set up.
const contextLengthOffset int16 = 0

// LoadPacketLength emits the computation prelude that reads the packet
// length off the direct-access register into R0.
func LoadPacketLength() []Instruction {
	return []Instruction{New(ClassLDX|ModeMEM|SizeW, Return, Packet, contextLengthOffset, 0)}
}

// InitializationSequence copies the context pointer handed to the program
// in R1 into R6, the register this backend designates for direct packet
// access throughout the rest of the program.
func InitializationSequence() []Instruction {
	return []Instruction{Copy(Packet, Context)}
}

// ReturnSequence yields the fixed exit instructions, written here in the
// pre-reversal order the compiler prepends them in. Each multi-instruction
// block is itself written back to front so that the compiler's single
// whole-program reverse restores correct internal order as well as overall
// tail order; the final tail reads, forward: load length, exit (pass),
// then a separate drop branch of movimm zero, exit.
//
// passEntry and dropEntry are the jt/jf jump-distance values a terminal
// condition placed immediately before this tail must use to reach the pass
// and drop blocks respectively (distance 0 = the instruction right after
// the jump). PASS sits at distance 0, DROP at distance 2.
func ReturnSequence() (seq []Instruction, passEntry, dropEntry int) {
	seq = []Instruction{
		Exit(),
		MovImm(Return, 0),
		Exit(),
	}
	seq = append(seq, LoadPacketLength()...)
	return seq, 0, 2
}

// Tautology is the minimal sequence that unconditionally accepts: load the
// packet length into R0 and exit with it as the verdict. It is emitted as a
// complete program without InitializationSequence, so it reads the length
// through the context pointer in R1 rather than through R6.
func Tautology() []Instruction {
	return []Instruction{New(ClassLDX|ModeMEM|SizeW, Return, Context, contextLengthOffset, 0), Exit()}
}

// Contradiction is the minimal sequence that unconditionally drops.
func Contradiction() []Instruction {
	return []Instruction{MovImm(Return, 0), Exit()}
}

// Backend adapts the package-level functions above to compiler.Backend[Instruction].
type Backend struct{}

func (Backend) InitializationSequence() []Instruction     { return InitializationSequence() }
func (Backend) ReturnSequence() ([]Instruction, int, int) { return ReturnSequence() }
func (Backend) Tautology() []Instruction                  { return Tautology() }
func (Backend) Contradiction() []Instruction              { return Contradiction() }

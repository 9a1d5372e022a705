// Package cbpf implements the Classic BPF backend: instruction encoding,
// conditions, code generation, and the sock_fprog attachable.
package cbpf

// Instruction is the classic BPF instruction: a fixed 8-byte record consumed
// directly by the kernel filter VM and by SO_ATTACH_FILTER.
type Instruction struct {
	Code uint16
	Jt   uint8
	Jf   uint8
	K    uint32
}

// New builds an Instruction from its four fields.
func New(code uint16, jt, jf uint8, k uint32) Instruction {
	return Instruction{Code: code, Jt: jt, Jf: jf, K: k}
}

// Jump builds an unconditional BPF_JMP|BPF_JA instruction with distance k.
func Jump(k uint32) Instruction {
	return New(ClassJMP|JA|SrcK, 0, 0, k)
}

// Instruction classes (low 3 bits of Code).
const (
	ClassLD   uint16 = 0x00
	ClassLDX  uint16 = 0x01
	ClassST   uint16 = 0x02
	ClassSTX  uint16 = 0x03
	ClassALU  uint16 = 0x04
	ClassJMP  uint16 = 0x05
	ClassRET  uint16 = 0x06
	ClassMISC uint16 = 0x07
)

// Load/store size modifiers.
const (
	SizeW uint16 = 0x00 // word (4 bytes)
	SizeH uint16 = 0x08 // halfword (2 bytes)
	SizeB uint16 = 0x10 // byte (1 byte)
)

// Load/store addressing modes.
const (
	ModeIMM uint16 = 0x00
	ModeABS uint16 = 0x20
	ModeIND uint16 = 0x40
	ModeMEM uint16 = 0x60
	ModeLEN uint16 = 0x80
	ModeMSH uint16 = 0xa0
)

// JMP/ALU operand source and jump-test subcodes.
const (
	JA uint16 = 0x00 // unconditional jump

	JEQ uint16 = 0x10 // jump if equal
	JGT uint16 = 0x20 // jump if greater than
	JGE uint16 = 0x30 // jump if greater or equal
	JSET uint16 = 0x40 // jump if AND-mask nonzero

	SrcK uint16 = 0x00 // operand is the immediate k
	SrcX uint16 = 0x08 // operand is register X
)

// RET instruction operand source.
const (
	RetK uint16 = 0x00 // return the immediate k
	RetA uint16 = 0x10 // return the accumulator
)

// maxJump is the largest jt/jf distance that fits without a trampoline.
const maxJump = 254

// LoadU8At emits the computation prelude for an absolute byte load.
func LoadU8At(offset uint32) []Instruction {
	return []Instruction{New(ClassLD|ModeABS|SizeB, 0, 0, offset)}
}

// LoadU16At emits the computation prelude for an absolute halfword load.
func LoadU16At(offset uint32) []Instruction {
	return []Instruction{New(ClassLD|ModeABS|SizeH, 0, 0, offset)}
}

// LoadU32At emits the computation prelude for an absolute word load.
func LoadU32At(offset uint32) []Instruction {
	return []Instruction{New(ClassLD|ModeABS|SizeW, 0, 0, offset)}
}

// LoadPacketLength emits BPF_LD|BPF_LEN|BPF_W, loading the packet's own
// length into the accumulator.
func LoadPacketLength() Instruction {
	return New(ClassLD|ModeLEN|SizeW, 0, 0, 0)
}

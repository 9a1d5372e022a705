// Package ebpf implements the Extended BPF backend: instruction encoding,
// registers, conditions, code generation, and the BPF_PROG_LOAD attachable.
package ebpf

// Instruction is the extended BPF instruction: a fixed 8-byte record.
// Regs packs the destination register in the high nibble and the source
// register in the low nibble.
type Instruction struct {
	Code uint8
	Regs uint8
	Off  int16
	Imm  int32
}

// Register names the ten general eBPF registers plus the read-only frame
// pointer. R1 carries the context pointer on entry; R6 is this module's
// chosen direct-packet-access register once the initialization sequence
// has copied it there; R10 is the read-only frame pointer.
type Register uint8

const (
	Return  Register = 0
	Context Register = 1
	Arg2    Register = 2
	Arg3    Register = 3
	Arg4    Register = 4
	Arg5    Register = 5
	Packet  Register = 6
	Reg7    Register = 7
	Reg8    Register = 8
	Reg9    Register = 9
	Frame   Register = 10
)

func regs(dst, src Register) uint8 {
	return uint8(dst)<<4 | uint8(src)&0x0f
}

// New builds an Instruction from its four fields.
func New(code uint8, dst, src Register, off int16, imm int32) Instruction {
	return Instruction{Code: code, Regs: regs(dst, src), Off: off, Imm: imm}
}

// Instruction classes (low 3 bits of Code).
const (
	ClassLD    uint8 = 0x00
	ClassLDX   uint8 = 0x01
	ClassST    uint8 = 0x02
	ClassSTX   uint8 = 0x03
	ClassALU   uint8 = 0x04
	ClassJMP   uint8 = 0x05
	ClassALU64 uint8 = 0x07
)

// Load/store size modifiers.
const (
	SizeW  uint8 = 0x00
	SizeH  uint8 = 0x08
	SizeB  uint8 = 0x10
	SizeDW uint8 = 0x18
)

// Load addressing modes.
const (
	ModeIMM uint8 = 0x00
	ModeABS uint8 = 0x20
	ModeIND uint8 = 0x40
	ModeMEM uint8 = 0x60
)

// ALU/JMP operation codes (high nibble).
const (
	opMov  uint8 = 0xb0
	opJA   uint8 = 0x00
	opExit uint8 = 0x90
)

// Operand source flag.
const (
	SrcK uint8 = 0x00
	SrcX uint8 = 0x08
)

// JumpAlways builds BPF_JMP|BPF_JA|BPF_K, an unconditional jump by off
// instructions (distance measured from the instruction after the jump).
func JumpAlways(off int16) Instruction {
	return New(ClassJMP|opJA|SrcK, Return, Return, off, 0)
}

// Copy builds BPF_ALU64|BPF_MOV|BPF_X, copying src into dst.
func Copy(dst, src Register) Instruction {
	return New(ClassALU64|opMov|SrcX, dst, src, 0, 0)
}

// MovImm builds BPF_ALU64|BPF_MOV|BPF_K, loading an immediate into dst.
func MovImm(dst Register, imm int32) Instruction {
	return New(ClassALU64|opMov|SrcK, dst, Return, 0, imm)
}

// Exit builds BPF_JMP|BPF_EXIT, returning the value currently in R0.
func Exit() Instruction {
	return New(ClassJMP|opExit, Return, Return, 0, 0)
}

// LoadU8At emits the computation prelude for an absolute byte load into R0.
func LoadU8At(offset int32) []Instruction {
	return []Instruction{New(ClassLD|ModeABS|SizeB, Return, Return, 0, offset)}
}

// LoadU16At emits the computation prelude for an absolute halfword load into R0.
func LoadU16At(offset int32) []Instruction {
	return []Instruction{New(ClassLD|ModeABS|SizeH, Return, Return, 0, offset)}
}

// LoadU32At emits the computation prelude for an absolute word load into R0.
func LoadU32At(offset int32) []Instruction {
	return []Instruction{New(ClassLD|ModeABS|SizeW, Return, Return, 0, offset)}
}

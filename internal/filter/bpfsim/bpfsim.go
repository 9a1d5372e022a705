// Package bpfsim is a pure-Go reference interpreter for the classic and
// extended BPF subsets this module emits. It exists for tests: it lets a
// compiled program be run against a packet without a kernel, to check that
// the lowering a predicate went through actually enforces the predicate.
package bpfsim

import (
	"encoding/binary"
	"fmt"

	"github.com/SkynetNext/bpf-filter/internal/filter/cbpf"
	"github.com/SkynetNext/bpf-filter/internal/filter/ebpf"
)

// RunClassic executes a classic BPF program against packet and returns the
// verdict: the packet is accepted (truncated to the returned length,
// possibly the whole packet) when the program returns nonzero, dropped when
// it returns zero.
func RunClassic(prog []cbpf.Instruction, packet []byte) (accept bool, snaplen uint32, err error) {
	var a, x uint32
	pc := 0
	steps := 0
	for {
		steps++
		if steps > 1_000_000 {
			return false, 0, fmt.Errorf("bpfsim: classic program did not terminate")
		}
		if pc < 0 || pc >= len(prog) {
			return false, 0, fmt.Errorf("bpfsim: classic program counter %d out of range", pc)
		}
		insn := prog[pc]
		class := insn.Code & 0x07

		switch class {
		case cbpf.ClassLD:
			mode := insn.Code &^ 0x07 &^ 0x18
			size := insn.Code & 0x18
			switch mode {
			case cbpf.ModeABS:
				v, ok := loadAbs(packet, insn.K, size)
				if !ok {
					return false, 0, nil
				}
				a = v
			case cbpf.ModeLEN:
				a = uint32(len(packet))
			case cbpf.ModeIMM:
				a = insn.K
			default:
				return false, 0, fmt.Errorf("bpfsim: unsupported LD mode 0x%x", mode)
			}
			pc++

		case cbpf.ClassJMP:
			op := insn.Code &^ 0x07 &^ 0x08
			if op == cbpf.JA {
				pc += int(insn.K) + 1
				continue
			}
			var cmp bool
			switch op {
			case cbpf.JEQ:
				cmp = a == insn.K
			case cbpf.JGT:
				cmp = a > insn.K
			case cbpf.JGE:
				cmp = a >= insn.K
			case cbpf.JSET:
				cmp = a&insn.K != 0
			default:
				return false, 0, fmt.Errorf("bpfsim: unsupported JMP op 0x%x", op)
			}
			if cmp {
				pc += int(insn.Jt) + 1
			} else {
				pc += int(insn.Jf) + 1
			}

		case cbpf.ClassRET:
			src := insn.Code &^ 0x07
			switch src {
			case cbpf.RetK:
				return insn.K != 0, insn.K, nil
			case cbpf.RetA:
				return a != 0, a, nil
			default:
				return false, 0, fmt.Errorf("bpfsim: unsupported RET source 0x%x", src)
			}

		default:
			return false, 0, fmt.Errorf("bpfsim: unsupported instruction class 0x%x", class)
		}
		_ = x
	}
}

func loadAbs(packet []byte, offset uint32, size uint16) (uint32, bool) {
	switch size {
	case cbpf.SizeB:
		if int(offset)+1 > len(packet) {
			return 0, false
		}
		return uint32(packet[offset]), true
	case cbpf.SizeH:
		if int(offset)+2 > len(packet) {
			return 0, false
		}
		return uint32(binary.BigEndian.Uint16(packet[offset:])), true
	case cbpf.SizeW:
		if int(offset)+4 > len(packet) {
			return 0, false
		}
		return binary.BigEndian.Uint32(packet[offset:]), true
	}
	return 0, false
}

// RunExtended executes the direct-packet-access extended BPF subset this
// module emits: R1 holds a pointer to packet on entry, R6 becomes the
// packet-access register after the initialization sequence runs, and
// BPF_LD|BPF_ABS instructions read from whatever packet R6 points at.
func RunExtended(prog []ebpf.Instruction, packet []byte) (accept bool, retval uint32, err error) {
	var regs [11]uint64
	regs[1] = 1 // sentinel nonzero packet pointer; only its identity with R6 matters here
	pc := 0
	steps := 0
	for {
		steps++
		if steps > 1_000_000 {
			return false, 0, fmt.Errorf("bpfsim: extended program did not terminate")
		}
		if pc < 0 || pc >= len(prog) {
			return false, 0, fmt.Errorf("bpfsim: extended program counter %d out of range", pc)
		}
		insn := prog[pc]
		class := insn.Code & 0x07
		dst := insn.Regs >> 4
		src := insn.Regs & 0x0f

		switch class {
		case ebpf.ClassLD:
			mode := insn.Code &^ 0x07 &^ 0x18
			size := insn.Code & 0x18
			if mode != ebpf.ModeABS {
				return false, 0, fmt.Errorf("bpfsim: unsupported LD mode 0x%x", mode)
			}
			v, ok := loadAbsExt(packet, insn.Imm, size)
			if !ok {
				return false, 0, nil
			}
			regs[0] = uint64(v)
			pc++

		case ebpf.ClassLDX:
			mode := insn.Code &^ 0x07 &^ 0x18
			size := insn.Code & 0x18
			if mode != ebpf.ModeMEM {
				return false, 0, fmt.Errorf("bpfsim: unsupported LDX mode 0x%x", mode)
			}
			if size == ebpf.SizeW && insn.Off == 0 {
				regs[dst] = uint64(len(packet))
			} else {
				return false, 0, fmt.Errorf("bpfsim: unsupported LDX field at offset %d", insn.Off)
			}
			pc++

		case ebpf.ClassALU64:
			op := insn.Code &^ 0x07 &^ 0x08
			switch op {
			case 0xb0: // MOV
				if insn.Code&0x08 != 0 {
					regs[dst] = regs[src]
				} else {
					regs[dst] = uint64(uint32(insn.Imm))
				}
			default:
				return false, 0, fmt.Errorf("bpfsim: unsupported ALU64 op 0x%x", op)
			}
			pc++

		case ebpf.ClassJMP:
			op := insn.Code &^ 0x07 &^ 0x08
			switch op {
			case 0x00: // JA
				pc += int(insn.Off) + 1
				continue
			case 0x90: // EXIT
				v := uint32(regs[0])
				return v != 0, v, nil
			}
			var cmp bool
			k := uint32(insn.Imm)
			switch op {
			case uint8(ebpf.Equal):
				cmp = uint32(regs[dst]) == k
			case uint8(ebpf.NotEqual):
				cmp = uint32(regs[dst]) != k
			case uint8(ebpf.GreaterThan):
				cmp = uint32(regs[dst]) > k
			case uint8(ebpf.GreaterEqual):
				cmp = uint32(regs[dst]) >= k
			case uint8(ebpf.LesserThan):
				cmp = uint32(regs[dst]) < k
			case uint8(ebpf.LesserEqual):
				cmp = uint32(regs[dst]) <= k
			case uint8(ebpf.AndMask):
				cmp = uint32(regs[dst])&k != 0
			default:
				return false, 0, fmt.Errorf("bpfsim: unsupported JMP op 0x%x", op)
			}
			if cmp {
				pc += int(insn.Off) + 1
			} else {
				pc++
			}

		default:
			return false, 0, fmt.Errorf("bpfsim: unsupported instruction class 0x%x", class)
		}
	}
}

func loadAbsExt(packet []byte, offset int32, size uint8) (uint32, bool) {
	if offset < 0 {
		return 0, false
	}
	switch size {
	case ebpf.SizeB:
		if int(offset)+1 > len(packet) {
			return 0, false
		}
		return uint32(packet[offset]), true
	case ebpf.SizeH:
		if int(offset)+2 > len(packet) {
			return 0, false
		}
		return uint32(binary.BigEndian.Uint16(packet[offset:])), true
	case ebpf.SizeW:
		if int(offset)+4 > len(packet) {
			return 0, false
		}
		return binary.BigEndian.Uint32(packet[offset:]), true
	}
	return 0, false
}

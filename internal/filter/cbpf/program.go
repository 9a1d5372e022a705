package cbpf

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/SkynetNext/bpf-filter/internal/filter/ferr"
)

// maxInstructions is the kernel's BPF_MAXINSNS limit for classic filters.
const maxInstructions = 4096

// Program is a compiled classic BPF filter ready to be attached to a socket.
type Program struct {
	instructions []Instruction
}

// NewProgram wraps a compiled instruction slice, rejecting one the kernel
// would refuse outright for length.
func NewProgram(instructions []Instruction) (Program, error) {
	if len(instructions) == 0 || len(instructions) > maxInstructions {
		return Program{}, fmt.Errorf("%w: %d instructions (limit %d)", ferr.ErrProgramTooLong, len(instructions), maxInstructions)
	}
	return Program{instructions: instructions}, nil
}

// Len reports the instruction count.
func (p Program) Len() int { return len(p.instructions) }

// SockFprog builds the sock_fprog value SO_ATTACH_FILTER expects, backed by
// a fresh copy of p's instructions in unix.SockFilter form.
func (p Program) SockFprog() *unix.SockFprog {
	filters := make([]unix.SockFilter, len(p.instructions))
	for i, insn := range p.instructions {
		filters[i] = unix.SockFilter{Code: insn.Code, Jt: insn.Jt, Jf: insn.Jf, K: insn.K}
	}
	return &unix.SockFprog{Len: uint16(len(filters)), Filter: &filters[0]}
}

// Attach installs p on fd via SO_ATTACH_FILTER.
func (p Program) Attach(fd int) error {
	prog := p.SockFprog()
	if err := unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, prog); err != nil {
		return fmt.Errorf("%w: %v", ferr.ErrAttachFailed, err)
	}
	return nil
}

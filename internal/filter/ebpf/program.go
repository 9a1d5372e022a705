package ebpf

import (
	"fmt"
	"unsafe"

	"github.com/cilium/ebpf/rlimit"
	"golang.org/x/sys/unix"

	"github.com/SkynetNext/bpf-filter/internal/filter/ferr"
)

// maxInstructions is the kernel's verifier limit for a single program.
const maxInstructions = 1_000_000

const progTypeSocketFilter = 1

// bpfProgLoadAttr mirrors the subset of the kernel's bpf_attr union used by
// the BPF_PROG_LOAD command.
type bpfProgLoadAttr struct {
	ProgType    uint32
	InsnCnt     uint32
	Insns       uint64
	License     uint64
	LogLevel    uint32
	LogSize     uint32
	LogBuf      uint64
	KernVersion uint32
	_           uint32
}

// Program is a compiled extended BPF filter ready to be loaded into the
// kernel and attached to a socket.
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

// Load raises the process's locked-memory limit if the kernel still
// requires it, then loads p as a BPF_PROG_TYPE_SOCKET_FILTER program and
// returns its kernel file descriptor.
func (p Program) Load() (int, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		return -1, fmt.Errorf("%w: raising memlock limit: %v", ferr.ErrKernelRejected, err)
	}

	license := append([]byte("GPL"), 0)
	attr := bpfProgLoadAttr{
		ProgType:    progTypeSocketFilter,
		InsnCnt:     uint32(len(p.instructions)),
		Insns:       uint64(uintptr(unsafe.Pointer(&p.instructions[0]))),
		License:     uint64(uintptr(unsafe.Pointer(&license[0]))),
		KernVersion: 0,
	}

	fd, _, errno := unix.Syscall(unix.SYS_BPF, uintptr(unix.BPF_PROG_LOAD), uintptr(unsafe.Pointer(&attr)), unsafe.Sizeof(attr))
	if errno != 0 {
		return -1, fmt.Errorf("%w: %v", ferr.ErrKernelRejected, errno)
	}
	return int(fd), nil
}

// Attach installs the program loaded as progFd on socket fd via SO_ATTACH_BPF.
func Attach(fd, progFd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ATTACH_BPF, progFd); err != nil {
		return fmt.Errorf("%w: %v", ferr.ErrAttachFailed, err)
	}
	return nil
}

// Package socket wraps the raw packet socket filterd attaches compiled
// programs to: opening it against an interface, draining it before a new
// filter takes effect, and installing classic or extended BPF programs.
package socket

import (
	"fmt"

	"github.com/SkynetNext/bpf-filter/internal/filter/cbpf"
	"github.com/SkynetNext/bpf-filter/internal/filter/ebpf"
)

// Socket is the packet socket a compiled filter program is attached to.
type Socket struct {
	fd        int
	ifaceName string
}

// Open opens an AF_PACKET/SOCK_RAW socket bound to the named interface,
// retrying the syscalls that can return EINTR.
func Open(ifaceName string) (*Socket, error) {
	return open(ifaceName)
}

// Close closes the underlying file descriptor, retrying on EINTR.
func (s *Socket) Close() error {
	return closeFD(s.fd)
}

// Fd returns the raw file descriptor, for use by callers that need to pass
// it to a syscall this package does not wrap directly.
func (s *Socket) Fd() int { return s.fd }

// Flags reports the socket's current file status flags (F_GETFL), such as
// O_NONBLOCK.
func (s *Socket) Flags() (int, error) {
	return getFlags(s.fd)
}

// SetFlags replaces the socket's descriptor flags.
func (s *Socket) SetFlags(flags int) error {
	return setFlags(s.fd, flags)
}

// Drain reads and discards any packets already queued on the socket,
// returning once a read would block. Called before SetFilter installs a
// new program, so stale matches under the old filter are not delivered
// under the new one.
func (s *Socket) Drain() error {
	return drain(s.fd)
}

// SetFilter attaches a classic BPF program, first installing a drop-all
// filter and draining the socket so no packet slips through under the
// outgoing filter's rules while the new one is being installed.
func (s *Socket) SetFilter(prog cbpf.Program) error {
	dropAll, err := cbpf.NewProgram(program0DropAll())
	if err != nil {
		return fmt.Errorf("socket: building drop-all filter: %w", err)
	}
	if err := dropAll.Attach(s.fd); err != nil {
		return fmt.Errorf("socket: installing drop-all filter: %w", err)
	}
	if err := s.Drain(); err != nil {
		return fmt.Errorf("socket: draining before attach: %w", err)
	}
	return prog.Attach(s.fd)
}

// SetExtendedFilter attaches a loaded extended BPF program by file
// descriptor, with the same drop-all-then-drain sequencing as SetFilter.
func (s *Socket) SetExtendedFilter(progFd int) error {
	dropAll, err := cbpf.NewProgram(program0DropAll())
	if err != nil {
		return fmt.Errorf("socket: building drop-all filter: %w", err)
	}
	if err := dropAll.Attach(s.fd); err != nil {
		return fmt.Errorf("socket: installing drop-all filter: %w", err)
	}
	if err := s.Drain(); err != nil {
		return fmt.Errorf("socket: draining before attach: %w", err)
	}
	return ebpf.Attach(s.fd, progFd)
}

func program0DropAll() []cbpf.Instruction {
	return cbpf.Contradiction()
}

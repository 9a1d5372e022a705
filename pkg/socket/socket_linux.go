//go:build linux

package socket

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func htons(v uint16) uint16 {
	return v<<8 | v>>8
}

func open(ifaceName string) (*Socket, error) {
	fd, err := retryEINTR(func() (int, error) {
		return unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	})
	if err != nil {
		return nil, fmt.Errorf("socket: opening AF_PACKET socket: %w", err)
	}

	iface, err := unix.IfNameToIndex(ifaceName)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socket: resolving interface %q: %w", ifaceName, err)
	}

	addr := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  iface,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socket: binding to %q: %w", ifaceName, err)
	}

	return &Socket{fd: fd, ifaceName: ifaceName}, nil
}

func closeFD(fd int) error {
	_, err := retryEINTR(func() (int, error) { return 0, unix.Close(fd) })
	return err
}

func getFlags(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
}

func setFlags(fd int, flags int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags)
	return err
}

func drain(fd int) error {
	flags, err := getFlags(fd)
	if err != nil {
		return err
	}
	if err := setFlags(fd, flags|unix.O_NONBLOCK); err != nil {
		return err
	}
	defer setFlags(fd, flags)

	buf := make([]byte, 65536)
	for {
		_, err := unix.Read(fd, buf)
		if err == nil {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil
		}
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// retryEINTR runs fn until it succeeds or fails with an error other than EINTR.
func retryEINTR(fn func() (int, error)) (int, error) {
	for {
		v, err := fn()
		if err == unix.EINTR {
			continue
		}
		return v, err
	}
}

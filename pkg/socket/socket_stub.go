//go:build !linux

package socket

import "fmt"

var errUnsupported = fmt.Errorf("socket: AF_PACKET raw sockets are only supported on linux")

func open(ifaceName string) (*Socket, error) {
	return nil, errUnsupported
}

func closeFD(fd int) error {
	return errUnsupported
}

func getFlags(fd int) (int, error) {
	return 0, errUnsupported
}

func setFlags(fd int, flags int) error {
	return errUnsupported
}

func drain(fd int) error {
	return errUnsupported
}

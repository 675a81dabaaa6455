//go:build !unix

package transport

import (
	"errors"
	"syscall"
)

func sendBufferSize(syscall.Conn) (int, error) {
	return 0, errors.ErrUnsupported
}

package transport

import (
	"fmt"
	"net"
)

// Dial opens a TCP connection to addr and wraps it for framed
// message I/O.
func Dial(addr string) (*Conn, error) {
	netConn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocketCreateFailed, err)
	}
	return NewConn(netConn), nil
}

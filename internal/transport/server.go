package transport

import (
	"fmt"
	"net"
)

// Listener wraps a net.Listener bound with address reuse, per spec.4.3.
// Go's net package enables SO_REUSEADDR by default on TCP listeners, so
// no extra syscall plumbing is required beyond net.Listen.
type Listener struct {
	netListener net.Listener
}

// Listen binds addr and starts listening. A bind/listen failure is
// reported through the SocketError taxonomy so callers (cmd/sdsql-server)
// can map it to the spec.6 exit code.
func Listen(addr string) (*Listener, error) {
	if addr == "" {
		return nil, ErrInvalidAddress
	}

	netListener, err := net.Listen("tcp", addr)
	if err != nil {
		if _, ok := err.(*net.AddrError); ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrBindFailed, err)
	}

	return &Listener{netListener: netListener}, nil
}

func (l *Listener) Addr() net.Addr {
	return l.netListener.Addr()
}

func (l *Listener) Close() error {
	return l.netListener.Close()
}

// Accept returns an opaque client handle wrapping the next inbound
// connection, or a SocketError.
func (l *Listener) Accept() (*Conn, error) {
	netConn, err := l.netListener.Accept()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcceptFailed, err)
	}
	return NewConn(netConn), nil
}

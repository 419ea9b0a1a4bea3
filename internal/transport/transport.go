// Package transport implements SDSQL's blocking stream-socket transport:
// exact-length reads/writes of one framed message (header + payload) at a
// time, per spec.4.3.
package transport

import (
	"fmt"
	"io"
	"net"

	"github.com/Althra/SDSQL/internal/wire"
)

// SocketError is the transport-level error taxonomy from spec.7.
type SocketError int

const (
	ErrSocketCreateFailed SocketError = iota + 1
	ErrInvalidAddress
	ErrBindFailed
	ErrListenFailed
	ErrAcceptFailed
	ErrSendFailed
	ErrRecvFailed
	ErrConnectionClosed
)

func (e SocketError) Error() string {
	switch e {
	case ErrSocketCreateFailed:
		return "transport: socket create failed"
	case ErrInvalidAddress:
		return "transport: invalid address"
	case ErrBindFailed:
		return "transport: bind failed"
	case ErrListenFailed:
		return "transport: listen failed"
	case ErrAcceptFailed:
		return "transport: accept failed"
	case ErrSendFailed:
		return "transport: send failed"
	case ErrRecvFailed:
		return "transport: recv failed"
	case ErrConnectionClosed:
		return "transport: connection closed"
	default:
		return fmt.Sprintf("transport: unknown socket error (%d)", int(e))
	}
}

// DefaultListenAddr matches spec.6's reference server default.
const DefaultListenAddr = "127.0.0.1:4399"

// ListenBacklog matches spec.4.3's reference backlog size. Go's net
// package does not expose backlog tuning directly; it is documented here
// for parity with the reference design and left to the OS default.
const ListenBacklog = 10

// readExact reads exactly len(buf) bytes from r, treating a 0-byte read
// (or io.EOF before the buffer is full) as a closed connection rather
// than a generic I/O error, per spec.4.3.
func readExact(r io.Reader, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		if n == 0 && err == nil {
			return ErrConnectionClosed
		}
		read += n
		if err != nil {
			if err == io.EOF {
				if read < len(buf) {
					return ErrConnectionClosed
				}
				return nil
			}
			return fmt.Errorf("%w: %v", ErrRecvFailed, err)
		}
	}
	return nil
}

// writeExact writes exactly len(buf) bytes to w, retrying on short writes
// until the full count is written or an error surfaces.
func writeExact(w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		written += n
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSendFailed, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: zero-length write", ErrSendFailed)
		}
	}
	return nil
}

// Conn wraps a net.Conn with message-at-a-time framed I/O: ReceiveMessage
// reads exactly 9 header bytes then exactly PayloadSize payload bytes;
// SendMessage performs an exact-length write loop of a pre-encoded
// message.
type Conn struct {
	netConn net.Conn
}

func NewConn(netConn net.Conn) *Conn {
	return &Conn{netConn: netConn}
}

func (c *Conn) Close() error {
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// ReceiveHeaderBytes reads exactly the 9 header bytes and returns them raw -
// callers combine this with ReceivePayloadBytes so the message type can be
// inspected (e.g. for logging) before the payload decoder runs.
func (c *Conn) ReceiveHeaderBytes() ([]byte, error) {
	buf := make([]byte, wire.HeaderSize)
	if err := readExact(c.netConn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *Conn) ReceivePayloadBytes(n uint32) ([]byte, error) {
	buf := make([]byte, n)
	if err := readExact(c.netConn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SendBytes writes a fully framed message (header + payload) with an
// exact-length write loop.
func (c *Conn) SendBytes(b []byte) error {
	return writeExact(c.netConn, b)
}

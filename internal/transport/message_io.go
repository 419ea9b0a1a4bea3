package transport

import (
	"github.com/Althra/SDSQL/internal/wire"
)

// ReceiveMessage reads one full framed message (header + payload) and
// decodes it into a concrete wire.Message. A connection-closed or
// malformed header/payload surfaces the same errors readExact and
// wire.Decode already define.
func (c *Conn) ReceiveMessage() (wire.Message, error) {
	header, err := c.ReceiveHeaderBytes()
	if err != nil {
		return nil, err
	}

	d := wire.NewDecoder(header)
	if _, err := d.ReadU32(); err != nil {
		return nil, err
	}
	if _, err := d.ReadU8(); err != nil {
		return nil, err
	}
	payloadSize, err := d.ReadU32()
	if err != nil {
		return nil, err
	}

	payload, err := c.ReceivePayloadBytes(payloadSize)
	if err != nil {
		return nil, err
	}

	full := append(append([]byte{}, header...), payload...)
	return wire.Decode(full)
}

// SendMessage encodes m and writes the full framed buffer in one
// exact-length write loop.
func (c *Conn) SendMessage(m wire.Message) error {
	return c.SendBytes(wire.Encode(m))
}

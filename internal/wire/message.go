package wire

import "fmt"

// MagicNumber is the fixed sentinel at the start of every framed message.
const MagicNumber uint32 = 0xDEADBEEF

// HeaderSize is the exact size, in bytes, of a message header.
const HeaderSize = 9

// MessageType is the 1-byte discriminator carried in the header.
type MessageType uint8

const (
	TypeLoginRequest  MessageType = 0x10
	TypeLoginSuccess  MessageType = 0x11
	TypeLoginFailure  MessageType = 0x12
	TypeQueryRequest  MessageType = 0x20
	TypeQueryResponse MessageType = 0x21
	TypePingRequest   MessageType = 0x30
	TypePongResponse  MessageType = 0x31
	TypeErrorResponse MessageType = 0x99
)

func (t MessageType) String() string {
	switch t {
	case TypeLoginRequest:
		return "LOGIN_REQUEST"
	case TypeLoginSuccess:
		return "LOGIN_SUCCESS"
	case TypeLoginFailure:
		return "LOGIN_FAILURE"
	case TypeQueryRequest:
		return "QUERY_REQUEST"
	case TypeQueryResponse:
		return "QUERY_RESPONSE"
	case TypePingRequest:
		return "PING_REQUEST"
	case TypePongResponse:
		return "PONG_RESPONSE"
	case TypeErrorResponse:
		return "ERROR_RESPONSE"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(t))
	}
}

// ProtocolError is framing-level error taxonomy, distinct from the codec's
// SerializationError - it names problems with the envelope, not the bytes
// inside a single primitive read.
type ProtocolError int

const (
	ErrInvalidMagicNumber ProtocolError = iota + 1
	ErrInvalidMessageType
	ErrPayloadSizeMismatch
	ErrDeserializationFailed
)

func (e ProtocolError) Error() string {
	switch e {
	case ErrInvalidMagicNumber:
		return "wire: invalid magic number"
	case ErrInvalidMessageType:
		return "wire: invalid message type"
	case ErrPayloadSizeMismatch:
		return "wire: payload size mismatch"
	case ErrDeserializationFailed:
		return "wire: deserialization failed"
	default:
		return fmt.Sprintf("wire: unknown protocol error (%d)", int(e))
	}
}

// Header is the fixed 9-byte envelope preceding every payload.
type Header struct {
	Magic       uint32
	Type        MessageType
	PayloadSize uint32
}

func (h Header) encode(e *Encoder) {
	e.WriteU32(h.Magic)
	e.WriteU8(uint8(h.Type))
	e.WriteU32(h.PayloadSize)
}

func decodeHeader(d *Decoder) (Header, error) {
	magic, err := d.ReadU32()
	if err != nil {
		return Header{}, ErrDeserializationFailed
	}
	if magic != MagicNumber {
		return Header{}, ErrInvalidMagicNumber
	}
	typ, err := d.ReadU8()
	if err != nil {
		return Header{}, ErrDeserializationFailed
	}
	size, err := d.ReadU32()
	if err != nil {
		return Header{}, ErrDeserializationFailed
	}
	return Header{Magic: magic, Type: MessageType(typ), PayloadSize: size}, nil
}

// Message is the sum type over every wire payload. Each concrete type
// serializes its own payload; the header is handled uniformly by Encode
// and Decode below. There is no runtime type identification beyond the
// single type byte in the header - decode dispatches through NewMessage.
type Message interface {
	Type() MessageType
	encodePayload(e *Encoder)
	decodePayload(d *Decoder) error
}

// NewMessage is the factory keyed by the wire type byte, used by Decode to
// pick a zero-value payload to unmarshal into.
func NewMessage(t MessageType) (Message, error) {
	switch t {
	case TypeLoginRequest:
		return &LoginRequest{}, nil
	case TypeLoginSuccess:
		return &LoginSuccess{}, nil
	case TypeLoginFailure:
		return &LoginFailure{}, nil
	case TypeQueryRequest:
		return &QueryRequest{}, nil
	case TypeQueryResponse:
		return &QueryResponse{}, nil
	case TypePingRequest:
		return &PingRequest{}, nil
	case TypePongResponse:
		return &PongResponse{}, nil
	case TypeErrorResponse:
		return &ErrorResponse{}, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

// Encode serializes header + payload. The payload is computed first so the
// header's PayloadSize field is exact.
func Encode(m Message) []byte {
	payload := NewEncoder(64)
	m.encodePayload(payload)

	full := NewEncoder(HeaderSize + payload.Len())
	Header{
		Magic:       MagicNumber,
		Type:        m.Type(),
		PayloadSize: uint32(payload.Len()),
	}.encode(full)
	full.WriteBytes(payload.Bytes())
	return full.Bytes()
}

// Decode reads a 9-byte header and exactly PayloadSize bytes of payload
// from buf, dispatches to the variant's decoder via NewMessage, and
// returns the populated Message.
func Decode(buf []byte) (Message, error) {
	d := NewDecoder(buf)
	header, err := decodeHeader(d)
	if err != nil {
		return nil, err
	}

	msg, err := NewMessage(header.Type)
	if err != nil {
		return nil, err
	}

	if d.Remaining() != int(header.PayloadSize) {
		return nil, ErrPayloadSizeMismatch
	}

	if err := msg.decodePayload(d); err != nil {
		return nil, ErrDeserializationFailed
	}

	return msg, nil
}

// PayloadSize returns the exact number of payload bytes m would encode to,
// without allocating the full framed buffer.
func PayloadSize(m Message) int {
	e := NewEncoder(64)
	m.encodePayload(e)
	return e.Len()
}

package wire

// ErrorResponse signals a framing- or codec-level failure that the server
// cannot recover from without dropping the connection. Application-level
// failures (permission denied, table not found, ...) travel as a
// QueryResponse with Success=false instead. The one exception is an
// invalid or expired session token: the server answers it with an
// ErrorResponse carrying ErrorCodeInvalidToken and keeps the connection
// open.
type ErrorResponse struct {
	ErrorMessage string
	ErrorCode    uint32
}

func (m *ErrorResponse) Type() MessageType { return TypeErrorResponse }

func (m *ErrorResponse) encodePayload(e *Encoder) {
	e.WriteString(m.ErrorMessage)
	e.WriteU32(m.ErrorCode)
}

func (m *ErrorResponse) decodePayload(d *Decoder) error {
	var err error
	if m.ErrorMessage, err = d.ReadString(); err != nil {
		return err
	}
	m.ErrorCode, err = d.ReadU32()
	return err
}

// Well-known error codes referenced by spec.7; a UI cares about these.
const (
	ErrorCodeInvalidToken      uint32 = 401
	ErrorCodeUnsupportedType   uint32 = 400
	ErrorCodeInternal          uint32 = 500
)

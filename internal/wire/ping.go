package wire

// PingRequest is a heartbeat carrying the client's local timestamp, in
// milliseconds since the Unix epoch.
type PingRequest struct {
	TimestampMs uint64
}

func (m *PingRequest) Type() MessageType { return TypePingRequest }

func (m *PingRequest) encodePayload(e *Encoder) {
	e.WriteU64(m.TimestampMs)
}

func (m *PingRequest) decodePayload(d *Decoder) error {
	var err error
	m.TimestampMs, err = d.ReadU64()
	return err
}

// PongResponse echoes the client's original timestamp alongside the
// server's own, letting a client estimate round-trip latency and clock
// skew in one exchange.
type PongResponse struct {
	OriginalTimestampMs uint64
	ServerTimestampMs   uint64
}

func (m *PongResponse) Type() MessageType { return TypePongResponse }

func (m *PongResponse) encodePayload(e *Encoder) {
	e.WriteU64(m.OriginalTimestampMs)
	e.WriteU64(m.ServerTimestampMs)
}

func (m *PongResponse) decodePayload(d *Decoder) error {
	var err error
	if m.OriginalTimestampMs, err = d.ReadU64(); err != nil {
		return err
	}
	m.ServerTimestampMs, err = d.ReadU64()
	return err
}

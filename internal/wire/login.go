package wire

// LoginRequest carries a username/password pair to authenticate a new
// session.
type LoginRequest struct {
	Username string
	Password string
}

func (m *LoginRequest) Type() MessageType { return TypeLoginRequest }

func (m *LoginRequest) encodePayload(e *Encoder) {
	e.WriteString(m.Username)
	e.WriteString(m.Password)
}

func (m *LoginRequest) decodePayload(d *Decoder) error {
	var err error
	if m.Username, err = d.ReadString(); err != nil {
		return err
	}
	if m.Password, err = d.ReadString(); err != nil {
		return err
	}
	return nil
}

// LoginSuccess carries the freshly minted session token and a numeric
// user id back to the client.
type LoginSuccess struct {
	SessionToken string
	UserID       uint32
}

func (m *LoginSuccess) Type() MessageType { return TypeLoginSuccess }

func (m *LoginSuccess) encodePayload(e *Encoder) {
	e.WriteString(m.SessionToken)
	e.WriteU32(m.UserID)
}

func (m *LoginSuccess) decodePayload(d *Decoder) error {
	var err error
	if m.SessionToken, err = d.ReadString(); err != nil {
		return err
	}
	if m.UserID, err = d.ReadU32(); err != nil {
		return err
	}
	return nil
}

// LoginFailure carries a generic error message - it never names whether
// the username or the password was wrong, to avoid user enumeration.
type LoginFailure struct {
	ErrorMessage string
}

func (m *LoginFailure) Type() MessageType { return TypeLoginFailure }

func (m *LoginFailure) encodePayload(e *Encoder) {
	e.WriteString(m.ErrorMessage)
}

func (m *LoginFailure) decodePayload(d *Decoder) error {
	var err error
	m.ErrorMessage, err = d.ReadString()
	return err
}

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_RoundTrip_AllVariants(t *testing.T) {
	t.Parallel()

	cases := []Message{
		&LoginRequest{Username: "admin", Password: "123456"},
		&LoginSuccess{SessionToken: "tok-abc", UserID: 1001},
		&LoginFailure{ErrorMessage: "invalid username or password"},
		&QueryRequest{
			Operation:     OpCreateTable,
			SessionToken:  "tok-abc",
			DBName:        "test_db",
			TableName:     "users",
			Columns:       []ColumnDef{{Name: "id", Type: TypeInt, IsPrimary: true}, {Name: "name", Type: TypeString}},
			SelectColumns: []string{"id", "name"},
			InsertValues:  []Literal{{Type: TypeInt, Value: "1"}, {Type: TypeString, Value: "Alice"}},
			UpdateClauses: []SetClause{{Column: "age", Value: Literal{Type: TypeInt, Value: "30"}}},
			HasWhere:      true,
			WhereExpr:     "age = 25 AND name != 'Alice'",
			OrderByColumn: "id",
		},
		&QueryResponse{
			Success:      true,
			ColumnNames:  []string{"id", "name", "age"},
			Rows:         [][]string{{"1", "Alice", "25"}},
			RowsAffected: 1,
		},
		&QueryResponse{Success: false, ErrorMessage: "table not found: users"},
		&PingRequest{TimestampMs: 1234567890},
		&PongResponse{OriginalTimestampMs: 1234567890, ServerTimestampMs: 1234567999},
		&ErrorResponse{ErrorMessage: "invalid session token", ErrorCode: ErrorCodeInvalidToken},
	}

	for _, m := range cases {
		encoded := Encode(m)
		assert.Equal(t, HeaderSize+PayloadSize(m), len(encoded))

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, m, decoded)
	}
}

func TestMessage_LoginRequest_LiteralHeaderBytes(t *testing.T) {
	t.Parallel()

	// Fixture from spec.6: LOGIN_REQUEST{"u","p"}.
	m := &LoginRequest{Username: "u", Password: "p"}
	encoded := Encode(m)

	expectedHeader := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x10, 0x00, 0x00, 0x00, 0x0A}
	expectedPayload := []byte{0x00, 0x00, 0x00, 0x01, 0x75, 0x00, 0x00, 0x00, 0x01, 0x70}

	require.Len(t, encoded, len(expectedHeader)+len(expectedPayload))
	assert.Equal(t, expectedHeader, encoded[:HeaderSize])
	assert.Equal(t, expectedPayload, encoded[HeaderSize:])
}

func TestMessage_BadMagic(t *testing.T) {
	t.Parallel()

	m := &PingRequest{TimestampMs: 1}
	encoded := Encode(m)
	encoded[0] ^= 0xFF // flip a byte in the magic

	_, err := Decode(encoded)
	assert.ErrorIs(t, err, ErrInvalidMagicNumber)
}

func TestMessage_UnknownType(t *testing.T) {
	t.Parallel()

	m := &PingRequest{TimestampMs: 1}
	encoded := Encode(m)
	encoded[4] = 0x77 // unknown type byte

	_, err := Decode(encoded)
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestMessage_Truncated(t *testing.T) {
	t.Parallel()

	m := &LoginRequest{Username: "admin", Password: "123456"}
	encoded := Encode(m)

	_, err := Decode(encoded[:len(encoded)-3])
	assert.Error(t, err)
}

func TestMessage_PayloadSizeMismatch(t *testing.T) {
	t.Parallel()

	m := &PingRequest{TimestampMs: 42}
	encoded := Encode(m)

	// Corrupt the declared payload size (bytes 5-8) to be too small while
	// leaving all the payload bytes present.
	e := NewEncoder(0)
	e.WriteBytes(encoded[:5])
	e.WriteU32(1)
	e.WriteBytes(encoded[HeaderSize:])

	_, err := Decode(e.Bytes())
	assert.ErrorIs(t, err, ErrPayloadSizeMismatch)
}

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_BigEndian(t *testing.T) {
	t.Parallel()

	e := NewEncoder(0)
	e.WriteU32(0x0A000000)
	assert.Equal(t, []byte{0x0A, 0x00, 0x00, 0x00}, e.Bytes())

	d := NewDecoder(e.Bytes())
	v, err := d.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0A000000), v)
}

func TestCodec_U64_RoundTrip(t *testing.T) {
	t.Parallel()

	e := NewEncoder(0)
	e.WriteU64(0x1122334455667788)
	assert.Len(t, e.Bytes(), 8)

	d := NewDecoder(e.Bytes())
	v, err := d.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1122334455667788), v)
}

func TestCodec_String_RoundTrip(t *testing.T) {
	t.Parallel()

	e := NewEncoder(0)
	e.WriteString("hello")
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x05, 'h', 'e', 'l', 'l', 'o'}, e.Bytes())

	d := NewDecoder(e.Bytes())
	s, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestCodec_String_TooLong(t *testing.T) {
	t.Parallel()

	e := NewEncoder(0)
	e.WriteU32(MaxStringLen + 1)

	d := NewDecoder(e.Bytes())
	_, err := d.ReadString()
	assert.ErrorIs(t, err, ErrStringTooLong)
}

func TestCodec_InsufficientData(t *testing.T) {
	t.Parallel()

	d := NewDecoder([]byte{0x01, 0x02})
	_, err := d.ReadU32()
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCodec_Peek_DoesNotAdvance(t *testing.T) {
	t.Parallel()

	e := NewEncoder(0)
	e.WriteU8(0x42)
	e.WriteU8(0x43)

	d := NewDecoder(e.Bytes())
	v, err := d.PeekU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), v)
	assert.Equal(t, 0, d.Position())

	v2, err := d.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), v2)
}

func TestCodec_Skip(t *testing.T) {
	t.Parallel()

	d := NewDecoder([]byte{1, 2, 3, 4})
	require.NoError(t, d.Skip(2))
	v, err := d.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), v)

	assert.ErrorIs(t, d.Skip(10), ErrInsufficientData)
}

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Althra/SDSQL/internal/wire"
)

func TestTransport_SendReceive_RoundTrip(t *testing.T) {
	t.Parallel()

	listener, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	serverConnCh := make(chan *Conn, 1)
	go func() {
		conn, err := listener.Accept()
		require.NoError(t, err)
		serverConnCh <- conn
	}()

	clientConn, err := Dial(listener.Addr().String())
	require.NoError(t, err)
	defer clientConn.Close()

	serverConn := <-serverConnCh
	defer serverConn.Close()

	want := &wire.LoginRequest{Username: "admin", Password: "123456"}
	require.NoError(t, clientConn.SendMessage(want))

	got, err := serverConn.ReceiveMessage()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTransport_ConnectionClosed(t *testing.T) {
	t.Parallel()

	listener, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	serverConnCh := make(chan *Conn, 1)
	go func() {
		conn, err := listener.Accept()
		require.NoError(t, err)
		serverConnCh <- conn
	}()

	clientConn, err := Dial(listener.Addr().String())
	require.NoError(t, err)

	serverConn := <-serverConnCh
	defer serverConn.Close()

	require.NoError(t, clientConn.Close())

	_, err = serverConn.ReceiveMessage()
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestTransport_InvalidAddress(t *testing.T) {
	t.Parallel()

	_, err := Listen("")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

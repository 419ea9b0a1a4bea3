package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/storage/memstore"
	"github.com/Althra/SDSQL/internal/transport"
	"github.com/Althra/SDSQL/internal/wire"
)

const badMagic uint32 = 0x12345678

func startTestServer(t *testing.T) string {
	t.Helper()

	ctx, err := New(Config{Backend: memstore.New(), AdminPassword: "123456", Logger: zap.NewNop()})
	require.NoError(t, err)

	listener, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	ctx.listener = listener

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			ctx.wg.Add(1)
			go func() {
				defer ctx.wg.Done()
				ctx.handleConnection(conn)
			}()
		}
	}()

	t.Cleanup(ctx.Stop)
	return listener.Addr().String()
}

func login(t *testing.T, conn *transport.Conn, user, pass string) string {
	t.Helper()
	require.NoError(t, conn.SendMessage(&wire.LoginRequest{Username: user, Password: pass}))
	resp, err := conn.ReceiveMessage()
	require.NoError(t, err)
	success, ok := resp.(*wire.LoginSuccess)
	require.True(t, ok, "expected LoginSuccess, got %T", resp)
	return success.SessionToken
}

func roundTrip(t *testing.T, conn *transport.Conn, req *wire.QueryRequest) *wire.QueryResponse {
	t.Helper()
	require.NoError(t, conn.SendMessage(req))
	resp, err := conn.ReceiveMessage()
	require.NoError(t, err)
	qr, ok := resp.(*wire.QueryResponse)
	require.True(t, ok, "expected QueryResponse, got %T", resp)
	return qr
}

func TestServer_S1_EndToEnd(t *testing.T) {
	addr := startTestServer(t)
	conn, err := transport.Dial(addr)
	require.NoError(t, err)
	defer conn.Close()

	token := login(t, conn, "admin", "123456")

	resp := roundTrip(t, conn, &wire.QueryRequest{Operation: wire.OpCreateDatabase, SessionToken: token, DBName: "test_db"})
	require.True(t, resp.Success)

	resp = roundTrip(t, conn, &wire.QueryRequest{Operation: wire.OpUseDatabase, SessionToken: token, DBName: "test_db"})
	require.True(t, resp.Success)

	resp = roundTrip(t, conn, &wire.QueryRequest{
		Operation: wire.OpCreateTable, SessionToken: token, TableName: "users",
		Columns: []wire.ColumnDef{
			{Name: "id", Type: wire.TypeInt, IsPrimary: true},
			{Name: "name", Type: wire.TypeString},
			{Name: "age", Type: wire.TypeInt},
		},
	})
	require.True(t, resp.Success)

	resp = roundTrip(t, conn, &wire.QueryRequest{
		Operation: wire.OpInsert, SessionToken: token, TableName: "users",
		InsertValues: []wire.Literal{{Type: wire.TypeInt, Value: "1"}, {Type: wire.TypeString, Value: "Alice"}, {Type: wire.TypeInt, Value: "25"}},
	})
	require.True(t, resp.Success)
	require.Equal(t, uint32(1), resp.RowsAffected)

	resp = roundTrip(t, conn, &wire.QueryRequest{Operation: wire.OpSelect, SessionToken: token, TableName: "users"})
	require.True(t, resp.Success)
	require.Equal(t, []string{"id", "name", "age"}, resp.ColumnNames)
	require.Equal(t, [][]string{{"1", "Alice", "25"}}, resp.Rows)
}

func TestServer_S5_UnauthorizedDenied(t *testing.T) {
	addr := startTestServer(t)

	adminConn, err := transport.Dial(addr)
	require.NoError(t, err)
	defer adminConn.Close()
	adminToken := login(t, adminConn, "admin", "123456")
	resp := roundTrip(t, adminConn, &wire.QueryRequest{
		Operation: wire.OpCreateUser, SessionToken: adminToken, TableName: "guest",
		InsertValues: []wire.Literal{{Type: wire.TypeString, Value: "pw"}},
	})
	require.True(t, resp.Success)

	guestConn, err := transport.Dial(addr)
	require.NoError(t, err)
	defer guestConn.Close()
	guestToken := login(t, guestConn, "guest", "pw")

	resp = roundTrip(t, guestConn, &wire.QueryRequest{Operation: wire.OpCreateDatabase, SessionToken: guestToken, DBName: "x"})
	require.False(t, resp.Success)
}

func TestServer_InvalidToken_Returns401(t *testing.T) {
	addr := startTestServer(t)
	conn, err := transport.Dial(addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SendMessage(&wire.QueryRequest{Operation: wire.OpSelect, SessionToken: "never-issued", TableName: "t"}))
	resp, err := conn.ReceiveMessage()
	require.NoError(t, err)
	errResp, ok := resp.(*wire.ErrorResponse)
	require.True(t, ok, "expected ErrorResponse, got %T", resp)
	require.Equal(t, wire.ErrorCodeInvalidToken, errResp.ErrorCode)
}

// TestServer_S6_BadMagicGetsErrorResponseThenDisconnect covers spec S6:
// a framing/codec error on incoming bytes (here, a bad magic number)
// gets an ERROR_RESPONSE before the server disconnects, and the server
// itself keeps accepting new connections afterward.
func TestServer_S6_BadMagicGetsErrorResponseThenDisconnect(t *testing.T) {
	addr := startTestServer(t)
	conn, err := transport.Dial(addr)
	require.NoError(t, err)
	defer conn.Close()

	header := wire.NewEncoder(9)
	header.WriteU32(badMagic)
	header.WriteU8(uint8(wire.TypeQueryRequest))
	header.WriteU32(0)
	require.NoError(t, conn.SendBytes(header.Bytes()))

	resp, err := conn.ReceiveMessage()
	require.NoError(t, err)
	errResp, ok := resp.(*wire.ErrorResponse)
	require.True(t, ok, "expected ErrorResponse, got %T", resp)
	require.Equal(t, wire.ErrorCodeUnsupportedType, errResp.ErrorCode)

	_, err = conn.ReceiveMessage()
	require.Error(t, err, "connection should be closed after a framing error")

	// the server itself must still be accepting new connections
	conn2, err := transport.Dial(addr)
	require.NoError(t, err)
	defer conn2.Close()
	_ = login(t, conn2, "admin", "123456")
}

func TestServer_Ping(t *testing.T) {
	addr := startTestServer(t)
	conn, err := transport.Dial(addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SendMessage(&wire.PingRequest{TimestampMs: 42}))
	resp, err := conn.ReceiveMessage()
	require.NoError(t, err)
	pong, ok := resp.(*wire.PongResponse)
	require.True(t, ok)
	require.Equal(t, uint64(42), pong.OriginalTimestampMs)
	require.WithinDuration(t, time.Now(), time.Now(), time.Second) // sanity: test process clock is usable
}

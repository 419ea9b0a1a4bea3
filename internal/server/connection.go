package server

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/auth"
	"github.com/Althra/SDSQL/internal/engine"
	"github.com/Althra/SDSQL/internal/transport"
	"github.com/Althra/SDSQL/internal/wire"
)

// handleConnection runs the per-client request/response loop described
// by spec.5's scheduling model: read one message, execute it to
// completion, write one response, repeat. No request interleaving.
func (c *Context) handleConnection(conn *transport.Conn) {
	defer conn.Close()

	session := engine.NewSession()
	var token string

	defer func() {
		if session.Txn != nil && session.Txn.Active {
			if err := c.Engine.Rollback(session); err != nil {
				c.logger.Warn("auto-rollback on disconnect failed", zap.Error(err))
			}
		}
		if token != "" {
			c.Sessions.Invalidate(token)
		}
	}()

	for {
		msg, err := conn.ReceiveMessage()
		if err != nil {
			if errors.Is(err, transport.ErrConnectionClosed) {
				return
			}
			c.logger.Debug("receive failed", zap.Error(err))
			errResp := &wire.ErrorResponse{ErrorMessage: err.Error(), ErrorCode: wire.ErrorCodeUnsupportedType}
			conn.SendMessage(errResp)
			return
		}

		switch m := msg.(type) {
		case *wire.LoginRequest:
			resp := c.handleLogin(m, &token)
			if err := conn.SendMessage(resp); err != nil {
				c.logger.Debug("send failed", zap.Error(err))
				return
			}

		case *wire.PingRequest:
			resp := &wire.PongResponse{OriginalTimestampMs: m.TimestampMs, ServerTimestampMs: uint64(time.Now().UnixMilli())}
			if err := conn.SendMessage(resp); err != nil {
				return
			}

		case *wire.QueryRequest:
			resp, disconnect := c.handleQuery(session, token, m)
			if err := conn.SendMessage(resp); err != nil {
				c.logger.Debug("send failed", zap.Error(err))
				return
			}
			if disconnect {
				return
			}

		default:
			errResp := &wire.ErrorResponse{ErrorMessage: "unsupported message type", ErrorCode: wire.ErrorCodeUnsupportedType}
			conn.SendMessage(errResp)
			return
		}
	}
}

func (c *Context) handleLogin(req *wire.LoginRequest, token *string) wire.Message {
	user, ok := c.Users.Authenticate(req.Username, req.Password)
	if !ok {
		return &wire.LoginFailure{ErrorMessage: "invalid username or password"}
	}

	t, err := c.Sessions.Issue(user.Name)
	if err != nil {
		c.logger.Error("session issue failed", zap.Error(err))
		return &wire.LoginFailure{ErrorMessage: "internal error"}
	}
	*token = t

	return &wire.LoginSuccess{SessionToken: t, UserID: user.ID}
}

// handleQuery authorizes and executes one QueryRequest, per spec.4.4's
// query-authorization contract. An invalid/expired token surfaces as an
// ERROR_RESPONSE with code 401 (spec.7); the connection is kept open so
// the client may retry with a fresh login. Every other error surfaces as
// QUERY_RESPONSE{success=false} per spec.4.5's failure-handling rule.
func (c *Context) handleQuery(session *engine.Session, token string, req *wire.QueryRequest) (wire.Message, bool) {
	objectName := req.DBName
	switch req.Operation {
	case wire.OpCreateTable, wire.OpDropTable, wire.OpInsert, wire.OpSelect,
		wire.OpUpdate, wire.OpDelete, wire.OpAlterTableAddColumn:
		objectName = req.TableName
	}

	_, err := c.Sessions.Authorize(c.Users, token, int(req.Operation), objectName)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return &wire.ErrorResponse{ErrorMessage: err.Error(), ErrorCode: wire.ErrorCodeInvalidToken}, false
		}
		return &wire.QueryResponse{Success: false, ErrorMessage: "permission denied: " + err.Error()}, false
	}

	return c.dispatch(session, req), false
}

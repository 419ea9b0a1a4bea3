package server

import (
	"errors"

	"github.com/Althra/SDSQL/internal/auth"
	"github.com/Althra/SDSQL/internal/engine"
	"github.com/Althra/SDSQL/internal/wire"
)

// dispatch executes req against the engine, mapping its outcome to a
// QUERY_RESPONSE per spec.4.5's per-operation contract. DDL/DML contract
// errors never disconnect the client (spec.7); they come back as
// success=false with a descriptive message.
func (c *Context) dispatch(session *engine.Session, req *wire.QueryRequest) *wire.QueryResponse {
	switch req.Operation {
	case wire.OpCreateDatabase:
		return resultOnly(c.Engine.CreateDatabase(req.DBName))

	case wire.OpDropDatabase:
		return resultOnly(c.Engine.DropDatabase(session, req.DBName))

	case wire.OpUseDatabase:
		return resultOnly(c.Engine.UseDatabase(session, req.DBName))

	case wire.OpCreateTable:
		return resultOnly(c.Engine.CreateTable(session, req.TableName, wireColumns(req.Columns)))

	case wire.OpDropTable:
		return resultOnly(c.Engine.DropTable(session, req.TableName))

	case wire.OpAlterTableAddColumn:
		if len(req.Columns) != 1 {
			return &wire.QueryResponse{Success: false, ErrorMessage: "alter table add column: exactly one column required"}
		}
		col := req.Columns[0]
		return resultOnly(c.Engine.AlterTableAddColumn(session, req.TableName, engine.Column{Name: col.Name, Type: col.Type, IsPrimary: col.IsPrimary}))

	case wire.OpInsert:
		err := c.Engine.Insert(session, req.TableName, req.InsertValues, req.InsertColumns)
		if err != nil {
			return &wire.QueryResponse{Success: false, ErrorMessage: err.Error()}
		}
		return &wire.QueryResponse{Success: true, RowsAffected: 1}

	case wire.OpSelect:
		whereExpr := ""
		if req.HasWhere {
			whereExpr = req.WhereExpr
		}
		result, err := c.Engine.Select(session, req.TableName, req.SelectColumns, whereExpr, req.OrderByColumn)
		if err != nil {
			return &wire.QueryResponse{Success: false, ErrorMessage: err.Error()}
		}
		return &wire.QueryResponse{Success: true, ColumnNames: result.ColumnNames, Rows: result.Rows, Warning: result.Warning}

	case wire.OpUpdate:
		whereExpr := ""
		if req.HasWhere {
			whereExpr = req.WhereExpr
		}
		affected, warning, err := c.Engine.Update(session, req.TableName, req.UpdateClauses, whereExpr)
		if err != nil {
			return &wire.QueryResponse{Success: false, ErrorMessage: err.Error()}
		}
		return &wire.QueryResponse{Success: true, RowsAffected: affected, Warning: warning}

	case wire.OpDelete:
		whereExpr := ""
		if req.HasWhere {
			whereExpr = req.WhereExpr
		}
		affected, err := c.Engine.Delete(session, req.TableName, whereExpr)
		if err != nil {
			return &wire.QueryResponse{Success: false, ErrorMessage: err.Error()}
		}
		return &wire.QueryResponse{Success: true, RowsAffected: affected}

	case wire.OpBeginTransaction:
		return resultOnly(session.BeginTransaction())

	case wire.OpCommit:
		err := c.Engine.Commit(session)
		if err != nil {
			var persistErr *engine.CommitPersistenceError
			if errors.As(err, &persistErr) {
				return &wire.QueryResponse{Success: true, Warning: persistErr.Error()}
			}
			return &wire.QueryResponse{Success: false, ErrorMessage: err.Error()}
		}
		return &wire.QueryResponse{Success: true}

	case wire.OpRollback:
		return resultOnly(c.Engine.Rollback(session))

	case wire.OpCreateUser:
		return resultOnly(c.Users.CreateUser(req.TableName, firstInsertValue(req.InsertValues)))

	case wire.OpDropUser:
		return resultOnly(c.Users.DropUser(req.TableName))

	case wire.OpGrantPermission, wire.OpRevokePermission:
		return c.dispatchPermission(req)

	default:
		return &wire.QueryResponse{Success: false, ErrorMessage: "unsupported operation"}
	}
}

// dispatchPermission handles GRANT_PERMISSION/REVOKE_PERMISSION. The
// QueryRequest envelope has no dedicated fields for these (spec.9's
// AccessControl supplement predates the payload table), so the
// convention is: TableName carries the username, DBName carries the
// object name, and a single UpdateClauses entry carries the permission
// operation name in its Column and the object type in its Literal
// value (typed STRING).
func (c *Context) dispatchPermission(req *wire.QueryRequest) *wire.QueryResponse {
	if len(req.UpdateClauses) != 1 {
		return &wire.QueryResponse{Success: false, ErrorMessage: "grant/revoke: missing permission descriptor"}
	}
	clause := req.UpdateClauses[0]
	opName := clause.Column
	objectType := auth.ObjectType(clause.Value.Value)

	op, ok := parsePermissionOp(opName)
	if !ok {
		return &wire.QueryResponse{Success: false, ErrorMessage: "grant/revoke: unknown permission operation " + opName}
	}

	var err error
	if req.Operation == wire.OpGrantPermission {
		err = c.Users.Grant(req.TableName, op, objectType, req.DBName)
	} else {
		err = c.Users.Revoke(req.TableName, op, objectType, req.DBName)
	}
	return resultOnly(err)
}

func parsePermissionOp(name string) (auth.Op, bool) {
	switch name {
	case "CREATE_DATABASE":
		return auth.OpCreateDatabase, true
	case "DROP_DATABASE":
		return auth.OpDropDatabase, true
	case "SELECT":
		return auth.OpSelect, true
	case "CREATE_TABLE":
		return auth.OpCreateTable, true
	case "DROP_TABLE":
		return auth.OpDropTable, true
	case "INSERT":
		return auth.OpInsert, true
	case "UPDATE":
		return auth.OpUpdate, true
	case "DELETE":
		return auth.OpDelete, true
	case "CREATE_USER":
		return auth.OpCreateUser, true
	case "DROP_USER":
		return auth.OpDropUser, true
	case "GRANT_PERMISSION":
		return auth.OpGrantPermission, true
	case "REVOKE_PERMISSION":
		return auth.OpRevokePermission, true
	default:
		return 0, false
	}
}

func firstInsertValue(values []wire.Literal) string {
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}

func wireColumns(cols []wire.ColumnDef) []engine.Column {
	out := make([]engine.Column, len(cols))
	for i, c := range cols {
		out[i] = engine.Column{Name: c.Name, Type: c.Type, IsPrimary: c.IsPrimary}
	}
	return out
}

func resultOnly(err error) *wire.QueryResponse {
	if err != nil {
		return &wire.QueryResponse{Success: false, ErrorMessage: err.Error()}
	}
	return &wire.QueryResponse{Success: true}
}

// Package auth implements SDSQL's session and authorization layer
// (spec.4.4): credential verification against a user store, session
// token issuance and lookup, and operation x object permission
// evaluation. It corresponds to the source's AccessControl facade,
// recast here as an owned module rather than a pointer into a shared
// core.
package auth

import "github.com/Althra/SDSQL/pkg/bitwise"

// ObjectType is the kind of thing a PermissionRecord governs access to,
// per spec.3's User type. This spec standardizes the CREATE_DATABASE
// object type as DATABASE, resolving spec.9's inconsistent DATABASE-vs-
// SYSTEM spelling across the source's drafts.
type ObjectType string

const (
	ObjectDatabase ObjectType = "DATABASE"
	ObjectTable    ObjectType = "TABLE"
	ObjectSystem   ObjectType = "SYSTEM"
)

// Op is a permission-checkable operation name, distinct from
// wire.Operation: several wire operations (INSERT/SELECT/UPDATE/DELETE)
// map directly, but USE_DATABASE maps to the SELECT permission per
// spec.4.4's table, and AccessControl operations (createUser, grant,
// revoke) have no wire.Operation counterpart for the object they guard.
type Op int

const (
	OpCreateDatabase Op = iota
	OpDropDatabase
	OpSelect
	OpCreateTable
	OpDropTable
	OpInsert
	OpUpdate
	OpDelete
	OpCreateUser
	OpDropUser
	OpGrantPermission
	OpRevokePermission
	numOps
)

func (o Op) String() string {
	switch o {
	case OpCreateDatabase:
		return "CREATE_DATABASE"
	case OpDropDatabase:
		return "DROP_DATABASE"
	case OpSelect:
		return "SELECT"
	case OpCreateTable:
		return "CREATE_TABLE"
	case OpDropTable:
		return "DROP_TABLE"
	case OpInsert:
		return "INSERT"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	case OpCreateUser:
		return "CREATE_USER"
	case OpDropUser:
		return "DROP_USER"
	case OpGrantPermission:
		return "GRANT_PERMISSION"
	case OpRevokePermission:
		return "REVOKE_PERMISSION"
	default:
		return "UNKNOWN"
	}
}

// objectKey identifies one (object_type, object_name) pair a
// PermissionSet tracks a bitmask of allowed Ops for. An empty name is
// the wildcard entry meaning "all objects of that type" per spec.3.
type objectKey struct {
	objectType ObjectType
	objectName string
}

// PermissionSet is a user's full grant of (op, object_type, object_name)
// triples, stored as one bitmask per distinct object, each bit
// addressed via pkg/bitwise rather than a linear scan over a slice of
// triples.
type PermissionSet struct {
	masks map[objectKey]uint64
}

// NewPermissionSet returns an empty permission set.
func NewPermissionSet() *PermissionSet {
	return &PermissionSet{masks: make(map[objectKey]uint64)}
}

// Grant records that op is permitted on (objectType, objectName).
func (p *PermissionSet) Grant(op Op, objectType ObjectType, objectName string) {
	key := objectKey{objectType, objectName}
	p.masks[key] = bitwise.Set(p.masks[key], int(op))
}

// Revoke removes a previously granted permission. A no-op if it was
// never granted.
func (p *PermissionSet) Revoke(op Op, objectType ObjectType, objectName string) {
	key := objectKey{objectType, objectName}
	if mask, ok := p.masks[key]; ok {
		p.masks[key] = bitwise.Unset(mask, int(op))
	}
}

// Allows reports whether op is permitted on (objectType, objectName),
// honoring the wildcard entry (empty object name) per spec.4.4's
// permission-record semantics.
func (p *PermissionSet) Allows(op Op, objectType ObjectType, objectName string) bool {
	if mask, ok := p.masks[objectKey{objectType, objectName}]; ok && bitwise.IsSet(mask, int(op)) {
		return true
	}
	if mask, ok := p.masks[objectKey{objectType, ""}]; ok && bitwise.IsSet(mask, int(op)) {
		return true
	}
	return false
}

// requiredPermission maps a wire.Operation to the (Op, ObjectType) pair
// spec.4.4's table requires for it.
func requiredPermission(op int) (Op, ObjectType, bool) {
	switch op {
	case 0x01: // CREATE_DATABASE
		return OpCreateDatabase, ObjectDatabase, true
	case 0x02: // DROP_DATABASE
		return OpDropDatabase, ObjectDatabase, true
	case 0x03: // USE_DATABASE
		return OpSelect, ObjectDatabase, true
	case 0x04: // CREATE_TABLE
		return OpCreateTable, ObjectTable, true
	case 0x05: // DROP_TABLE
		return OpDropTable, ObjectTable, true
	case 0x14: // ALTER_TABLE_ADD_COLUMN
		return OpCreateTable, ObjectTable, true
	case 0x10: // INSERT
		return OpInsert, ObjectTable, true
	case 0x11: // SELECT
		return OpSelect, ObjectTable, true
	case 0x12: // UPDATE
		return OpUpdate, ObjectTable, true
	case 0x13: // DELETE
		return OpDelete, ObjectTable, true
	case 0x40: // CREATE_USER
		return OpCreateUser, ObjectSystem, true
	case 0x41: // DROP_USER
		return OpDropUser, ObjectSystem, true
	case 0x42: // GRANT_PERMISSION
		return OpGrantPermission, ObjectSystem, true
	case 0x43: // REVOKE_PERMISSION
		return OpRevokePermission, ObjectSystem, true
	default:
		return 0, "", false
	}
}

package wire

import "fmt"

// DataType is the scalar type tag carried on the wire. All values travel
// as strings; typed interpretation happens at comparison or projection
// time in the engine.
type DataType uint8

const (
	TypeInt    DataType = 0x01
	TypeDouble DataType = 0x02
	TypeString DataType = 0x03
	TypeBool   DataType = 0x04
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeDouble:
		return "DOUBLE"
	case TypeString:
		return "STRING"
	case TypeBool:
		return "BOOL"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(t))
	}
}

// ValidDataType reports whether t is one of the four known scalar types.
func ValidDataType(t DataType) bool {
	switch t {
	case TypeInt, TypeDouble, TypeString, TypeBool:
		return true
	default:
		return false
	}
}

// Operation is the 1-byte DDL/DML discriminator inside a QueryRequest.
type Operation uint8

const (
	OpCreateDatabase Operation = 0x01
	OpDropDatabase   Operation = 0x02
	OpUseDatabase    Operation = 0x03
	OpCreateTable    Operation = 0x04
	OpDropTable      Operation = 0x05
	OpInsert         Operation = 0x10
	OpSelect         Operation = 0x11
	OpUpdate         Operation = 0x12
	OpDelete         Operation = 0x13

	// Supplemental operations (schema change, transactions, access
	// control), carried over the same QueryRequest envelope (see
	// SPEC_FULL.md §4.5).
	OpAlterTableAddColumn Operation = 0x14
	OpBeginTransaction    Operation = 0x20
	OpCommit              Operation = 0x21
	OpRollback            Operation = 0x22
	OpCreateUser          Operation = 0x40
	OpDropUser            Operation = 0x41
	OpGrantPermission     Operation = 0x42
	OpRevokePermission    Operation = 0x43
)

func (o Operation) String() string {
	switch o {
	case OpCreateDatabase:
		return "CREATE_DATABASE"
	case OpDropDatabase:
		return "DROP_DATABASE"
	case OpUseDatabase:
		return "USE_DATABASE"
	case OpCreateTable:
		return "CREATE_TABLE"
	case OpDropTable:
		return "DROP_TABLE"
	case OpInsert:
		return "INSERT"
	case OpSelect:
		return "SELECT"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	case OpAlterTableAddColumn:
		return "ALTER_TABLE_ADD_COLUMN"
	case OpBeginTransaction:
		return "BEGIN_TRANSACTION"
	case OpCommit:
		return "COMMIT"
	case OpRollback:
		return "ROLLBACK"
	case OpCreateUser:
		return "CREATE_USER"
	case OpDropUser:
		return "DROP_USER"
	case OpGrantPermission:
		return "GRANT_PERMISSION"
	case OpRevokePermission:
		return "REVOKE_PERMISSION"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(o))
	}
}

// ColumnDef describes one column of a CREATE_TABLE / ALTER_TABLE_ADD_COLUMN
// request.
type ColumnDef struct {
	Name      string
	Type      DataType
	IsPrimary bool
}

func (c ColumnDef) encode(e *Encoder) {
	e.WriteString(c.Name)
	e.WriteU8(uint8(c.Type))
	e.WriteU8(boolToU8(c.IsPrimary))
}

func decodeColumnDef(d *Decoder) (ColumnDef, error) {
	var c ColumnDef
	var err error
	if c.Name, err = d.ReadString(); err != nil {
		return c, err
	}
	t, err := d.ReadU8()
	if err != nil {
		return c, err
	}
	c.Type = DataType(t)
	primary, err := d.ReadU8()
	if err != nil {
		return c, err
	}
	c.IsPrimary = primary != 0
	return c, nil
}

// Literal is a typed scalar value travelling on the wire as a string.
type Literal struct {
	Type  DataType
	Value string
}

func (l Literal) encode(e *Encoder) {
	e.WriteU8(uint8(l.Type))
	e.WriteString(l.Value)
}

func decodeLiteral(d *Decoder) (Literal, error) {
	var l Literal
	t, err := d.ReadU8()
	if err != nil {
		return l, err
	}
	l.Type = DataType(t)
	if l.Value, err = d.ReadString(); err != nil {
		return l, err
	}
	return l, nil
}

// SetClause is one `column = value` assignment inside an UPDATE request.
type SetClause struct {
	Column string
	Value  Literal
}

func (s SetClause) encode(e *Encoder) {
	e.WriteString(s.Column)
	s.Value.encode(e)
}

func decodeSetClause(d *Decoder) (SetClause, error) {
	var s SetClause
	var err error
	if s.Column, err = d.ReadString(); err != nil {
		return s, err
	}
	s.Value, err = decodeLiteral(d)
	return s, err
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

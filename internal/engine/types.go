// Package engine implements SDSQL's in-memory table engine: a catalog of
// databases and tables, DDL/DML operations, a WHERE-expression evaluator,
// ORDER BY, and a per-session write-ahead transaction log with
// commit/rollback, per spec.4.5.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/storage"
	"github.com/Althra/SDSQL/internal/wire"
)

// DataType re-exports wire.DataType so engine code names the same four
// scalar kinds the wire protocol carries, without engine depending on the
// wire package for anything beyond this shared vocabulary.
type DataType = wire.DataType

const (
	TypeInt    = wire.TypeInt
	TypeDouble = wire.TypeDouble
	TypeString = wire.TypeString
	TypeBool   = wire.TypeBool
)

// Column is one column definition of a Table.
type Column struct {
	Name      string
	Type      DataType
	IsPrimary bool
}

// Row is an ordered sequence of string cell values, one per column, in
// declaration order. Typed interpretation happens at comparison/
// projection time (spec.3).
type Row []string

// DefaultValue returns the type-appropriate default used to fill a
// missing cell, per spec.3's Row definition.
func DefaultValue(t DataType) string {
	switch t {
	case TypeString:
		return ""
	case TypeInt:
		return "0"
	case TypeDouble:
		return "0.0"
	case TypeBool:
		return "0"
	default:
		return ""
	}
}

// Table is an in-memory table: its schema plus its rows.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) primaryKeyIndex() int {
	for i, c := range t.Columns {
		if c.IsPrimary {
			return i
		}
	}
	return -1
}

// Database is a mapping of table name to Table.
type Database struct {
	Name   string
	Tables map[string]*Table
}

// Engine owns the process-wide catalog (databases, tables, rows) and the
// pluggable storage backend tables are persisted to. Catalog access is
// guarded by a single writer-exclusive, reader-shared mutex, per spec.5 -
// implementations are free to parallelize over independent clients
// provided the catalog is protected this way.
type Engine struct {
	mu        sync.RWMutex
	databases map[string]*Database
	storage   storage.Backend
	logger    *zap.Logger
}

// New constructs an Engine backed by the given storage.Backend.
func New(backend storage.Backend, logger *zap.Logger) *Engine {
	return &Engine{
		databases: make(map[string]*Database),
		storage:   backend,
		logger:    logger,
	}
}

// DatabaseNames returns the names of every known database, for
// diagnostics.
func (e *Engine) DatabaseNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.databases))
	for name := range e.databases {
		names = append(names, name)
	}
	return names
}

// TableNames returns the names of every table in dbName, or an error if
// the database does not exist.
func (e *Engine) TableNames(dbName string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	db, ok := e.databases[dbName]
	if !ok {
		return nil, ErrDatabaseNotFound
	}
	names := make([]string, 0, len(db.Tables))
	for name := range db.Tables {
		names = append(names, name)
	}
	return names, nil
}

// Package storage defines the persistence contract the query engine
// depends on (spec.6): one directory per database, one metadata+data
// artifact per table, and a transaction-log artifact that exists only
// while a transaction is active. The engine is persistence-agnostic - any
// backend implementing Backend suffices, per spec.6. Two backends are
// provided: memstore (ephemeral, for tests, and used by cmd/sdsql-server
// when no -data-dir is given) and filestore (used by cmd/sdsql-server
// when -data-dir is given).
package storage

import "github.com/Althra/SDSQL/internal/wire"

// ColumnDef mirrors engine.Column without creating an import cycle
// between storage and engine - the engine converts to/from this shape at
// the LoadTable/SaveTable boundary.
type ColumnDef struct {
	Name      string
	Type      wire.DataType
	IsPrimary bool
}

// TableData is the on-disk representation of one table: schema plus rows.
type TableData struct {
	Name    string
	Columns []ColumnDef
	Rows    [][]string
}

// Backend is the storage contract from spec.6. Round-tripping via
// SaveTable followed by LoadTable is required; persisted formats are
// implementation-defined.
type Backend interface {
	// CreateDatabase creates the persistence container for a new,
	// empty database.
	CreateDatabase(dbName string) error

	// DropDatabase removes a database and everything persisted under it.
	DropDatabase(dbName string) error

	// ListTables returns the names of every table persisted under
	// dbName.
	ListTables(dbName string) ([]string, error)

	// LoadTable reads back a table previously written with SaveTable.
	LoadTable(dbName, tableName string) (*TableData, error)

	// SaveTable performs a truncate-and-rewrite of tableName's data
	// file with the given table's current in-memory state, per
	// spec.4.5's chosen commit semantics.
	SaveTable(dbName string, table *TableData) error

	// DropTable removes a table's persisted artifacts.
	DropTable(dbName, tableName string) error

	// CreateLog opens a transaction-log artifact for dbName. It exists
	// only while a transaction is active.
	CreateLog(dbName string) error

	// AppendLog appends one opaque, already-serialized log record to
	// dbName's transaction log.
	AppendLog(dbName string, record []byte) error

	// DeleteLog removes dbName's transaction-log artifact once a
	// transaction has committed or rolled back.
	DeleteLog(dbName string) error
}

// DatabaseLister is an optional capability a Backend may implement to
// let the engine rediscover existing databases at startup. The core
// Backend contract (spec.6) has no such operation - every backend here
// implements it anyway since restoring a catalog across a restart needs
// it, but an engine without this capability simply starts with an empty
// catalog until CREATE_DATABASE populates it; USE_DATABASE only selects
// databases already in the catalog.
type DatabaseLister interface {
	ListDatabases() ([]string, error)
}

// Sentinel errors shared by every Backend implementation.
type NotFoundError struct {
	Kind string // "database" or "table"
	Name string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found: " + e.Name
}

type AlreadyExistsError struct {
	Kind string
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return e.Kind + " already exists: " + e.Name
}

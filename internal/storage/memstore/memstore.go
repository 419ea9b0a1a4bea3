// Package memstore is an ephemeral, in-memory storage.Backend used by
// tests and by servers started without a data directory. It round-trips
// SaveTable/LoadTable through a deep copy, exactly as a file-backed
// engine round-trips through disk.
package memstore

import (
	"sync"

	"github.com/Althra/SDSQL/internal/storage"
)

type database struct {
	tables map[string]*storage.TableData
	logs   [][]byte
	hasLog bool
}

type Backend struct {
	mu        sync.Mutex
	databases map[string]*database
}

// New creates a new in-memory storage backend.
func New() *Backend {
	return &Backend{databases: make(map[string]*database)}
}

func (b *Backend) CreateDatabase(dbName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.databases[dbName]; ok {
		return &storage.AlreadyExistsError{Kind: "database", Name: dbName}
	}
	b.databases[dbName] = &database{tables: make(map[string]*storage.TableData)}
	return nil
}

// ListDatabases implements storage.DatabaseLister.
func (b *Backend) ListDatabases() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.databases))
	for name := range b.databases {
		names = append(names, name)
	}
	return names, nil
}

func (b *Backend) DropDatabase(dbName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.databases[dbName]; !ok {
		return &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	delete(b.databases, dbName)
	return nil
}

func (b *Backend) ListTables(dbName string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, ok := b.databases[dbName]
	if !ok {
		return nil, &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	return names, nil
}

func (b *Backend) LoadTable(dbName, tableName string) (*storage.TableData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, ok := b.databases[dbName]
	if !ok {
		return nil, &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	table, ok := db.tables[tableName]
	if !ok {
		return nil, &storage.NotFoundError{Kind: "table", Name: tableName}
	}
	return deepCopyTable(table), nil
}

func (b *Backend) SaveTable(dbName string, table *storage.TableData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, ok := b.databases[dbName]
	if !ok {
		return &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	db.tables[table.Name] = deepCopyTable(table)
	return nil
}

func (b *Backend) DropTable(dbName, tableName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, ok := b.databases[dbName]
	if !ok {
		return &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	delete(db.tables, tableName)
	return nil
}

func (b *Backend) CreateLog(dbName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, ok := b.databases[dbName]
	if !ok {
		return &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	db.logs = nil
	db.hasLog = true
	return nil
}

func (b *Backend) AppendLog(dbName string, record []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, ok := b.databases[dbName]
	if !ok {
		return &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	cp := make([]byte, len(record))
	copy(cp, record)
	db.logs = append(db.logs, cp)
	return nil
}

func (b *Backend) DeleteLog(dbName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, ok := b.databases[dbName]
	if !ok {
		return &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	db.logs = nil
	db.hasLog = false
	return nil
}

func deepCopyTable(t *storage.TableData) *storage.TableData {
	cols := make([]storage.ColumnDef, len(t.Columns))
	copy(cols, t.Columns)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		rows[i] = r
	}

	return &storage.TableData{Name: t.Name, Columns: cols, Rows: rows}
}

// Package filestore is the default on-disk storage.Backend: one
// directory per database, one data file per table, and a transaction
// log file that exists only while a transaction is active. It is
// grounded on the same directory-per-database layout askorykh-goDB's
// filestore backend uses, but serializes table data with the wire
// package's codec (internal/wire) instead of a second ad-hoc binary
// format, per spec.6's persistence-layout note.
package filestore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/storage"
)

const tableFileSuffix = ".tbl"
const logFileName = "txn.log"

// Backend persists databases as directories under root, each table as
// one tableFileSuffix-suffixed file inside.
type Backend struct {
	mu     sync.Mutex
	root   string
	logger *zap.Logger
}

// New returns a filestore Backend rooted at dir, creating dir if it does
// not already exist.
func New(dir string, logger *zap.Logger) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Backend{root: dir, logger: logger}, nil
}

func (b *Backend) dbDir(dbName string) string {
	return filepath.Join(b.root, dbName)
}

func (b *Backend) tablePath(dbName, tableName string) string {
	return filepath.Join(b.dbDir(dbName), tableName+tableFileSuffix)
}

func (b *Backend) logPath(dbName string) string {
	return filepath.Join(b.dbDir(dbName), logFileName)
}

func (b *Backend) CreateDatabase(dbName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	dir := b.dbDir(dbName)
	if _, err := os.Stat(dir); err == nil {
		return &storage.AlreadyExistsError{Kind: "database", Name: dbName}
	}
	return os.MkdirAll(dir, 0o755)
}

func (b *Backend) DropDatabase(dbName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	dir := b.dbDir(dbName)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	return os.RemoveAll(dir)
}

// ListDatabases implements storage.DatabaseLister by enumerating
// subdirectories of root.
func (b *Backend) ListDatabases() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := os.ReadDir(b.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (b *Backend) ListTables(dbName string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dir := b.dbDir(dbName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &storage.NotFoundError{Kind: "database", Name: dbName}
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), tableFileSuffix) {
			names = append(names, strings.TrimSuffix(e.Name(), tableFileSuffix))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (b *Backend) LoadTable(dbName, tableName string) (*storage.TableData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.tablePath(dbName, tableName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &storage.NotFoundError{Kind: "table", Name: tableName}
		}
		return nil, err
	}
	return decodeTable(data)
}

// SaveTable performs a truncate-and-rewrite of tableName's data file,
// per spec.4.5's chosen commit semantics.
func (b *Backend) SaveTable(dbName string, table *storage.TableData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := os.Stat(b.dbDir(dbName)); os.IsNotExist(err) {
		return &storage.NotFoundError{Kind: "database", Name: dbName}
	}
	return writeFileAtomic(b.tablePath(dbName, table.Name), encodeTable(table))
}

func (b *Backend) DropTable(dbName, tableName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.tablePath(dbName, tableName))
	if os.IsNotExist(err) {
		return &storage.NotFoundError{Kind: "table", Name: tableName}
	}
	return err
}

func (b *Backend) CreateLog(dbName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return writeFileAtomic(b.logPath(dbName), nil)
}

func (b *Backend) AppendLog(dbName string, record []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.OpenFile(b.logPath(dbName), os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(record)
	return err
}

func (b *Backend) DeleteLog(dbName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.logPath(dbName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

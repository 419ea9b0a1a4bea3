package engine

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// LogEntryKind tags the variant of a LogEntry, per spec.3's transaction
// log record.
type LogEntryKind int

const (
	LogInsert LogEntryKind = iota + 1
	LogUpdate
	LogDelete
)

// LogEntry is one undo record appended to a Transaction's log in
// execution order. Rollback replays the log in reverse.
type LogEntry struct {
	Kind     LogEntryKind
	Table    string
	RowIndex int // meaningful for LogUpdate only
	OldRow   Row // LogUpdate, LogDelete
	NewRow   Row // LogInsert, LogUpdate
}

// Transaction is a session's write-ahead undo log, per spec.4.5. Only one
// may be active per session.
type Transaction struct {
	ID     int
	Active bool
	Log    []LogEntry
}

// Session is the per-connection mutable state the engine threads through
// every DDL/DML call: the selected database and, optionally, an open
// transaction. Ownership lives with the caller (internal/server), never
// shared across connections, per spec.5.
type Session struct {
	CurrentDatabase string
	Txn             *Transaction
	nextTxnID       int
}

// NewSession returns a freshly logged-in session with no database
// selected and no active transaction.
func NewSession() *Session {
	return &Session{}
}

// BeginTransaction opens a new transaction, per spec.4.5's begin_transaction.
func (s *Session) BeginTransaction() error {
	if s.Txn != nil && s.Txn.Active {
		return ErrTxnAlreadyActive
	}
	if s.CurrentDatabase == "" {
		return ErrNoDatabaseSelected
	}
	s.nextTxnID++
	s.Txn = &Transaction{ID: s.nextTxnID, Active: true}
	return nil
}

// logAppend appends an undo record to the session's active transaction,
// if one is open. It is a no-op outside a transaction.
func (s *Session) logAppend(entry LogEntry) {
	if s.Txn != nil && s.Txn.Active {
		s.Txn.Log = append(s.Txn.Log, entry)
	}
}

// Commit persists every table of the session's current database and
// clears the transaction log, per spec.4.5's commit semantics
// (truncate-and-rewrite, the reference design's choice per spec.9's open
// question on commit semantics).
func (e *Engine) Commit(s *Session) error {
	if s.Txn == nil || !s.Txn.Active {
		return ErrTxnNotActive
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	db, err := e.databaseLocked(s.CurrentDatabase)
	if err != nil {
		return err
	}

	var persistErr error
	for _, table := range db.Tables {
		if err := e.storage.SaveTable(db.Name, toTableData(table)); err != nil {
			persistErr = multierr.Append(persistErr, err)
			e.logger.Error("commit: table persistence failed",
				zap.String("database", db.Name), zap.String("table", table.Name), zap.Error(err))
		}
	}

	s.Txn.Active = false
	s.Txn.Log = nil

	if persistErr != nil {
		return &CommitPersistenceError{Cause: persistErr}
	}
	return nil
}

// Rollback undoes every logged change in reverse order and marks the
// transaction inactive, per spec.4.5's rollback semantics.
func (e *Engine) Rollback(s *Session) error {
	if s.Txn == nil || !s.Txn.Active {
		return ErrTxnNotActive
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	db, err := e.databaseLocked(s.CurrentDatabase)
	if err != nil {
		return err
	}

	log := s.Txn.Log
	for i := len(log) - 1; i >= 0; i-- {
		entry := log[i]
		table, ok := db.Tables[entry.Table]
		if !ok {
			continue
		}
		switch entry.Kind {
		case LogInsert:
			undoInsert(table, entry.NewRow)
		case LogDelete:
			table.Rows = append(table.Rows, entry.OldRow)
		case LogUpdate:
			if entry.RowIndex >= 0 && entry.RowIndex < len(table.Rows) {
				table.Rows[entry.RowIndex] = entry.OldRow
			}
		}
	}

	s.Txn.Active = false
	s.Txn.Log = nil
	return nil
}

// undoInsert removes the last row equal to row (scanning from the end),
// matching the most recent insert of that exact value.
func undoInsert(table *Table, row Row) {
	for i := len(table.Rows) - 1; i >= 0; i-- {
		if rowsEqual(table.Rows[i], row) {
			table.Rows = append(table.Rows[:i], table.Rows[i+1:]...)
			return
		}
	}
}

func rowsEqual(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CommitPersistenceError reports that a transaction committed its
// in-memory state but one or more tables failed to persist, per spec.4.5
// - the session is warned that on-disk state may be inconsistent with
// the committed intent.
type CommitPersistenceError struct {
	Cause error
}

func (e *CommitPersistenceError) Error() string {
	return "commit: table persistence failed, in-memory state committed but on-disk state may be stale: " + e.Cause.Error()
}

func (e *CommitPersistenceError) Unwrap() error { return e.Cause }

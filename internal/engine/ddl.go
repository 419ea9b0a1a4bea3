package engine

import "go.uber.org/zap"

// CreateDatabase registers a new, empty database and provisions its
// storage container, per spec.4.5's CREATE_DATABASE operation.
func (e *Engine) CreateDatabase(dbName string) error {
	if dbName == "" {
		return ErrEmptyDatabaseName
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.databases[dbName]; ok {
		return ErrDatabaseAlreadyExists
	}
	if err := e.storage.CreateDatabase(dbName); err != nil {
		return err
	}
	e.databases[dbName] = &Database{Name: dbName, Tables: make(map[string]*Table)}
	e.logger.Info("database created", zap.String("database", dbName))
	return nil
}

// DropDatabase removes a database and everything persisted under it, per
// spec.4.5's DROP_DATABASE operation. If dbName was s's current database,
// that slot is cleared.
func (e *Engine) DropDatabase(s *Session, dbName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.databases[dbName]; !ok {
		return ErrDatabaseNotFound
	}
	if err := e.storage.DropDatabase(dbName); err != nil {
		return err
	}
	delete(e.databases, dbName)
	if s.CurrentDatabase == dbName {
		s.CurrentDatabase = ""
	}
	e.logger.Info("database dropped", zap.String("database", dbName))
	return nil
}

// databaseLocked returns the named database, holding e.mu already locked
// by the caller (read or write).
func (e *Engine) databaseLocked(dbName string) (*Database, error) {
	db, ok := e.databases[dbName]
	if !ok {
		return nil, ErrDatabaseNotFound
	}
	return db, nil
}

// CreateTable adds a new table to s's current database, per spec.4.5's
// CREATE_TABLE operation. At most one column may be marked primary.
func (e *Engine) CreateTable(s *Session, tableName string, columns []Column) error {
	if tableName == "" {
		return ErrEmptyTableName
	}
	if len(columns) == 0 {
		return ErrEmptyColumns
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	db, err := e.currentDatabaseLocked(s)
	if err != nil {
		return err
	}
	if _, ok := db.Tables[tableName]; ok {
		return ErrTableAlreadyExists
	}
	if primaryCount(columns) > 1 {
		return ErrTooManyPrimaryKeys
	}

	cols := make([]Column, len(columns))
	copy(cols, columns)
	table := &Table{Name: tableName, Columns: cols, Rows: nil}

	if err := e.storage.SaveTable(db.Name, toTableData(table)); err != nil {
		return err
	}
	db.Tables[tableName] = table
	e.logger.Info("table created", zap.String("database", db.Name), zap.String("table", tableName))
	return nil
}

func primaryCount(columns []Column) int {
	n := 0
	for _, c := range columns {
		if c.IsPrimary {
			n++
		}
	}
	return n
}

// DropTable removes a table and its persisted artifacts from s's current
// database, per spec.4.5's DROP_TABLE operation.
func (e *Engine) DropTable(s *Session, tableName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, err := e.currentDatabaseLocked(s)
	if err != nil {
		return err
	}
	if _, ok := db.Tables[tableName]; !ok {
		return ErrTableNotFound
	}
	if err := e.storage.DropTable(db.Name, tableName); err != nil {
		return err
	}
	delete(db.Tables, tableName)
	e.logger.Info("table dropped", zap.String("database", db.Name), zap.String("table", tableName))
	return nil
}

// AlterTableAddColumn appends a new, non-primary column to an existing
// table in s's current database and backfills every existing row with
// the column's type default. ALTER_TABLE_ADD_COLUMN resolves spec.9's
// open question on schema evolution: it is the only supported ALTER
// form.
func (e *Engine) AlterTableAddColumn(s *Session, tableName string, col Column) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, err := e.currentDatabaseLocked(s)
	if err != nil {
		return err
	}
	table, ok := db.Tables[tableName]
	if !ok {
		return ErrTableNotFound
	}
	if table.columnIndex(col.Name) != -1 {
		return ErrColumnAlreadyExists
	}
	if col.IsPrimary {
		col.IsPrimary = false
	}

	table.Columns = append(table.Columns, col)
	def := DefaultValue(col.Type)
	for i, row := range table.Rows {
		table.Rows[i] = append(row, def)
	}

	if err := e.storage.SaveTable(db.Name, toTableData(table)); err != nil {
		return err
	}
	e.logger.Info("column added", zap.String("database", db.Name), zap.String("table", tableName), zap.String("column", col.Name))
	return nil
}

// currentDatabaseLocked returns s's selected database. Caller must hold
// e.mu.
func (e *Engine) currentDatabaseLocked(s *Session) (*Database, error) {
	if s.CurrentDatabase == "" {
		return nil, ErrNoDatabaseSelected
	}
	return e.databaseLocked(s.CurrentDatabase)
}

// UseDatabase selects dbName as the session's current database and
// eagerly reloads every one of its tables from storage, per spec.4.5's
// USE_DATABASE operation.
func (e *Engine) UseDatabase(s *Session, dbName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, err := e.databaseLocked(dbName)
	if err != nil {
		return err
	}

	tableNames, err := e.storage.ListTables(dbName)
	if err != nil {
		return err
	}
	reloaded := make(map[string]*Table, len(tableNames))
	for _, tn := range tableNames {
		td, err := e.storage.LoadTable(dbName, tn)
		if err != nil {
			return err
		}
		reloaded[tn] = fromTableData(td)
	}
	db.Tables = reloaded

	s.CurrentDatabase = dbName
	return nil
}

// LoadDatabases hydrates the in-memory catalog from storage at startup,
// reading back every table the backend already knows about for each
// database name the caller supplies (the server obtains this list from
// the backend's optional storage.DatabaseLister capability, since
// storage.Backend itself exposes no ListDatabases).
func (e *Engine) LoadDatabases(dbNames []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, dbName := range dbNames {
		tableNames, err := e.storage.ListTables(dbName)
		if err != nil {
			return err
		}
		db := &Database{Name: dbName, Tables: make(map[string]*Table)}
		for _, tn := range tableNames {
			td, err := e.storage.LoadTable(dbName, tn)
			if err != nil {
				return err
			}
			db.Tables[tn] = fromTableData(td)
		}
		e.databases[dbName] = db
	}
	return nil
}

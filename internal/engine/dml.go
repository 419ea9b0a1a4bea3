package engine

import "github.com/Althra/SDSQL/internal/wire"

// Insert adds one row to tableName within s.CurrentDatabase, per spec.4.5's
// INSERT operation. When insertColumns is non-empty, values are matched
// to columns by name (a column map); an empty insertColumns means
// positional, matching declaration order, with missing trailing columns
// filled from DefaultValue. Either form rejects a row whose primary-key
// value already exists in the table.
func (e *Engine) Insert(s *Session, tableName string, values []wire.Literal, insertColumns []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.lookupTableLocked(s, tableName)
	if err != nil {
		return err
	}

	var row Row
	if len(insertColumns) > 0 {
		row, err = buildMappedRow(table, insertColumns, values)
	} else {
		row, err = buildPositionalRow(table, values)
	}
	if err != nil {
		return err
	}

	if pkIdx := table.primaryKeyIndex(); pkIdx != -1 {
		for _, existing := range table.Rows {
			if existing[pkIdx] == row[pkIdx] {
				return ErrDuplicatePrimaryKey
			}
		}
	}

	table.Rows = append(table.Rows, row)
	s.logAppend(LogEntry{Kind: LogInsert, Table: tableName, NewRow: row})
	return nil
}

func buildPositionalRow(table *Table, values []wire.Literal) (Row, error) {
	if len(values) > len(table.Columns) {
		return nil, ErrColumnCountMismatch
	}
	row := make(Row, len(table.Columns))
	for i, c := range table.Columns {
		if i < len(values) {
			row[i] = values[i].Value
		} else {
			row[i] = DefaultValue(c.Type)
		}
	}
	return row, nil
}

func buildMappedRow(table *Table, columns []string, values []wire.Literal) (Row, error) {
	if len(columns) != len(values) {
		return nil, ErrColumnCountMismatch
	}
	row := make(Row, len(table.Columns))
	for i, c := range table.Columns {
		row[i] = DefaultValue(c.Type)
	}
	for i, name := range columns {
		idx := table.columnIndex(name)
		if idx == -1 {
			return nil, ErrUnknownColumn
		}
		row[idx] = values[i].Value
	}
	return row, nil
}

// Update overwrites the named columns on every row matching whereExpr,
// per spec.4.5's UPDATE operation. Assignment columns that don't exist on
// the table are silently skipped and reported as a warning rather than
// failing the whole statement.
func (e *Engine) Update(s *Session, tableName string, clauses []wire.SetClause, whereExpr string) (affected uint32, warning string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.lookupTableLocked(s, tableName)
	if err != nil {
		return 0, "", err
	}

	conds, joiners, err := parseWhere(whereExpr)
	if err != nil {
		return 0, "", ErrWhereSyntax
	}

	type assignment struct {
		idx   int
		value string
	}
	var assigns []assignment
	for _, c := range clauses {
		idx := table.columnIndex(c.Column)
		if idx == -1 {
			warning = "update: unknown column skipped: " + c.Column
			continue
		}
		assigns = append(assigns, assignment{idx: idx, value: c.Value.Value})
	}

	for i, row := range table.Rows {
		if !matchRow(table, row, conds, joiners) {
			continue
		}
		oldRow := make(Row, len(row))
		copy(oldRow, row)
		for _, a := range assigns {
			row[a.idx] = a.value
		}
		table.Rows[i] = row
		s.logAppend(LogEntry{Kind: LogUpdate, Table: tableName, RowIndex: i, OldRow: oldRow, NewRow: row})
		affected++
	}
	return affected, warning, nil
}

// Delete removes every row matching whereExpr, per spec.4.5's DELETE
// operation, and returns the number of rows removed.
func (e *Engine) Delete(s *Session, tableName string, whereExpr string) (affected uint32, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.lookupTableLocked(s, tableName)
	if err != nil {
		return 0, err
	}

	conds, joiners, err := parseWhere(whereExpr)
	if err != nil {
		return 0, ErrWhereSyntax
	}

	kept := table.Rows[:0:0]
	for _, row := range table.Rows {
		if matchRow(table, row, conds, joiners) {
			s.logAppend(LogEntry{Kind: LogDelete, Table: tableName, OldRow: row})
			affected++
			continue
		}
		kept = append(kept, row)
	}
	table.Rows = kept
	return affected, nil
}

// lookupTableLocked resolves tableName within s.CurrentDatabase. Caller
// must hold e.mu.
func (e *Engine) lookupTableLocked(s *Session, tableName string) (*Table, error) {
	if s.CurrentDatabase == "" {
		return nil, ErrNoDatabaseSelected
	}
	db, ok := e.databases[s.CurrentDatabase]
	if !ok {
		return nil, ErrDatabaseNotFound
	}
	table, ok := db.Tables[tableName]
	if !ok {
		return nil, ErrTableNotFound
	}
	return table, nil
}

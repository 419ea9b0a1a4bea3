package engine

import (
	"sort"
	"strconv"
)

// SelectResult is the outcome of a SELECT, carrying an optional
// non-fatal warning (unknown ORDER BY column, per spec.4.5) alongside
// the projected rows.
type SelectResult struct {
	ColumnNames []string
	Rows        [][]string
	Warning     string
}

// Select evaluates whereExpr against every row of tableName, optionally
// sorts by orderByColumn, and projects selectColumns (all columns, in
// table order, when selectColumns is empty), per spec.4.5's SELECT
// operation.
func (e *Engine) Select(s *Session, tableName string, selectColumns []string, whereExpr, orderByColumn string) (*SelectResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	table, err := e.lookupTableLocked(s, tableName)
	if err != nil {
		return nil, err
	}

	conds, joiners, err := parseWhere(whereExpr)
	if err != nil {
		return nil, ErrWhereSyntax
	}

	var matched []Row
	for _, row := range table.Rows {
		if matchRow(table, row, conds, joiners) {
			matched = append(matched, row)
		}
	}

	var warning string
	if orderByColumn != "" {
		idx := table.columnIndex(orderByColumn)
		if idx == -1 {
			warning = "select: unknown order-by column, results unsorted: " + orderByColumn
		} else {
			sortRows(matched, idx, table.Columns[idx].Type)
		}
	}

	colNames, colIdx := projectionColumns(table, selectColumns)

	rows := make([][]string, len(matched))
	for i, row := range matched {
		cells := make([]string, len(colIdx))
		for j, idx := range colIdx {
			cells[j] = row[idx]
		}
		rows[i] = cells
	}

	return &SelectResult{ColumnNames: colNames, Rows: rows, Warning: warning}, nil
}

// projectionColumns resolves the SELECT list (all columns, in table
// order, when selected is empty) to the output column names and their
// source indexes in table order.
func projectionColumns(table *Table, selected []string) (names []string, indexes []int) {
	if len(selected) == 0 {
		names = make([]string, len(table.Columns))
		indexes = make([]int, len(table.Columns))
		for i, c := range table.Columns {
			names[i] = c.Name
			indexes[i] = i
		}
		return names, indexes
	}

	for _, name := range selected {
		idx := table.columnIndex(name)
		if idx == -1 {
			continue
		}
		names = append(names, name)
		indexes = append(indexes, idx)
	}
	return names, indexes
}

// sortRows sorts rows ascending by the column at idx: numeric comparison
// for INT/DOUBLE (a failed parse sorts as if false, i.e. not-less-than),
// lexicographic otherwise, per spec.4.5's ORDER BY semantics.
func sortRows(rows []Row, idx int, colType DataType) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][idx], rows[j][idx]
		switch colType {
		case TypeInt:
			av, aerr := strconv.ParseInt(a, 10, 64)
			bv, berr := strconv.ParseInt(b, 10, 64)
			if aerr != nil || berr != nil {
				return false
			}
			return av < bv
		case TypeDouble:
			av, aerr := strconv.ParseFloat(a, 64)
			bv, berr := strconv.ParseFloat(b, 64)
			if aerr != nil || berr != nil {
				return false
			}
			return av < bv
		default:
			return a < b
		}
	})
}

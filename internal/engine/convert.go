package engine

import "github.com/Althra/SDSQL/internal/storage"

// toTableData converts a Table to its storage.Backend representation.
// The engine owns this conversion so storage stays ignorant of engine
// types, avoiding an import cycle.
func toTableData(t *Table) *storage.TableData {
	cols := make([]storage.ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = storage.ColumnDef{Name: c.Name, Type: c.Type, IsPrimary: c.IsPrimary}
	}
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = []string(r)
	}
	return &storage.TableData{Name: t.Name, Columns: cols, Rows: rows}
}

func fromTableData(td *storage.TableData) *Table {
	cols := make([]Column, len(td.Columns))
	for i, c := range td.Columns {
		cols[i] = Column{Name: c.Name, Type: c.Type, IsPrimary: c.IsPrimary}
	}
	rows := make([]Row, len(td.Rows))
	for i, r := range td.Rows {
		rows[i] = Row(r)
	}
	return &Table{Name: td.Name, Columns: cols, Rows: rows}
}

package wire

// QueryRequest is the envelope for every DDL/DML/transaction operation.
// Only the fields relevant to Operation are populated; the rest travel as
// their zero value and cost four empty-length bytes each on the wire.
//
// WhereExpr carries the full AND/OR comparison grammar described in
// spec.4.5 as a single string - a compound condition such as
// "age = 25 AND name != 'Alice'" (spec S3) cannot be represented by one
// column/operator/literal triple, so the string form is what actually
// rides the wire.
//
// OrderByColumn and RowsAffected-adjacent fields needed by spec.4.5's
// engine contract but absent from spec.4.2's literal payload table (order
// by column name for SELECT) are appended after the where clause rather
// than threaded through a separate message type.
type QueryRequest struct {
	Operation      Operation
	SessionToken   string
	DBName         string
	TableName      string
	Columns        []ColumnDef
	SelectColumns  []string
	InsertValues   []Literal
	InsertColumns  []string // parallel to InsertValues when a column map was used; empty means positional
	UpdateClauses  []SetClause
	HasWhere       bool
	WhereExpr      string
	OrderByColumn  string
}

func (m *QueryRequest) Type() MessageType { return TypeQueryRequest }

func (m *QueryRequest) encodePayload(e *Encoder) {
	e.WriteU8(uint8(m.Operation))
	e.WriteString(m.SessionToken)
	e.WriteString(m.DBName)
	e.WriteString(m.TableName)

	e.WriteU32(uint32(len(m.Columns)))
	for _, c := range m.Columns {
		c.encode(e)
	}

	e.WriteU32(uint32(len(m.SelectColumns)))
	for _, s := range m.SelectColumns {
		e.WriteString(s)
	}

	e.WriteU32(uint32(len(m.InsertValues)))
	for _, v := range m.InsertValues {
		v.encode(e)
	}

	e.WriteU32(uint32(len(m.InsertColumns)))
	for _, c := range m.InsertColumns {
		e.WriteString(c)
	}

	e.WriteU32(uint32(len(m.UpdateClauses)))
	for _, c := range m.UpdateClauses {
		c.encode(e)
	}

	e.WriteU8(boolToU8(m.HasWhere))
	if m.HasWhere {
		e.WriteString(m.WhereExpr)
	}

	e.WriteString(m.OrderByColumn)
}

func (m *QueryRequest) decodePayload(d *Decoder) error {
	op, err := d.ReadU8()
	if err != nil {
		return err
	}
	m.Operation = Operation(op)

	if m.SessionToken, err = d.ReadString(); err != nil {
		return err
	}
	if m.DBName, err = d.ReadString(); err != nil {
		return err
	}
	if m.TableName, err = d.ReadString(); err != nil {
		return err
	}

	nCols, err := d.ReadU32()
	if err != nil {
		return err
	}
	m.Columns = make([]ColumnDef, 0, nCols)
	for i := uint32(0); i < nCols; i++ {
		c, err := decodeColumnDef(d)
		if err != nil {
			return err
		}
		m.Columns = append(m.Columns, c)
	}

	nSelect, err := d.ReadU32()
	if err != nil {
		return err
	}
	m.SelectColumns = make([]string, 0, nSelect)
	for i := uint32(0); i < nSelect; i++ {
		s, err := d.ReadString()
		if err != nil {
			return err
		}
		m.SelectColumns = append(m.SelectColumns, s)
	}

	nInsert, err := d.ReadU32()
	if err != nil {
		return err
	}
	m.InsertValues = make([]Literal, 0, nInsert)
	for i := uint32(0); i < nInsert; i++ {
		v, err := decodeLiteral(d)
		if err != nil {
			return err
		}
		m.InsertValues = append(m.InsertValues, v)
	}

	nInsertCols, err := d.ReadU32()
	if err != nil {
		return err
	}
	// InsertColumns stays nil when none were sent, so a positional
	// insert round-trips unchanged.
	if nInsertCols > 0 {
		m.InsertColumns = make([]string, 0, nInsertCols)
	}
	for i := uint32(0); i < nInsertCols; i++ {
		s, err := d.ReadString()
		if err != nil {
			return err
		}
		m.InsertColumns = append(m.InsertColumns, s)
	}

	nUpdate, err := d.ReadU32()
	if err != nil {
		return err
	}
	m.UpdateClauses = make([]SetClause, 0, nUpdate)
	for i := uint32(0); i < nUpdate; i++ {
		c, err := decodeSetClause(d)
		if err != nil {
			return err
		}
		m.UpdateClauses = append(m.UpdateClauses, c)
	}

	hasWhere, err := d.ReadU8()
	if err != nil {
		return err
	}
	m.HasWhere = hasWhere != 0
	if m.HasWhere {
		if m.WhereExpr, err = d.ReadString(); err != nil {
			return err
		}
	}

	m.OrderByColumn, err = d.ReadString()
	return err
}

// QueryResponse carries either a tabular result (success) or an error
// message (failure). RowsAffected and Warning extend spec.4.2's literal
// payload table to carry the affected-row counts (spec S1/S2) and
// non-fatal warnings (spec.4.5's "silently skipped with a warning" /
// "unknown order_by yields unsorted results plus a warning" cases)
// without inventing a second response message type.
type QueryResponse struct {
	Success      bool
	ColumnNames  []string
	Rows         [][]string
	RowsAffected uint32
	Warning      string
	ErrorMessage string
}

func (m *QueryResponse) Type() MessageType { return TypeQueryResponse }

func (m *QueryResponse) encodePayload(e *Encoder) {
	e.WriteU8(boolToU8(m.Success))
	if !m.Success {
		e.WriteString(m.ErrorMessage)
		return
	}

	e.WriteU32(uint32(len(m.ColumnNames)))
	for _, c := range m.ColumnNames {
		e.WriteString(c)
	}

	e.WriteU32(uint32(len(m.Rows)))
	for _, row := range m.Rows {
		e.WriteU32(uint32(len(row)))
		for _, cell := range row {
			e.WriteString(cell)
		}
	}

	e.WriteU32(m.RowsAffected)

	hasWarning := m.Warning != ""
	e.WriteU8(boolToU8(hasWarning))
	if hasWarning {
		e.WriteString(m.Warning)
	}
}

func (m *QueryResponse) decodePayload(d *Decoder) error {
	success, err := d.ReadU8()
	if err != nil {
		return err
	}
	m.Success = success != 0

	if !m.Success {
		m.ErrorMessage, err = d.ReadString()
		return err
	}

	nCols, err := d.ReadU32()
	if err != nil {
		return err
	}
	m.ColumnNames = make([]string, 0, nCols)
	for i := uint32(0); i < nCols; i++ {
		s, err := d.ReadString()
		if err != nil {
			return err
		}
		m.ColumnNames = append(m.ColumnNames, s)
	}

	nRows, err := d.ReadU32()
	if err != nil {
		return err
	}
	m.Rows = make([][]string, 0, nRows)
	for i := uint32(0); i < nRows; i++ {
		nCells, err := d.ReadU32()
		if err != nil {
			return err
		}
		row := make([]string, 0, nCells)
		for j := uint32(0); j < nCells; j++ {
			s, err := d.ReadString()
			if err != nil {
				return err
			}
			row = append(row, s)
		}
		m.Rows = append(m.Rows, row)
	}

	if m.RowsAffected, err = d.ReadU32(); err != nil {
		return err
	}

	hasWarning, err := d.ReadU8()
	if err != nil {
		return err
	}
	if hasWarning != 0 {
		m.Warning, err = d.ReadString()
		if err != nil {
			return err
		}
	}

	return nil
}

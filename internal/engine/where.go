package engine

import (
	"strconv"
	"strings"
)

// condition is a single `column operator value` comparison parsed out of
// a WHERE expression.
type condition struct {
	column   string
	operator string
	value    string
}

var comparisonOperators = []string{">=", "<=", "!=", "=", ">", "<"}

// parseWhere splits a WHERE expression on top-level AND/OR per spec.4.5 -
// no parentheses, left-to-right, uniform precedence - and parses each
// side into a condition. An empty expression is valid and matches every
// row (spec.4.5's empty-WHERE edge case).
func parseWhere(expr string) (conds []condition, joiners []string, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil, nil
	}

	tokens := splitLogical(expr)
	for i, tok := range tokens {
		if i%2 == 1 {
			joiners = append(joiners, strings.ToUpper(tok))
			continue
		}
		c, err := parseCondition(tok)
		if err != nil {
			return nil, nil, err
		}
		conds = append(conds, c)
	}
	if len(conds) == 0 || len(conds) != len(joiners)+1 {
		return nil, nil, ErrWhereSyntax
	}
	return conds, joiners, nil
}

// splitLogical tokenizes expr into conditions interleaved with AND/OR
// joiners, splitting only outside single-quoted string literals so a
// literal containing the word "and" is never mistaken for a joiner.
func splitLogical(expr string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	words := strings.Fields(expr)

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			tokens = append(tokens, s)
		}
		cur.Reset()
	}

	for _, w := range words {
		upper := strings.ToUpper(w)
		if !inQuote && (upper == "AND" || upper == "OR") {
			flush()
			tokens = append(tokens, upper)
			continue
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
		inQuote = strings.Count(cur.String(), "'")%2 == 1
	}
	flush()
	return tokens
}

func parseCondition(tok string) (condition, error) {
	for _, op := range comparisonOperators {
		idx := strings.Index(tok, op)
		if idx == -1 {
			continue
		}
		col := strings.TrimSpace(tok[:idx])
		val := strings.TrimSpace(tok[idx+len(op):])
		val = strings.Trim(val, "'")
		if col == "" {
			return condition{}, ErrWhereSyntax
		}
		return condition{column: col, operator: op, value: val}, nil
	}
	return condition{}, ErrWhereSyntax
}

// matchRow evaluates a parsed WHERE expression against one row. A
// reference to a column that does not exist on the table makes that
// condition false (spec.4.5's missing-column edge case) rather than an
// error, so AND/OR short-circuiting still behaves sensibly.
func matchRow(table *Table, row Row, conds []condition, joiners []string) bool {
	if len(conds) == 0 {
		return true
	}

	result := evalCondition(table, row, conds[0])
	for i, joiner := range joiners {
		next := evalCondition(table, row, conds[i+1])
		if joiner == "AND" {
			result = result && next
		} else {
			result = result || next
		}
	}
	return result
}

func evalCondition(table *Table, row Row, c condition) bool {
	idx := table.columnIndex(c.column)
	if idx == -1 {
		return false
	}
	cellVal := row[idx]
	colType := table.Columns[idx].Type

	switch colType {
	case TypeBool:
		if c.operator != "=" && c.operator != "!=" {
			return false
		}
		lhs := cellVal == "1" || strings.EqualFold(cellVal, "true")
		rhs := c.value == "1" || strings.EqualFold(c.value, "true")
		if c.operator == "=" {
			return lhs == rhs
		}
		return lhs != rhs
	case TypeInt:
		lhs, errL := strconv.ParseInt(cellVal, 10, 64)
		rhs, errR := strconv.ParseInt(c.value, 10, 64)
		if errL != nil || errR != nil {
			return false
		}
		return compareOrdered(c.operator, lhs < rhs, lhs == rhs, lhs > rhs)
	case TypeDouble:
		lhs, errL := strconv.ParseFloat(cellVal, 64)
		rhs, errR := strconv.ParseFloat(c.value, 64)
		if errL != nil || errR != nil {
			return false
		}
		return compareOrdered(c.operator, lhs < rhs, lhs == rhs, lhs > rhs)
	default: // TypeString
		return compareOrdered(c.operator, cellVal < c.value, cellVal == c.value, cellVal > c.value)
	}
}

func compareOrdered(op string, lt, eq, gt bool) bool {
	switch op {
	case "=":
		return eq
	case "!=":
		return !eq
	case ">":
		return gt
	case "<":
		return lt
	case ">=":
		return gt || eq
	case "<=":
		return lt || eq
	default:
		return false
	}
}

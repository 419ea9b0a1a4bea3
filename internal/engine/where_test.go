package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseWhere_Empty(t *testing.T) {
	conds, joiners, err := parseWhere("")
	require.NoError(t, err)
	require.Nil(t, conds)
	require.Nil(t, joiners)
}

func TestParseWhere_SingleCondition(t *testing.T) {
	conds, joiners, err := parseWhere("age >= 18")
	require.NoError(t, err)
	require.Len(t, conds, 1)
	require.Empty(t, joiners)
	require.Equal(t, condition{column: "age", operator: ">=", value: "18"}, conds[0])
}

func TestParseWhere_QuotedStringNotSplitOnAnd(t *testing.T) {
	conds, joiners, err := parseWhere("name = 'Anderson'")
	require.NoError(t, err)
	require.Len(t, conds, 1)
	require.Empty(t, joiners)
	require.Equal(t, "Anderson", conds[0].value)
}

func TestParseWhere_Malformed(t *testing.T) {
	_, _, err := parseWhere("age AND")
	require.ErrorIs(t, err, ErrWhereSyntax)
}

func TestMatchRow_EmptyConditionMatchesAll(t *testing.T) {
	table := &Table{Columns: []Column{{Name: "id", Type: TypeInt}}}
	require.True(t, matchRow(table, Row{"1"}, nil, nil))
}

func TestEvalCondition_MissingColumnIsFalse(t *testing.T) {
	table := &Table{Columns: []Column{{Name: "id", Type: TypeInt}}}
	got := evalCondition(table, Row{"1"}, condition{column: "nope", operator: "=", value: "1"})
	require.False(t, got)
}

func TestEvalCondition_BoolRejectsOrderingOperators(t *testing.T) {
	table := &Table{Columns: []Column{{Name: "active", Type: TypeBool}}}
	require.False(t, evalCondition(table, Row{"1"}, condition{column: "active", operator: ">", value: "0"}))
}

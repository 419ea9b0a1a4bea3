package engine

import (
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/Althra/SDSQL/internal/wire"
)

// TestEngine_PrimaryKeyUniqueness_Property inserts gofakeit-generated
// rows, some with deliberately colliding ids, and asserts the multiset
// of PK values in the table is always a set (testable property 5).
func TestEngine_PrimaryKeyUniqueness_Property(t *testing.T) {
	e := newTestEngine(t)
	s := NewSession()
	setupUsersTable(t, e, s)

	seen := map[string]bool{}
	attempted, inserted := 0, 0
	for i := 0; i < 50; i++ {
		id := strconv.Itoa(gofakeit.Number(1, 10))
		name := gofakeit.FirstName()
		age := strconv.Itoa(gofakeit.Number(18, 90))
		attempted++

		err := e.Insert(s, "users", []wire.Literal{
			{Type: wire.TypeInt, Value: id}, {Type: wire.TypeString, Value: name}, {Type: wire.TypeInt, Value: age},
		}, nil)
		if seen[id] {
			require.ErrorIs(t, err, ErrDuplicatePrimaryKey)
			continue
		}
		require.NoError(t, err)
		seen[id] = true
		inserted++
	}

	result, err := e.Select(s, "users", nil, "", "")
	require.NoError(t, err)
	require.Len(t, result.Rows, inserted)

	ids := map[string]bool{}
	for _, row := range result.Rows {
		require.False(t, ids[row[0]], "duplicate primary key value found in table")
		ids[row[0]] = true
	}
}

// TestEngine_RowWidth_Property checks every row's width equals the
// table's column count after a sequence of inserts (testable property 6).
func TestEngine_RowWidth_Property(t *testing.T) {
	e := newTestEngine(t)
	s := NewSession()
	setupUsersTable(t, e, s)

	for i := 0; i < 20; i++ {
		_ = e.Insert(s, "users", []wire.Literal{{Type: wire.TypeInt, Value: strconv.Itoa(i)}}, nil)
	}

	result, err := e.Select(s, "users", nil, "", "")
	require.NoError(t, err)
	for _, row := range result.Rows {
		require.Len(t, row, 3)
	}
}

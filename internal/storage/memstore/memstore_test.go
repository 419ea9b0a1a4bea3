package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Althra/SDSQL/internal/storage"
	"github.com/Althra/SDSQL/internal/wire"
)

func TestBackend_CreateDatabase_Duplicate(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateDatabase("d1"))
	assert.ErrorAs(t, b.CreateDatabase("d1"), new(*storage.AlreadyExistsError))
}

func TestBackend_SaveLoadTable_RoundTrip(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateDatabase("d1"))

	table := &storage.TableData{
		Name:    "t1",
		Columns: []storage.ColumnDef{{Name: "id", Type: wire.TypeInt, IsPrimary: true}},
		Rows:    [][]string{{"1"}, {"2"}},
	}
	require.NoError(t, b.SaveTable("d1", table))

	got, err := b.LoadTable("d1", "t1")
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestBackend_SaveTable_IsIsolatedFromCallerMutation(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateDatabase("d1"))

	table := &storage.TableData{Name: "t1", Rows: [][]string{{"1"}}}
	require.NoError(t, b.SaveTable("d1", table))

	table.Rows[0][0] = "mutated"

	got, err := b.LoadTable("d1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.Rows[0][0])
}

func TestBackend_ListTables(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateDatabase("d1"))
	require.NoError(t, b.SaveTable("d1", &storage.TableData{Name: "a"}))
	require.NoError(t, b.SaveTable("d1", &storage.TableData{Name: "b"}))

	names, err := b.ListTables("d1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestBackend_DropDatabase_RemovesTables(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateDatabase("d1"))
	require.NoError(t, b.SaveTable("d1", &storage.TableData{Name: "a"}))
	require.NoError(t, b.DropDatabase("d1"))

	_, err := b.ListTables("d1")
	assert.ErrorAs(t, err, new(*storage.NotFoundError))
}

func TestBackend_Log_AppendAndDelete(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateDatabase("d1"))
	require.NoError(t, b.CreateLog("d1"))
	require.NoError(t, b.AppendLog("d1", []byte("entry")))
	require.NoError(t, b.DeleteLog("d1"))
}

func TestBackend_ListDatabases(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateDatabase("d1"))
	require.NoError(t, b.CreateDatabase("d2"))

	names, err := b.ListDatabases()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"d1", "d2"}, names)
}

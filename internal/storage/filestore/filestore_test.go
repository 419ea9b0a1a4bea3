package filestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/storage"
	"github.com/Althra/SDSQL/internal/wire"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(filepath.Join(t.TempDir(), "data"), zap.NewNop())
	require.NoError(t, err)
	return b
}

func TestBackend_SaveLoadTable_RoundTrip(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.CreateDatabase("d1"))

	table := &storage.TableData{
		Name: "t1",
		Columns: []storage.ColumnDef{
			{Name: "id", Type: wire.TypeInt, IsPrimary: true},
			{Name: "name", Type: wire.TypeString},
		},
		Rows: [][]string{{"1", "Alice"}, {"2", "Bob"}},
	}
	require.NoError(t, b.SaveTable("d1", table))

	got, err := b.LoadTable("d1", "t1")
	require.NoError(t, err)
	require.Equal(t, table, got)
}

func TestBackend_SaveTable_TruncateAndRewrite(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.CreateDatabase("d1"))

	require.NoError(t, b.SaveTable("d1", &storage.TableData{Name: "t1", Rows: [][]string{{"1"}, {"2"}, {"3"}}}))
	require.NoError(t, b.SaveTable("d1", &storage.TableData{Name: "t1", Rows: [][]string{{"9"}}}))

	got, err := b.LoadTable("d1", "t1")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"9"}}, got.Rows)
}

func TestBackend_LoadTable_NotFound(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.CreateDatabase("d1"))

	_, err := b.LoadTable("d1", "nope")
	require.ErrorAs(t, err, new(*storage.NotFoundError))
}

func TestBackend_ListTablesAndDatabases(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.CreateDatabase("d1"))
	require.NoError(t, b.SaveTable("d1", &storage.TableData{Name: "a"}))
	require.NoError(t, b.SaveTable("d1", &storage.TableData{Name: "b"}))

	tables, err := b.ListTables("d1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, tables)

	dbs, err := b.ListDatabases()
	require.NoError(t, err)
	require.Equal(t, []string{"d1"}, dbs)
}

func TestBackend_DropDatabase_RemovesEverything(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.CreateDatabase("d1"))
	require.NoError(t, b.SaveTable("d1", &storage.TableData{Name: "t1"}))
	require.NoError(t, b.DropDatabase("d1"))

	dbs, err := b.ListDatabases()
	require.NoError(t, err)
	require.Empty(t, dbs)
}

func TestBackend_Log_CreateAppendDelete(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.CreateDatabase("d1"))
	require.NoError(t, b.CreateLog("d1"))
	require.NoError(t, b.AppendLog("d1", []byte("row-1")))
	require.NoError(t, b.AppendLog("d1", []byte("row-2")))
	require.NoError(t, b.DeleteLog("d1"))
	require.NoError(t, b.DeleteLog("d1")) // idempotent
}

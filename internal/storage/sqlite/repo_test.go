package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nl2sql/internal/dataset"
	"nl2sql/internal/ddl"
	"nl2sql/internal/storage"
)

func testConn(t *testing.T) dataset.Conn {
	t.Helper()
	return dataset.Conn{Kind: "sqlite", Params: map[string]string{"dir": filepath.Join(t.TempDir(), "stores")}}
}

func crimeDef() ddl.TableDef {
	return ddl.TableDef{FQN: "crime_data", Columns: []ddl.ColumnDef{
		{Name: "id", Type: ddl.TypeInteger},
		{Name: "date", Type: ddl.TypeTimestamp, Nullable: true},
		{Name: "arrest", Type: ddl.TypeBoolean},
		{Name: "block", Type: ddl.TypeText, Nullable: true},
	}}
}

func countRows(t *testing.T, path, table string) int {
	t.Helper()
	db, err := openDB(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "`+table+`"`).Scan(&n))
	return n
}

func tableNames(t *testing.T, path string) []string {
	t.Helper()
	db, err := openDB(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	return out
}

func TestEnsureDatabaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := testConn(t)

	a, err := storage.NewAdmin(ctx, conn)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.EnsureDatabase(ctx, "crimes"))
	require.NoError(t, a.EnsureDatabase(ctx, "crimes"))
	assert.FileExists(t, Path(conn, "crimes"))
}

func TestReplaceTableRoundTrip(t *testing.T) {
	storage.Logf = func(string, ...any) {}
	ctx := context.Background()
	conn := testConn(t)

	a, err := storage.NewAdmin(ctx, conn)
	require.NoError(t, err)
	require.NoError(t, a.EnsureDatabase(ctx, "crimes"))

	repo, err := storage.New(ctx, storage.Config{Conn: conn, Database: "crimes", BatchSize: 2})
	require.NoError(t, err)
	defer repo.Close()

	ts := time.Date(2015, 9, 5, 13, 30, 0, 0, time.UTC)
	rows := [][]any{
		{int64(1), ts, true, "043XX S WOOD ST"},
		{int64(2), nil, false, nil},
		{int64(3), ts, false, "008XX N CENTRAL AVE"},
	}
	n, err := repo.ReplaceTable(ctx, crimeDef(), rows)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// A second replacement substitutes the contents rather than appending.
	n, err = repo.ReplaceTable(ctx, crimeDef(), rows[:1])
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	path := Path(conn, "crimes")
	assert.Equal(t, 1, countRows(t, path, "crime_data"))
	assert.Equal(t, []string{"crime_data"}, tableNames(t, path))

	db, err := openDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	var (
		got    time.Time
		arrest bool
	)
	require.NoError(t, db.QueryRow(`SELECT "date", "arrest" FROM crime_data`).Scan(&got, &arrest))
	assert.True(t, got.Equal(ts))
	assert.True(t, arrest)
}

func TestReplaceTableFailureLeavesTarget(t *testing.T) {
	storage.Logf = func(string, ...any) {}
	ctx := context.Background()
	conn := testConn(t)

	a, err := storage.NewAdmin(ctx, conn)
	require.NoError(t, err)
	require.NoError(t, a.EnsureDatabase(ctx, "crimes"))

	repo, err := storage.New(ctx, storage.Config{Conn: conn, Database: "crimes"})
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.ReplaceTable(ctx, crimeDef(), [][]any{{int64(1), nil, true, "a"}})
	require.NoError(t, err)

	// NOT NULL violation on "id" aborts the load.
	_, err = repo.ReplaceTable(ctx, crimeDef(), [][]any{{nil, nil, true, "b"}})
	require.Error(t, err)

	path := Path(conn, "crimes")
	assert.Equal(t, 1, countRows(t, path, "crime_data"))
	assert.Equal(t, []string{"crime_data"}, tableNames(t, path))
}

func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotPath string
	newRepository = func(_ context.Context, path string, _ int) (storage.Repository, error) {
		gotPath = path
		return nil, sql.ErrConnDone
	}

	conn := dataset.Conn{Kind: "sqlite", Params: map[string]string{"dir": "/data"}}
	_, err := storage.New(context.Background(), storage.Config{Conn: conn, Database: "happiness"})
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.Equal(t, filepath.Join("/data", "happiness.db"), gotPath)
}

func TestDSN(t *testing.T) {
	_, err := DSN(" ")
	require.Error(t, err)

	dsn, err := DSN("/tmp/x.db")
	require.NoError(t, err)
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "busy_timeout")
}

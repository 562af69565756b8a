package storage

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nl2sql/internal/ddl"
)

type testDialect struct{ maxParams int }

func (testDialect) QuoteIdent(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
func (testDialect) MapType(t ddl.Type) string  { return strings.ToUpper(string(t)) }
func (testDialect) Placeholder(int) string     { return "?" }
func (d testDialect) MaxParams() int           { return d.maxParams }
func (testDialect) Swap(ctx context.Context, db *sql.DB, stage, target string) error {
	_, err := db.ExecContext(ctx, "SWAP "+stage+" "+target)
	return err
}

func TestSQLStager_InsertChunksByParamLimit(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	s := &SQLStager{DB: db, Dialect: testDialect{maxParams: 4}}
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "t" ("a", "b") VALUES (?, ?), (?, ?)`).
		WithArgs(1, "x", 2, "y").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "t" ("a", "b") VALUES (?, ?)`).
		WithArgs(3, nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	def := ddl.TableDef{FQN: "t", Columns: []ddl.ColumnDef{{Name: "a"}, {Name: "b"}}}
	n, err := s.CopyFn(def)(context.Background(), def.Names(), [][]any{{1, "x"}, {2, "y"}, {3, nil}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStager_InsertRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := &SQLStager{DB: db, Dialect: testDialect{maxParams: 100}}
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO`).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err = s.CopyFn(ddl.TableDef{FQN: "t"})(context.Background(), []string{"a"}, [][]any{{1}})
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_ReplaceTable(t *testing.T) {
	quiet(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	def := ddl.TableDef{FQN: "crime_data", Columns: []ddl.ColumnDef{{Name: "id", Type: ddl.TypeInteger}}}
	mock.ExpectExec(`CREATE TABLE "crime_data__stage_[0-9a-f]{12}" \(`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "crime_data__stage_[0-9a-f]{12}"`).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`SWAP crime_data__stage_[0-9a-f]{12} crime_data`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	repo := NewSQLRepository(db, testDialect{maxParams: 10}, 10)
	n, err := repo.ReplaceTable(context.Background(), def, [][]any{{7}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	repo.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepository_CreateFailureDropsStage(t *testing.T) {
	quiet(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	def := ddl.TableDef{FQN: "crime_data", Columns: []ddl.ColumnDef{{Name: "id", Type: ddl.TypeInteger}}}
	mock.ExpectExec(`CREATE TABLE`).WillReturnError(sql.ErrTxDone)
	mock.ExpectExec(`DROP TABLE IF EXISTS "crime_data__stage_`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = NewSQLRepository(db, testDialect{maxParams: 10}, 10).ReplaceTable(context.Background(), def, nil)
	require.ErrorIs(t, err, sql.ErrTxDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"nl2sql/internal/ddl"
)

// Dialect supplies the SQL differences between database/sql backends.
type Dialect interface {
	ddl.Renderer
	// Placeholder returns the bind marker for the 1-based parameter i.
	Placeholder(i int) string
	// MaxParams bounds the bind parameters in a single statement.
	MaxParams() int
	// Swap replaces target with stage.
	Swap(ctx context.Context, db *sql.DB, stage, target string) error
}

// BulkCopier is implemented by dialects with a native bulk load path, used
// instead of multi-row INSERT.
type BulkCopier interface {
	BulkCopy(ctx context.Context, db *sql.DB, table string, columns []string, rows [][]any) (int64, error)
}

// SQLStager implements Stager over database/sql.
type SQLStager struct {
	DB      *sql.DB
	Dialect Dialect
}

var _ Stager = (*SQLStager)(nil)

func (s *SQLStager) CreateStage(ctx context.Context, def ddl.TableDef) error {
	stmt, err := ddl.BuildCreateTableSQL(def, s.Dialect)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, stmt)
	return err
}

func (s *SQLStager) DropStage(ctx context.Context, name string) error {
	_, err := s.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+ddl.QuoteFQN(s.Dialect, name))
	return err
}

func (s *SQLStager) Swap(ctx context.Context, stage, target string) error {
	return s.Dialect.Swap(ctx, s.DB, stage, target)
}

func (s *SQLStager) CopyFn(stage ddl.TableDef) CopyFn {
	if bc, ok := s.Dialect.(BulkCopier); ok {
		return func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return bc.BulkCopy(ctx, s.DB, stage.FQN, columns, rows)
		}
	}
	return func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return s.insertRows(ctx, stage.FQN, columns, rows)
	}
}

// insertRows writes rows in one transaction using multi-row INSERTs sized to
// the dialect's parameter limit.
func (s *SQLStager) insertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("insert: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	perStmt := s.Dialect.MaxParams() / len(columns)
	if perStmt < 1 {
		perStmt = 1
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	var total int64
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		stmt, args, err := s.insertSQL(table, columns, rows[start:end])
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		} else {
			total += int64(end - start)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func (s *SQLStager) insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = s.Dialect.QuoteIdent(c)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", ddl.QuoteFQN(s.Dialect, table), strings.Join(quoted, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("insert: row has %d values, want %d", len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.Dialect.Placeholder(p))
			p++
		}
		b.WriteByte(')')
		args = append(args, row...)
	}
	return b.String(), args, nil
}

// sqlRepository is the Repository shared by the database/sql backends.
type sqlRepository struct {
	stager    *SQLStager
	batchSize int
}

// NewSQLRepository returns a Repository that replaces tables in db with the
// stage-and-swap strategy of d. Close closes db.
func NewSQLRepository(db *sql.DB, d Dialect, batchSize int) Repository {
	return &sqlRepository{stager: &SQLStager{DB: db, Dialect: d}, batchSize: batchSize}
}

func (r *sqlRepository) ReplaceTable(ctx context.Context, def ddl.TableDef, rows [][]any) (int64, error) {
	return Replace(ctx, r.stager, def, rows, r.batchSize)
}

func (r *sqlRepository) Close() { _ = r.stager.DB.Close() }

package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	mssql "github.com/microsoft/go-mssqldb"

	coreddl "nl2sql/internal/ddl"
	"nl2sql/internal/storage"
	msddl "nl2sql/internal/storage/mssql/ddl"
)

// maxParams stays below the 2100 parameters SQL Server accepts per request.
const maxParams = 2000

// Dialect implements storage.Dialect and storage.BulkCopier for SQL Server.
type Dialect struct {
	msddl.Renderer
}

var _ storage.BulkCopier = Dialect{}

func (Dialect) Placeholder(i int) string { return "@p" + strconv.Itoa(i) }
func (Dialect) MaxParams() int           { return maxParams }

// Swap drops target and renames stage in one transaction.
func (d Dialect) Swap(ctx context.Context, db *sql.DB, stage, target string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+coreddl.QuoteFQN(d, target)); err != nil {
		return fmt.Errorf("drop target: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "EXEC sp_rename @p1, @p2", stage, storage.LastSegment(target)); err != nil {
		return fmt.Errorf("rename stage: %w", err)
	}
	return tx.Commit()
}

// BulkCopy streams rows into table with the TDS bulk load protocol.
func (d Dialect) BulkCopy(ctx context.Context, db *sql.DB, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(coreddl.QuoteFQN(d, table), mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// sqlOpen is a test hook for sql.Open.
var sqlOpen = sql.Open

func openDB(ctx context.Context, conn storage.Config) (*sql.DB, error) {
	dsn, err := DSN(conn.Conn, conn.Database)
	if err != nil {
		return nil, err
	}
	db, err := sqlOpen("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// NewRepository connects to cfg.Database.
func NewRepository(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewSQLRepository(db, Dialect{}, cfg.BatchSize), nil
}

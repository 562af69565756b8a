package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"nl2sql/internal/storage"
	sqliteddl "nl2sql/internal/storage/sqlite/ddl"
)

// maxParams matches SQLITE_MAX_VARIABLE_NUMBER of the bundled engine.
const maxParams = 32766

// Dialect implements storage.Dialect for SQLite.
type Dialect struct {
	sqliteddl.Renderer
}

func (Dialect) Placeholder(int) string { return "?" }
func (Dialect) MaxParams() int         { return maxParams }

// Swap drops target and renames stage in one transaction.
func (d Dialect) Swap(ctx context.Context, db *sql.DB, stage, target string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+d.QuoteIdent(storage.LastSegment(target))); err != nil {
		return fmt.Errorf("drop target: %w", err)
	}
	rename := fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
		d.QuoteIdent(storage.LastSegment(stage)), d.QuoteIdent(storage.LastSegment(target)))
	if _, err := tx.ExecContext(ctx, rename); err != nil {
		return fmt.Errorf("rename stage: %w", err)
	}
	return tx.Commit()
}

// openDB opens and pings the database file at path.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn, err := DSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// A single connection serializes writers on the file lock.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	return db, nil
}

// NewRepository opens the store file at path.
func NewRepository(ctx context.Context, path string, batchSize int) (storage.Repository, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return storage.NewSQLRepository(db, Dialect{}, batchSize), nil
}

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"nl2sql/internal/storage"
	myddl "nl2sql/internal/storage/mysql/ddl"
)

// maxParams stays below the protocol's 65535 placeholders per statement.
const maxParams = 60000

// Dialect implements storage.Dialect for MySQL.
type Dialect struct {
	myddl.Renderer
}

func (Dialect) Placeholder(int) string { return "?" }
func (Dialect) MaxParams() int         { return maxParams }

// Swap uses a multi-table RENAME TABLE, which MySQL applies atomically. DDL
// is not transactional in MySQL, so the previous table is renamed away in
// the same statement and dropped afterwards.
func (d Dialect) Swap(ctx context.Context, db *sql.DB, stage, target string) error {
	exists, err := tableExists(ctx, db, storage.LastSegment(target))
	if err != nil {
		return err
	}
	qStage, qTarget := d.quote(stage), d.quote(target)
	if !exists {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("RENAME TABLE %s TO %s", qStage, qTarget)); err != nil {
			return fmt.Errorf("rename stage: %w", err)
		}
		return nil
	}

	retired := strings.Replace(stage, "__stage_", "__old_", 1)
	rename := fmt.Sprintf("RENAME TABLE %s TO %s, %s TO %s", qTarget, d.quote(retired), qStage, qTarget)
	if _, err := db.ExecContext(ctx, rename); err != nil {
		return fmt.Errorf("rename swap: %w", err)
	}
	// The swap is already committed, so the retired table is dropped even if
	// ctx was canceled meanwhile.
	cctx, cancel := storage.CleanupContext(ctx)
	defer cancel()
	if _, err := db.ExecContext(cctx, "DROP TABLE IF EXISTS "+d.quote(retired)); err != nil {
		// The new table is already live; a leftover retired table is only
		// reported.
		storage.Logf("mysql: drop retired table %s: %v", retired, err)
	}
	return nil
}

func (d Dialect) quote(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
		table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return n > 0, nil
}

// sqlOpen is a test hook for sql.Open.
var sqlOpen = sql.Open

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sqlOpen("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return db, nil
}

// NewRepository connects to database on the server described by cfg.Conn.
func NewRepository(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := openDB(ctx, DSN(cfg.Conn, cfg.Database))
	if err != nil {
		return nil, err
	}
	return storage.NewSQLRepository(db, Dialect{}, cfg.BatchSize), nil
}

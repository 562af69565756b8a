package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"nl2sql/internal/dataset"
	"nl2sql/internal/storage"
)

// admin holds a server-level connection.
type admin struct {
	db *sql.DB
}

// EnsureDatabase issues CREATE DATABASE IF NOT EXISTS.
func (a *admin) EnsureDatabase(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", (Dialect{}).QuoteIdent(name))
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

func (a *admin) Close() { _ = a.db.Close() }

// NewAdmin opens a server-level connection without selecting a database.
func NewAdmin(ctx context.Context, conn dataset.Conn) (storage.Admin, error) {
	db, err := openDB(ctx, DSN(conn, ""))
	if err != nil {
		return nil, err
	}
	return &admin{db: db}, nil
}

func init() {
	storage.Register("mysql", storage.Backend{
		Open:          NewRepository,
		OpenAdmin:     NewAdmin,
		ConcurrentDDL: true,
	})
}

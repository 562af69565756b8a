package mssql

import (
	"context"
	"database/sql"
	"fmt"

	"nl2sql/internal/dataset"
	"nl2sql/internal/storage"
)

type admin struct {
	db *sql.DB
}

// EnsureDatabase creates name when DB_ID does not resolve it.
func (a *admin) EnsureDatabase(ctx context.Context, name string) error {
	const stmt = "IF DB_ID(@p1) IS NULL EXEC('CREATE DATABASE ' + QUOTENAME(@p1))"
	if _, err := a.db.ExecContext(ctx, stmt, name); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

func (a *admin) Close() { _ = a.db.Close() }

// NewAdmin connects without selecting a database.
func NewAdmin(ctx context.Context, conn dataset.Conn) (storage.Admin, error) {
	db, err := openDB(ctx, storage.Config{Conn: conn})
	if err != nil {
		return nil, err
	}
	return &admin{db: db}, nil
}

func init() {
	storage.Register("mssql", storage.Backend{
		Open:          NewRepository,
		OpenAdmin:     NewAdmin,
		ConcurrentDDL: true,
	})
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"nl2sql/internal/dataset"
	"nl2sql/internal/storage"
)

// duplicateDatabase is SQLSTATE 42P04, raised when a concurrent CREATE
// DATABASE won the race.
const duplicateDatabase = "42P04"

// Admin creates databases through the maintenance database.
type Admin struct {
	pool pool
}

// NewAdmin connects to the admin_db param (default "postgres").
func NewAdmin(ctx context.Context, conn dataset.Conn) (*Admin, error) {
	p, err := newPool(ctx, DSN(conn, conn.Param(ParamAdminDB, DefaultAdminDB)))
	if err != nil {
		return nil, err
	}
	return &Admin{pool: p}, nil
}

// EnsureDatabase creates name unless pg_database already lists it. Postgres
// has no CREATE DATABASE IF NOT EXISTS.
func (a *Admin) EnsureDatabase(ctx context.Context, name string) error {
	var one int
	err := a.pool.QueryRow(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", name).Scan(&one)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lookup database %s: %w", name, err)
	}
	if _, err := a.pool.Exec(ctx, "CREATE DATABASE "+renderer.QuoteIdent(name)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == duplicateDatabase {
			return nil
		}
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

// Close releases the admin pool.
func (a *Admin) Close() { a.pool.Close() }

func init() {
	storage.Register("postgres", storage.Backend{
		Open: func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
			r, err := NewRepository(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		OpenAdmin: func(ctx context.Context, conn dataset.Conn) (storage.Admin, error) {
			a, err := NewAdmin(ctx, conn)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		ConcurrentDDL: true,
	})
}

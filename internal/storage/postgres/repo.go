package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	coreddl "nl2sql/internal/ddl"
	"nl2sql/internal/storage"
	pgddl "nl2sql/internal/storage/postgres/ddl"
)

// pool is the subset of *pgxpool.Pool used here.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Close()
}

var _ pool = (*pgxpool.Pool)(nil)

// newPool is a test hook; it connects and pings.
var newPool = func(ctx context.Context, dsn string) (pool, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return p, nil
}

var renderer = pgddl.Renderer{}

// Repository replaces tables in one Postgres database.
type Repository struct {
	pool      pool
	batchSize int
}

var (
	_ storage.Repository = (*Repository)(nil)
	_ storage.Stager     = (*Repository)(nil)
)

// NewRepository connects to cfg.Database.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	p, err := newPool(ctx, DSN(cfg.Conn, cfg.Database))
	if err != nil {
		return nil, err
	}
	return &Repository{pool: p, batchSize: cfg.BatchSize}, nil
}

// ReplaceTable implements storage.Repository.
func (r *Repository) ReplaceTable(ctx context.Context, def coreddl.TableDef, rows [][]any) (int64, error) {
	return storage.Replace(ctx, r, def, rows, r.batchSize)
}

// Close implements storage.Repository.
func (r *Repository) Close() { r.pool.Close() }

// CreateStage implements storage.Stager.
func (r *Repository) CreateStage(ctx context.Context, def coreddl.TableDef) error {
	stmt, err := coreddl.BuildCreateTableSQL(def, renderer)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, stmt)
	return err
}

// CopyFn implements storage.Stager using COPY FROM STDIN.
func (r *Repository) CopyFn(stage coreddl.TableDef) storage.CopyFn {
	ident := pgx.Identifier(strings.Split(stage.FQN, "."))
	return func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		n, err := r.pool.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Detail != "" {
				return n, fmt.Errorf("copy into %s: %s (%s): %w", stage.FQN, pgErr.Detail, pgErr.SQLState(), err)
			}
			return n, fmt.Errorf("copy into %s: %w", stage.FQN, err)
		}
		return n, nil
	}
}

// Swap implements storage.Stager. DDL is transactional in Postgres, so
// readers see either the old table or the new one.
func (r *Repository) Swap(ctx context.Context, stage, target string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+coreddl.QuoteFQN(renderer, target)); err != nil {
		return fmt.Errorf("drop target: %w", err)
	}
	rename := fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
		coreddl.QuoteFQN(renderer, stage), renderer.QuoteIdent(storage.LastSegment(target)))
	if _, err := tx.Exec(ctx, rename); err != nil {
		return fmt.Errorf("rename stage: %w", err)
	}
	return tx.Commit(ctx)
}

// DropStage implements storage.Stager.
func (r *Repository) DropStage(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, "DROP TABLE IF EXISTS "+coreddl.QuoteFQN(renderer, name))
	return err
}

package sqlite

import (
	"context"
	"fmt"
	"os"

	"nl2sql/internal/dataset"
	"nl2sql/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// admin creates store files under one directory.
type admin struct {
	conn dataset.Conn
}

// EnsureDatabase creates the store file if absent. Opening an existing file
// leaves its tables untouched.
func (a *admin) EnsureDatabase(ctx context.Context, name string) error {
	db, err := openDB(ctx, Path(a.conn, name))
	if err != nil {
		return err
	}
	return db.Close()
}

func (a *admin) Close() {}

func init() {
	storage.Register("sqlite", storage.Backend{
		Open: func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
			return newRepository(ctx, Path(cfg.Conn, cfg.Database), cfg.BatchSize)
		},
		OpenAdmin: func(_ context.Context, conn dataset.Conn) (storage.Admin, error) {
			dir := conn.Param("dir", DefaultDir)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: create dir %s: %w", dir, err)
			}
			return &admin{conn: conn}, nil
		},
	})
}

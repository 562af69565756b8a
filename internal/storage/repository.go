// Package storage contains the storage-agnostic contracts used by the
// provisioner and the loader, the backend registry, and the stage-and-swap
// replace shared by every backend.
//
// Backends register themselves from init(); importing
// nl2sql/internal/storage/all makes every built-in kind available.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"nl2sql/internal/dataset"
	"nl2sql/internal/ddl"
)

// Repository writes whole tables into one database.
type Repository interface {
	// ReplaceTable substitutes def.FQN with exactly rows (aligned to
	// def.Columns). Readers observe either the previous table or the new
	// one, never a partial write. It returns the number of rows written.
	ReplaceTable(ctx context.Context, def ddl.TableDef, rows [][]any) (int64, error)
	Close()
}

// Admin is an administrative connection able to create databases.
type Admin interface {
	// EnsureDatabase creates the database if it does not exist and is a
	// no-op otherwise.
	EnsureDatabase(ctx context.Context, name string) error
	Close()
}

// Config carries the resolved settings for opening a Repository.
type Config struct {
	Conn     dataset.Conn
	Database string
	// BatchSize bounds the rows per staging insert; <= 0 uses DefaultBatchSize.
	BatchSize int
}

// DefaultBatchSize is used when Config.BatchSize is unset.
const DefaultBatchSize = 1000

// Backend is the set of constructors a storage kind registers.
type Backend struct {
	Open      func(ctx context.Context, cfg Config) (Repository, error)
	OpenAdmin func(ctx context.Context, conn dataset.Conn) (Admin, error)
	// ConcurrentDDL reports whether several tables of one database may be
	// replaced at the same time.
	ConcurrentDDL bool
}

var (
	regMu    sync.RWMutex
	backends = map[string]Backend{}
)

// Register registers (or replaces) the backend for kind. It is typically
// called from backend packages' init() functions.
func Register(kind string, b Backend) {
	regMu.Lock()
	defer regMu.Unlock()
	backends[kind] = b
}

// Lookup returns the backend registered for kind.
func Lookup(kind string) (Backend, error) {
	regMu.RLock()
	b, ok := backends[kind]
	regMu.RUnlock()
	if !ok {
		return Backend{}, fmt.Errorf("storage kind %q: %w", kind, dataset.ErrUnknownBackend)
	}
	return b, nil
}

// New opens a Repository for cfg.Conn.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	b, err := Lookup(cfg.Conn.Kind)
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return b.Open(ctx, cfg)
}

// NewAdmin opens an administrative connection for conn.Kind.
func NewAdmin(ctx context.Context, conn dataset.Conn) (Admin, error) {
	b, err := Lookup(conn.Kind)
	if err != nil {
		return nil, err
	}
	return b.OpenAdmin(ctx, conn)
}

// ListKinds returns the registered storage kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

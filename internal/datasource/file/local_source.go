// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"nl2sql/internal/dataset"
	"nl2sql/internal/datasource"
)

var _ datasource.Source = (*Local)(nil)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a new Local data source bound to the provided filesystem
// path. The returned value is safe for concurrent use by multiple goroutines
// as long as the underlying path location is valid for concurrent reads.
func NewLocal(path string) *Local { return &Local{path: path} }

// Resolve joins rel onto base and returns a Local bound to the absolute
// result. An absolute rel ignores base.
func Resolve(base, rel string) *Local {
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, rel)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return NewLocal(filepath.Clean(p))
}

// Path returns the resolved path.
func (l *Local) Path() string { return l.path }

// Check verifies that the path exists and is a regular file. A missing path
// yields *dataset.SourceNotFoundError.
func (l *Local) Check() error {
	fi, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &dataset.SourceNotFoundError{Path: l.path, Err: err}
		}
		return fmt.Errorf("stat %s: %w", l.path, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("source %s is a directory", l.path)
	}
	return nil
}

// Open opens the configured path for reading and returns an io.ReadCloser.
//
// Behavior:
//   - If the context is already canceled or its deadline exceeded at the time
//     of the call, Open returns the context error immediately without touching
//     the filesystem.
//   - A missing file yields *dataset.SourceNotFoundError, which still matches
//     errors.Is(err, os.ErrNotExist).
//   - Any other filesystem error is wrapped with the path for context.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &dataset.SourceNotFoundError{Path: l.path, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

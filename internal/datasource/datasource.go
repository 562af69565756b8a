// Package datasource defines how the loader obtains the bytes of a source
// file.
package datasource

import (
	"context"
	"io"
)

// Source is an openable input. Path reports the resolved location used in
// error messages.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Path() string
}

// Package sqlite implements the SQLite backend: one database file per store
// under a shared directory.
package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"nl2sql/internal/dataset"
)

// DefaultDir holds the store files when the connection sets no "dir" param.
const DefaultDir = "."

// Path returns the database file of store name.
func Path(conn dataset.Conn, name string) string {
	return filepath.Join(conn.Param("dir", DefaultDir), name+".db")
}

// DSN builds the modernc.org/sqlite connection string for a file path.
// Writers wait on a busy database instead of failing immediately.
func DSN(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("sqlite: path must not be empty")
	}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + path + "?" + q.Encode(), nil
}

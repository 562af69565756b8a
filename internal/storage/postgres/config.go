// Package postgres implements the Postgres backend using pgx v5: staging
// tables are filled with COPY and swapped in with a transactional rename.
package postgres

import (
	"net"
	"net/url"
	"strconv"

	"nl2sql/internal/dataset"
)

const (
	// DefaultPort is used when the connection sets none.
	DefaultPort = 5432
	// DefaultAdminDB is the maintenance database used to create stores.
	DefaultAdminDB = "postgres"
	// ParamAdminDB overrides DefaultAdminDB; it is not sent to the server.
	ParamAdminDB = "admin_db"
)

// DSN builds a postgres:// URL for database on conn. Connection params
// (sslmode, application_name, ...) become query parameters.
func DSN(conn dataset.Conn, database string) string {
	port := conn.Port
	if port == 0 {
		port = DefaultPort
	}
	q := url.Values{}
	for k, v := range conn.Params {
		if k == ParamAdminDB {
			continue
		}
		q.Set(k, v)
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(conn.Host, strconv.Itoa(port)),
		Path:     "/" + database,
		RawQuery: q.Encode(),
	}
	if conn.User != "" {
		u.User = url.UserPassword(conn.User, conn.Password)
	}
	return u.String()
}

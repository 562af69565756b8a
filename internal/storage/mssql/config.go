// Package mssql implements the SQL Server backend: staging tables are filled
// with the go-mssqldb bulk copy API and swapped in with sp_rename.
package mssql

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/microsoft/go-mssqldb/msdsn"

	"nl2sql/internal/dataset"
)

// DefaultPort is used when the connection sets none.
const DefaultPort = 1433

// DSN builds a sqlserver:// URL for database on conn and validates it with
// the driver's parser. An empty database connects to the login's default.
func DSN(conn dataset.Conn, database string) (string, error) {
	port := conn.Port
	if port == 0 {
		port = DefaultPort
	}
	q := url.Values{}
	for k, v := range conn.Params {
		q.Set(k, v)
	}
	if database != "" {
		q.Set("database", database)
	}
	u := url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(conn.Host, strconv.Itoa(port)),
		RawQuery: q.Encode(),
	}
	if conn.User != "" {
		u.User = url.UserPassword(conn.User, conn.Password)
	}
	dsn := u.String()
	if _, err := msdsn.Parse(dsn); err != nil {
		return "", fmt.Errorf("mssql dsn: %w", err)
	}
	return dsn, nil
}

// Package mysql implements the MySQL backend: one database per store on a
// shared server.
package mysql

import (
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"nl2sql/internal/dataset"
)

// DefaultPort is used when the connection sets none.
const DefaultPort = 3306

// DSN builds a go-sql-driver DSN for database on conn. An empty database
// yields a server-level connection for administrative statements. Extra
// connection params are passed through as driver params.
func DSN(conn dataset.Conn, database string) string {
	port := conn.Port
	if port == 0 {
		port = DefaultPort
	}
	cfg := mysql.NewConfig()
	cfg.User = conn.User
	cfg.Passwd = conn.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(conn.Host, strconv.Itoa(port))
	cfg.DBName = database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	for k, v := range conn.Params {
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params[k] = v
	}
	return cfg.FormatDSN()
}

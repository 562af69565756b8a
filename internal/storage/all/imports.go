// Package all wires all built-in storage backends into the storage registry.
//
// Importing it for side effects makes the "mysql", "postgres", "sqlite" and
// "mssql" kinds available to storage.New and storage.NewAdmin. A binary that
// needs only a subset can import the backend packages directly instead.
package all

import (
	_ "nl2sql/internal/storage/mssql"
	_ "nl2sql/internal/storage/mysql"
	_ "nl2sql/internal/storage/postgres"
	_ "nl2sql/internal/storage/sqlite"
)

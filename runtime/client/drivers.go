package client

// Drivers selectable through Config.Provider. mysql, lib/pq, go-sqlite3 and
// modernc sqlite are registered by the imports in errors.go.
import (
	_ "github.com/jackc/pgx/v5/stdlib"    // pgx
	_ "github.com/marcboeker/go-duckdb" // duckdb
)

// Package dialect describes the database backends the mapper can talk to.
package dialect

import (
	"fmt"
	"strings"
)

// ClientType identifies the backend behind a database client.
type ClientType int

const (
	// Unknown is a backend the mapper makes no assumptions about.
	Unknown ClientType = iota
	// PostgreSQL backend.
	PostgreSQL
	// MySQL backend.
	MySQL
	// SQLite3 backend.
	SQLite3
	// DuckDB backend.
	DuckDB
)

// String returns the lowercase backend name.
func (t ClientType) String() string {
	switch t {
	case PostgreSQL:
		return "postgresql"
	case MySQL:
		return "mysql"
	case SQLite3:
		return "sqlite3"
	case DuckDB:
		return "duckdb"
	default:
		return "unknown"
	}
}

// Parse maps a provider name to a ClientType.
func Parse(provider string) (ClientType, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "postgresql", "postgres", "pgx":
		return PostgreSQL, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite3, nil
	case "duckdb":
		return DuckDB, nil
	default:
		return Unknown, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// Dialect is how a backend reports the identifier of an inserted row.
type Dialect int

const (
	// Other makes no distinction: statements are sent as written.
	Other Dialect = iota
	// Returning backends hand the inserted row back via RETURNING.
	Returning
	// SeparateID backends expose the generated identifier as a last-insert id.
	SeparateID
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case Returning:
		return "returning"
	case SeparateID:
		return "separate-id"
	default:
		return "other"
	}
}

// PlaceholderStyle is the bound-parameter syntax of a backend.
type PlaceholderStyle int

const (
	// Verbatim leaves the generic marker untouched.
	Verbatim PlaceholderStyle = iota
	// Numbered renders $1, $2, ...
	Numbered
	// Sequential renders ?, ?, ...
	Sequential
)

// Dialect returns the insert-id dialect of the backend.
func (t ClientType) Dialect() Dialect {
	switch t {
	case PostgreSQL, DuckDB:
		return Returning
	case MySQL, SQLite3:
		return SeparateID
	default:
		return Other
	}
}

// Placeholder returns the bound-parameter syntax of the backend.
func (t ClientType) Placeholder() PlaceholderStyle {
	switch t {
	case PostgreSQL, DuckDB:
		return Numbered
	case MySQL, SQLite3:
		return Sequential
	default:
		return Verbatim
	}
}

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is valid syntax.
func (t ClientType) SupportsRowLocks() bool {
	return t == PostgreSQL || t == MySQL
}

// UnboundedLimit is the LIMIT literal a backend needs before a bare OFFSET.
// An empty string means OFFSET may appear on its own.
func (t ClientType) UnboundedLimit() string {
	switch t {
	case SQLite3:
		return "-1"
	case MySQL:
		return "18446744073709551615"
	default:
		return ""
	}
}

// DefaultRow is the insert body that stores a row built only from column
// defaults, appended after "insert into <table>".
func (t ClientType) DefaultRow() string {
	if t == MySQL {
		return " () values ()"
	}
	return " default values"
}

// Marker is the generic positional placeholder used by statement fragments
// before they are translated for a backend.
const Marker = "$?"

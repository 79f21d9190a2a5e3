package client

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// Error kinds reported by the client.
var (
	// ErrUniqueConstraint is returned when a unique constraint is violated.
	ErrUniqueConstraint = errors.New("unique constraint violation")

	// ErrForeignKeyConstraint is returned when a foreign key constraint is violated.
	ErrForeignKeyConstraint = errors.New("foreign key constraint violation")

	// ErrNullConstraint is returned when a null constraint is violated.
	ErrNullConstraint = errors.New("null constraint violation")

	// ErrConnectionFailed is returned when the database cannot be reached.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrTimeout is returned when a statement times out.
	ErrTimeout = errors.New("statement timeout")

	// ErrCanceled is returned when a statement is canceled.
	ErrCanceled = errors.New("statement canceled")
)

// QueryError is a failure reported by the database for one statement.
type QueryError struct {
	Query string
	// Kind is one of the Err* sentinels above, or nil when unclassified.
	Kind  error
	Cause error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return e.Cause.Error()
}

// Unwrap returns the driver error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind.
func (e *QueryError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// Classify wraps a driver error into a QueryError.
func Classify(query string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Query: query, Kind: kindOf(err), Cause: err}
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCanceled
	case errors.Is(err, driver.ErrBadConn):
		return ErrConnectionFailed
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return sqlStateKind(string(pqErr.Code))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return sqlStateKind(pgErr.Code)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1586:
			return ErrUniqueConstraint
		case 1451, 1452, 1216, 1217:
			return ErrForeignKeyConstraint
		case 1048, 1364:
			return ErrNullConstraint
		}
		return nil
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrUniqueConstraint
		case sqlite3.ErrConstraintForeignKey:
			return ErrForeignKeyConstraint
		case sqlite3.ErrConstraintNotNull:
			return ErrNullConstraint
		}
		return nil
	}
	var pureErr *moderncsqlite.Error
	if errors.As(err, &pureErr) {
		switch pureErr.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrUniqueConstraint
		case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ErrForeignKeyConstraint
		case sqlitelib.SQLITE_CONSTRAINT_NOTNULL:
			return ErrNullConstraint
		}
		return nil
	}

	// Fallback to message matching for drivers without typed errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return ErrConnectionFailed
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return ErrUniqueConstraint
	case strings.Contains(msg, "foreign key"):
		return ErrForeignKeyConstraint
	case strings.Contains(msg, "not null constraint"), strings.Contains(msg, "not-null constraint"):
		return ErrNullConstraint
	}
	return nil
}

func sqlStateKind(code string) error {
	switch {
	case code == "23505":
		return ErrUniqueConstraint
	case code == "23503":
		return ErrForeignKeyConstraint
	case code == "23502":
		return ErrNullConstraint
	case strings.HasPrefix(code, "08"):
		return ErrConnectionFailed
	case code == "57014":
		return ErrCanceled
	}
	return nil
}

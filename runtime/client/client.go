// Package client provides the callback-based database client the mapper
// submits statements to.
package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Orochi-Adde/drogon/query/dialect"
)

// ErrClosed is reported for statements submitted after Close.
var ErrClosed = errors.New("client: closed")

// ResultCallback receives the result of a successful statement.
type ResultCallback func(*Result)

// ErrorCallback receives the failure of a statement.
type ErrorCallback func(error)

// Client submits statements and reports their outcome asynchronously.
type Client interface {
	// Type returns the backend behind the client.
	Type() dialect.ClientType

	// Execute submits query with positional args. Exactly one of onResult
	// or onError is called, exactly once, usually from another goroutine.
	Execute(ctx context.Context, query string, args []interface{}, onResult ResultCallback, onError ErrorCallback)
}

// Config holds connection configuration for Open.
type Config struct {
	// Provider is one of postgres, pgx, mysql, sqlite3, sqlite or duckdb.
	Provider string
	// URL is the driver specific data source name.
	URL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// MaxInFlight bounds statements running at once (0 = MaxOpenConns).
	MaxInFlight int64
	// QueryTimeout applies to every statement when positive.
	QueryTimeout time.Duration
	// ConnectTimeout bounds the initial ping.
	ConnectTimeout time.Duration
}

// DefaultConfig returns the default connection configuration.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// driverFor maps provider names to registered database/sql driver names.
func driverFor(provider string) (string, dialect.ClientType, error) {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return "postgres", dialect.PostgreSQL, nil
	case "pgx":
		return "pgx", dialect.PostgreSQL, nil
	case "mysql":
		return "mysql", dialect.MySQL, nil
	case "sqlite3":
		return "sqlite3", dialect.SQLite3, nil
	case "sqlite":
		return "sqlite", dialect.SQLite3, nil
	case "duckdb":
		return "duckdb", dialect.DuckDB, nil
	default:
		return "", dialect.Unknown, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// NormalizeMySQLDSN forces the DSN options the mapper relies on: affected
// rows count matched rows, and DATETIME columns decode as time.Time.
func NormalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg Config, opts ...Option) (*SQLClient, error) {
	driverName, typ, err := driverFor(cfg.Provider)
	if err != nil {
		return nil, err
	}

	dsn := cfg.URL
	if typ == dialect.MySQL {
		if dsn, err = NormalizeMySQLDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if typ == dialect.SQLite3 {
		// one connection that is never recycled keeps :memory: databases
		// alive and serialises writes
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	inFlight := cfg.MaxInFlight
	if inFlight <= 0 {
		inFlight = int64(cfg.MaxOpenConns)
	}
	base := []Option{WithMaxInFlight(inFlight), WithQueryTimeout(cfg.QueryTimeout)}
	return New(db, typ, append(base, opts...)...), nil
}

// SQLClient implements Client on top of database/sql. Every statement runs
// on its own goroutine; a weighted semaphore bounds how many run at once.
type SQLClient struct {
	db           *sql.DB
	typ          dialect.ClientType
	sem          *semaphore.Weighted
	middlewares  []Middleware
	logger       *slog.Logger
	queryTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// Option configures an SQLClient.
type Option func(*SQLClient)

// WithLogger logs every statement at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *SQLClient) {
		c.logger = logger
	}
}

// WithMaxInFlight bounds concurrently running statements.
func WithMaxInFlight(n int64) Option {
	return func(c *SQLClient) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithQueryTimeout sets a per-statement timeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *SQLClient) {
		c.queryTimeout = d
	}
}

// WithMiddleware appends middlewares to the chain.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *SQLClient) {
		c.middlewares = append(c.middlewares, mw...)
	}
}

// New wraps an open database handle. The handle stays owned by the caller
// until Close is called.
func New(db *sql.DB, typ dialect.ClientType, opts ...Option) *SQLClient {
	c := &SQLClient{
		db:  db,
		typ: typ,
		sem: semaphore.NewWeighted(16),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger != nil {
		c.middlewares = append([]Middleware{LoggingMiddleware(c.logger)}, c.middlewares...)
	}
	return c
}

// Type returns the backend behind the client.
func (c *SQLClient) Type() dialect.ClientType {
	return c.typ
}

// DB returns the underlying database handle.
func (c *SQLClient) DB() *sql.DB {
	return c.db
}

// Use adds a middleware to the chain.
func (c *SQLClient) Use(middleware Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, middleware)
}

// Execute implements Client.
func (c *SQLClient) Execute(ctx context.Context, query string, args []interface{}, onResult ResultCallback, onError ErrorCallback) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		go onError(ErrClosed)
		return
	}
	middlewares := c.middlewares
	c.wg.Add(1)
	c.mu.RUnlock()

	args = append([]interface{}(nil), args...)
	go func() {
		defer c.wg.Done()
		res, err := c.run(ctx, middlewares, query, args)
		deliver(res, err, onResult, onError)
	}()
}

// Close waits for in-flight statements and closes the database handle.
func (c *SQLClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	return c.db.Close()
}

func (c *SQLClient) run(ctx context.Context, middlewares []Middleware, query string, args []interface{}) (*Result, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	if c.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	event := &QueryEvent{
		ID:    uuid.NewString(),
		Query: query,
		Args:  args,
	}

	var res *Result
	err := executeWithMiddleware(ctx, middlewares, event, func() error {
		var err error
		res, err = c.roundTrip(ctx, query, args)
		return err
	})
	if err != nil {
		return nil, Classify(query, err)
	}
	return res, nil
}

func (c *SQLClient) roundTrip(ctx context.Context, query string, args []interface{}) (*Result, error) {
	if ReturnsRows(query) {
		rows, err := c.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return materialize(rows)
	}

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	// drivers without last-insert ids (lib/pq) return an error here
	insertID, _ := res.LastInsertId()
	return NewResult(nil, nil, affected, insertID), nil
}

// deliver hands the outcome to exactly one callback. A panic in the result
// callback is reported to the error callback.
func deliver(res *Result, err error, onResult ResultCallback, onError ErrorCallback) {
	if err != nil {
		onError(err)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			onError(fmt.Errorf("client: result callback panicked: %v", r))
		}
	}()
	onResult(res)
}

var (
	rowPrefixes = []string{"select", "with", "show", "pragma", "values", "explain", "describe", "table"}
	returning   = regexp.MustCompile(`(?i)\breturning\b`)
)

// ReturnsRows reports whether query produces a row set: it starts with a
// row-producing keyword or carries a RETURNING clause. Quoted text and
// comments are not inspected.
func ReturnsRows(query string) bool {
	q := stripQuoted(query)
	lower := strings.ToLower(strings.TrimLeft(strings.TrimSpace(q), "( \t\r\n"))
	for _, p := range rowPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return returning.MatchString(q)
}

// stripQuoted blanks out string literals, quoted identifiers and comments.
func stripQuoted(query string) string {
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			// a doubled quote inside the literal escapes it
			for i++; i < len(query); i++ {
				if query[i] == ch {
					if i+1 < len(query) && query[i+1] == ch {
						i++
						continue
					}
					break
				}
			}
			b.WriteByte(' ')
		case ch == '-' && i+1 < len(query) && query[i+1] == '-':
			for i < len(query) && query[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case ch == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				i = len(query)
			} else {
				i += end + 3
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Package client provides middleware support for statement hooks.
package client

import (
	"context"
	"log/slog"
	"time"
)

// QueryEvent represents a statement execution event
type QueryEvent struct {
	ID       string
	Query    string
	Args     []interface{}
	Duration time.Duration
	Error    error
	Start    time.Time
	End      time.Time
}

// Middleware is a function that intercepts statements
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// executeWithMiddleware executes a statement with the middleware chain
func executeWithMiddleware(ctx context.Context, middlewares []Middleware, event *QueryEvent, exec func() error) error {
	event.Start = time.Now()
	finish := func() error {
		err := exec()
		event.End = time.Now()
		event.Duration = event.End.Sub(event.Start)
		event.Error = err
		return err
	}
	if len(middlewares) == 0 {
		return finish()
	}

	var next func() error
	index := 0

	next = func() error {
		if index >= len(middlewares) {
			// Last middleware, execute the actual statement
			return finish()
		}

		middleware := middlewares[index]
		index++
		return middleware(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware creates a middleware that logs statements
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		logger.DebugContext(ctx, "executing statement", "id", event.ID, "sql", event.Query, "args", len(event.Args))
		err := next()
		if err != nil {
			logger.DebugContext(ctx, "statement failed", "id", event.ID, "duration", event.Duration, "error", err)
		} else {
			logger.DebugContext(ctx, "statement completed", "id", event.ID, "duration", event.Duration)
		}
		return err
	}
}

// TimingMiddleware creates a middleware that measures statement execution time
func TimingMiddleware(onTiming func(query string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.Query, event.Duration)
		}
		return err
	}
}

// ErrorMiddleware creates a middleware that handles errors
func ErrorMiddleware(onError func(query string, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event.Query, err)
		}
		return err
	}
}

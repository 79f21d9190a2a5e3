package client

import (
	"context"

	"github.com/Orochi-Adde/drogon/runtime/future"
)

// Exec runs one statement and waits for its result.
func Exec(ctx context.Context, c Client, query string, args ...interface{}) (*Result, error) {
	return future.Await(func(resolve func(*Result), reject func(error)) {
		c.Execute(ctx, query, args, ResultCallback(resolve), ErrorCallback(reject))
	})
}

// ExecAll runs statements one after another and stops at the first failure.
func ExecAll(ctx context.Context, c Client, statements ...string) error {
	for _, stmt := range statements {
		if _, err := Exec(ctx, c, stmt); err != nil {
			return err
		}
	}
	return nil
}

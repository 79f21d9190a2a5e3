package future

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/hashicorp/go-multierror"
)

// ErrNilFailure replaces a nil error passed to a failure continuation.
var ErrNilFailure = errors.New("future: operation failed without an error")

type value[T any] struct {
	v   T
	err error
}

// Result is the outcome of a function started with Go.
type Result[T any] struct {
	waiter chan value[T]
	got    *value[T]
}

// Wait blocks until the function returns. It may be called more than once
// from the goroutine that owns the Result.
func (r *Result[T]) Wait() (T, error) {
	if r.got == nil {
		v := <-r.waiter
		r.got = &v
	}
	return r.got.v, r.got.err
}

// Go runs fn on a new goroutine. A panic in fn becomes the error.
func Go[T any](fn func() (T, error)) *Result[T] {
	done := make(chan value[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- value[T]{err: fmt.Errorf("panic: %v\n%v", r, string(debug.Stack()))}
			}
		}()

		v, err := fn()
		done <- value[T]{v: v, err: err}
	}()
	return &Result[T]{waiter: done}
}

// Combine merges the non-nil errors into one, or returns nil.
func Combine(errs ...error) error {
	var multi error
	for _, err := range errs {
		if err == nil {
			continue
		}
		multi = multierror.Append(multi, err)
	}
	return multi
}

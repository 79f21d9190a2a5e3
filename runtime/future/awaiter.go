// Package future adapts callback-style operations into values a goroutine
// can wait on.
package future

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Operation is an asynchronous operation that reports its outcome by calling
// exactly one of resolve or reject, exactly once, possibly from another
// goroutine.
type Operation[T any] func(resolve func(T), reject func(error))

// Awaiter is a one-shot bridge between an Operation and a waiting caller.
//
// The operation starts on the first call to Await and the caller is parked
// until a continuation fires. Only the first continuation counts; later
// calls are dropped. The caller resumes on its own goroutine, but the
// continuation itself runs wherever the operation invokes it.
type Awaiter[T any] struct {
	op    Operation[T]
	start sync.Once
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// NewAwaiter wraps op without starting it.
func NewAwaiter[T any](op Operation[T]) *Awaiter[T] {
	return &Awaiter[T]{
		op:   op,
		done: make(chan struct{}),
	}
}

// Await starts the operation if needed and blocks until it resolves.
// Repeated calls return the stored outcome without restarting it.
func (a *Awaiter[T]) Await() (T, error) {
	a.start.Do(a.run)
	<-a.done
	return a.value, a.err
}

// Done is closed once the operation has resolved.
func (a *Awaiter[T]) Done() <-chan struct{} {
	return a.done
}

func (a *Awaiter[T]) run() {
	defer func() {
		if r := recover(); r != nil {
			a.reject(fmt.Errorf("panic: %v\n%v", r, string(debug.Stack())))
		}
	}()
	a.op(a.resolve, a.reject)
}

func (a *Awaiter[T]) resolve(v T) {
	a.once.Do(func() {
		a.value = v
		close(a.done)
	})
}

func (a *Awaiter[T]) reject(err error) {
	if err == nil {
		err = ErrNilFailure
	}
	a.once.Do(func() {
		a.err = err
		close(a.done)
	})
}

// Await runs op and waits for its outcome.
func Await[T any](op Operation[T]) (T, error) {
	return NewAwaiter(op).Await()
}

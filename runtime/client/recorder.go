package client

import (
	"context"
	"sync"

	"github.com/Orochi-Adde/drogon/query/dialect"
)

// Call is a statement submitted to a Recorder.
type Call struct {
	Query string
	Args  []interface{}
}

// Responder produces the outcome of a recorded statement.
type Responder func(Call) (*Result, error)

// Recorder is a Client that records statements and answers them with a
// Responder instead of a database. Callbacks fire on a new goroutine.
type Recorder struct {
	typ     dialect.ClientType
	respond Responder

	mu    sync.Mutex
	calls []Call
}

// NewRecorder returns a Recorder for the given backend. A nil respond
// answers every statement with an empty result and one affected row.
func NewRecorder(typ dialect.ClientType, respond Responder) *Recorder {
	if respond == nil {
		respond = func(Call) (*Result, error) {
			return NewResult(nil, nil, 1, 0), nil
		}
	}
	return &Recorder{typ: typ, respond: respond}
}

// Type implements Client.
func (r *Recorder) Type() dialect.ClientType {
	return r.typ
}

// Execute implements Client.
func (r *Recorder) Execute(ctx context.Context, query string, args []interface{}, onResult ResultCallback, onError ErrorCallback) {
	call := Call{Query: query, Args: append([]interface{}(nil), args...)}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	go func() {
		res, err := r.respond(call)
		deliver(res, err, onResult, onError)
	}()
}

// Calls returns the statements recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent statement.
func (r *Recorder) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset forgets recorded statements.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

var (
	_ Client = (*SQLClient)(nil)
	_ Client = (*Recorder)(nil)
)

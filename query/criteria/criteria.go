// Package criteria builds WHERE-clause fragments with their bound arguments.
package criteria

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Orochi-Adde/drogon/query/dialect"
)

// Operator is a comparison used by New.
type Operator int

const (
	// EQ renders "col = $?".
	EQ Operator = iota
	// NE renders "col != $?".
	NE
	// GT renders "col > $?".
	GT
	// GE renders "col >= $?".
	GE
	// LT renders "col < $?".
	LT
	// LE renders "col <= $?".
	LE
	// Like renders "col like $?".
	Like
	// NotLike renders "col not like $?".
	NotLike
	// In renders "col in ($?,$?,...)".
	In
	// NotIn renders "col not in ($?,$?,...)".
	NotIn
	// IsNull renders "col is null" and binds nothing.
	IsNull
	// IsNotNull renders "col is not null" and binds nothing.
	IsNotNull
)

var comparisons = map[Operator]string{
	EQ:      " = ",
	NE:      " != ",
	GT:      " > ",
	GE:      " >= ",
	LT:      " < ",
	LE:      " <= ",
	Like:    " like ",
	NotLike: " not like ",
}

// Criteria is an immutable condition plus the values it binds, in the order
// their markers appear in the rendered text. The zero value is empty.
type Criteria struct {
	sql  string
	args []any
}

// New builds a condition on a single column.
//
// Comparison operators take exactly one argument. In and NotIn take any
// number, either spread or as a single slice. IsNull and IsNotNull take none.
func New(column string, op Operator, args ...any) Criteria {
	switch op {
	case IsNull:
		return Criteria{sql: column + " is null"}
	case IsNotNull:
		return Criteria{sql: column + " is not null"}
	case In, NotIn:
		values := flatten(args)
		if len(values) == 0 {
			// an empty set matches nothing, its complement everything
			if op == In {
				return Criteria{sql: "1 = 0"}
			}
			return Criteria{sql: "1 = 1"}
		}
		keyword := " in ("
		if op == NotIn {
			keyword = " not in ("
		}
		markers := strings.TrimSuffix(strings.Repeat(dialect.Marker+",", len(values)), ",")
		return Criteria{sql: column + keyword + markers + ")", args: values}
	}

	cmp, ok := comparisons[op]
	if !ok {
		panic(fmt.Sprintf("criteria: unknown operator %d", op))
	}
	if len(args) != 1 {
		panic(fmt.Sprintf("criteria: operator on %q takes one argument, got %d", column, len(args)))
	}
	return Criteria{sql: column + cmp + dialect.Marker, args: []any{args[0]}}
}

// Custom wraps a hand-written fragment that uses dialect.Marker for its
// parameters. The number of markers must match the number of args.
func Custom(fragment string, args ...any) Criteria {
	if n := strings.Count(fragment, dialect.Marker); n != len(args) {
		panic(fmt.Sprintf("criteria: fragment %q has %d markers but %d args", fragment, n, len(args)))
	}
	return Criteria{sql: fragment, args: append([]any(nil), args...)}
}

// Eq is shorthand for New(column, EQ, value).
func Eq(column string, value any) Criteria {
	return New(column, EQ, value)
}

// And joins two conditions with a logical conjunction. An empty side is dropped.
func (c Criteria) And(other Criteria) Criteria {
	return c.join(other, "and")
}

// Or joins two conditions with a logical disjunction. An empty side is dropped.
func (c Criteria) Or(other Criteria) Criteria {
	return c.join(other, "or")
}

func (c Criteria) join(other Criteria, op string) Criteria {
	if c.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return c
	}
	args := make([]any, 0, len(c.args)+len(other.args))
	args = append(args, c.args...)
	args = append(args, other.args...)
	return Criteria{
		sql:  "( " + c.sql + " ) " + op + " ( " + other.sql + " )",
		args: args,
	}
}

// IsEmpty reports whether the criteria contributes no condition.
func (c Criteria) IsEmpty() bool {
	return c.sql == ""
}

// String renders the condition with generic markers.
func (c Criteria) String() string {
	return c.sql
}

// Args returns a copy of the bound values in marker order.
func (c Criteria) Args() []any {
	return append([]any(nil), c.args...)
}

// AppendArgs appends the bound values to dst in marker order.
func (c Criteria) AppendArgs(dst []any) []any {
	return append(dst, c.args...)
}

func flatten(args []any) []any {
	if len(args) != 1 {
		return append([]any(nil), args...)
	}
	v := reflect.ValueOf(args[0])
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return []any{args[0]}
	}
	if _, isBytes := args[0].([]byte); isBytes {
		return []any{args[0]}
	}
	out := make([]any, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out
}

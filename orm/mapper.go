package orm

import (
	"context"

	"github.com/Orochi-Adde/drogon/internal/debug"
	"github.com/Orochi-Adde/drogon/query/criteria"
	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/query/sqlgen"
	"github.com/Orochi-Adde/drogon/runtime/client"
	"github.com/Orochi-Adde/drogon/runtime/future"
)

// Mapper runs statements for model T. Limit, Offset, OrderBy, Paginate and
// ForUpdate apply to the next operation only; every operation clears them
// before its statement is submitted. A Mapper is not safe for concurrent
// use; independent mappers may share a client.
type Mapper[T Model, P RowPtr[T]] struct {
	client client.Client

	limit     uint64
	offset    uint64
	order     []sqlgen.OrderBy
	forUpdate bool

	// reload reads an inserted row back by its key; set for keyed models.
	reload func(ctx context.Context, obj T) (T, error)
}

// New returns a mapper for T on c.
func New[T Model, P RowPtr[T]](c client.Client) *Mapper[T, P] {
	return &Mapper[T, P]{client: c}
}

// Client returns the client statements are submitted to.
func (m *Mapper[T, P]) Client() client.Client {
	return m.client
}

// Limit caps the number of rows returned.
func (m *Mapper[T, P]) Limit(n uint64) *Mapper[T, P] {
	m.limit = n
	return m
}

// Offset skips the first n rows.
func (m *Mapper[T, P]) Offset(n uint64) *Mapper[T, P] {
	m.offset = n
	return m
}

// OrderBy adds a sort term. Terms apply in the order they are added.
func (m *Mapper[T, P]) OrderBy(column string, order sqlgen.SortOrder) *Mapper[T, P] {
	m.order = append(m.order, sqlgen.OrderBy{Column: column, Direction: order})
	return m
}

// Paginate selects page (1-based) of perPage rows.
func (m *Mapper[T, P]) Paginate(page, perPage uint64) *Mapper[T, P] {
	m.limit = perPage
	m.offset = 0
	if page > 1 {
		m.offset = (page - 1) * perPage
	}
	return m
}

// ForUpdate locks the selected rows on backends with row locks.
func (m *Mapper[T, P]) ForUpdate() *Mapper[T, P] {
	m.forUpdate = true
	return m
}

// Reset clears every modifier.
func (m *Mapper[T, P]) Reset() {
	m.limit = 0
	m.offset = 0
	m.order = nil
	m.forUpdate = false
}

// take snapshots the modifiers and clears them.
func (m *Mapper[T, P]) take() sqlgen.Query {
	q := sqlgen.Query{
		Limit:     m.limit,
		Offset:    m.offset,
		Order:     m.order,
		ForUpdate: m.forUpdate,
	}
	m.Reset()
	return q
}

func (m *Mapper[T, P]) table() string {
	var zero T
	return zero.TableName()
}

// FindAll returns every row of the table.
func (m *Mapper[T, P]) FindAll(ctx context.Context) ([]T, error) {
	return m.FindBy(ctx, criteria.Criteria{})
}

// FindBy returns the rows matching where, in result order.
func (m *Mapper[T, P]) FindBy(ctx context.Context, where criteria.Criteria) ([]T, error) {
	stmt := sqlgen.Select(m.client.Type(), m.table(), where, m.take())
	return submit(ctx, m.client, stmt, decodeAll[T, P])
}

// FindOne returns the single row matching where. Zero or several rows fail
// with an UnexpectedRowsError.
func (m *Mapper[T, P]) FindOne(ctx context.Context, where criteria.Criteria) (T, error) {
	table := m.table()
	stmt := sqlgen.Select(m.client.Type(), table, where, m.take())
	return submit(ctx, m.client, stmt, decodeOne[T, P](table))
}

// Count returns the number of rows matching where. Modifiers are ignored.
func (m *Mapper[T, P]) Count(ctx context.Context, where criteria.Criteria) (uint64, error) {
	m.Reset()
	stmt := sqlgen.Count(m.client.Type(), m.table(), where)
	return submit(ctx, m.client, stmt, decodeCount)
}

// Insert writes obj and returns the stored row. On RETURNING backends the
// row comes back with the insert. Elsewhere the generated id is assigned to
// a copy of obj and, when the model asks for it, the row is read back by
// key; a failed read back is reported as a *Failure.
func (m *Mapper[T, P]) Insert(ctx context.Context, obj T) (T, error) {
	typ := m.client.Type()
	sql, needSelection := obj.SQLForInserting(typ)
	m.Reset()

	step := planInsert(typ.Dialect(), needSelection)
	if step == assignIDAndReload && m.reload == nil {
		debug.Error("insert needs a keyed mapper to read the row back", "table", m.table(), "client", typ)
		panic(contractError("insert into %s needs a read back but the model has no primary key", m.table()))
	}

	stmt := sqlgen.Statement{SQL: sqlgen.Translate(sql, typ), Args: obj.InsertArgs()}
	table := m.table()
	inserted, err := submit(ctx, m.client, stmt, func(res *client.Result) (T, error) {
		var zero T
		if n := res.AffectedRows(); n != 1 {
			return zero, contractError("insert into %s affected %d rows", table, n)
		}
		switch step {
		case returnRow:
			return decodeOne[T, P](table)(res)
		case returnOriginal:
			return obj, nil
		default:
			out := obj
			P(&out).SetInsertID(res.InsertID())
			return out, nil
		}
	})
	if err != nil || step != assignIDAndReload {
		return inserted, err
	}

	stored, err := m.reload(ctx, inserted)
	if err != nil {
		var zero T
		return zero, &Failure{Op: "insert", Cause: err}
	}
	return stored, nil
}

// insertStep is how Insert produces its result.
type insertStep int

const (
	// returnRow decodes the row handed back by RETURNING.
	returnRow insertStep = iota
	// returnOriginal returns the object as submitted.
	returnOriginal
	// assignID sets the last insert id on a copy of the object.
	assignID
	// assignIDAndReload sets the id, then reads the row back by key.
	assignIDAndReload
)

func planInsert(d dialect.Dialect, needSelection bool) insertStep {
	switch {
	case d == dialect.Returning && needSelection:
		return returnRow
	case d == dialect.Returning:
		return returnOriginal
	case needSelection:
		return assignIDAndReload
	default:
		return assignID
	}
}

// submit sends stmt and waits for the decoded outcome. decode runs on the
// client's goroutine.
func submit[R any](ctx context.Context, c client.Client, stmt sqlgen.Statement, decode func(*client.Result) (R, error)) (R, error) {
	return future.Await(func(resolve func(R), reject func(error)) {
		c.Execute(ctx, stmt.SQL, stmt.Args, func(res *client.Result) {
			v, err := decode(res)
			if err != nil {
				reject(err)
				return
			}
			resolve(v)
		}, reject)
	})
}

func decodeAll[T any, P RowPtr[T]](res *client.Result) ([]T, error) {
	out := make([]T, 0, res.Size())
	for _, row := range res.Rows() {
		var v T
		if err := P(&v).Scan(row); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeOne[T any, P RowPtr[T]](table string) func(*client.Result) (T, error) {
	return func(res *client.Result) (T, error) {
		var v T
		if n := res.Size(); n != 1 {
			return v, &UnexpectedRowsError{Table: table, Found: n}
		}
		if err := P(&v).Scan(res.Row(0)); err != nil {
			return v, err
		}
		return v, nil
	}
}

func decodeCount(res *client.Result) (uint64, error) {
	if res.Size() != 1 {
		return 0, contractError("count returned %d rows", res.Size())
	}
	var n uint64
	if err := res.Row(0).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

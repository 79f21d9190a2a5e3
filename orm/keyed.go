package orm

import (
	"context"
	"strings"

	"github.com/Orochi-Adde/drogon/internal/debug"
	"github.com/Orochi-Adde/drogon/query/criteria"
	"github.com/Orochi-Adde/drogon/query/sqlgen"
	"github.com/Orochi-Adde/drogon/runtime/client"
)

// KeyedMapper adds primary key operations to Mapper for models with a key
// of type K.
type KeyedMapper[T Keyed[K], K comparable, P RowPtr[T]] struct {
	*Mapper[T, P]
}

// NewKeyed returns a keyed mapper for T on c. Inserts that need the stored
// row read back use a fresh mapper on the same client.
func NewKeyed[T Keyed[K], K comparable, P RowPtr[T]](c client.Client) *KeyedMapper[T, K, P] {
	m := &KeyedMapper[T, K, P]{Mapper: New[T, P](c)}
	m.reload = func(ctx context.Context, obj T) (T, error) {
		return NewKeyed[T, K, P](c).FindByPrimaryKey(ctx, obj.PrimaryKey())
	}
	return m
}

// Limit caps the number of rows returned.
func (m *KeyedMapper[T, K, P]) Limit(n uint64) *KeyedMapper[T, K, P] {
	m.Mapper.Limit(n)
	return m
}

// Offset skips the first n rows.
func (m *KeyedMapper[T, K, P]) Offset(n uint64) *KeyedMapper[T, K, P] {
	m.Mapper.Offset(n)
	return m
}

// OrderBy adds a sort term.
func (m *KeyedMapper[T, K, P]) OrderBy(column string, order sqlgen.SortOrder) *KeyedMapper[T, K, P] {
	m.Mapper.OrderBy(column, order)
	return m
}

// Paginate selects page (1-based) of perPage rows.
func (m *KeyedMapper[T, K, P]) Paginate(page, perPage uint64) *KeyedMapper[T, K, P] {
	m.Mapper.Paginate(page, perPage)
	return m
}

// ForUpdate locks the selected rows on backends with row locks.
func (m *KeyedMapper[T, K, P]) ForUpdate() *KeyedMapper[T, K, P] {
	m.Mapper.ForUpdate()
	return m
}

func (m *KeyedMapper[T, K, P]) keyColumns() []string {
	var zero T
	return zero.PrimaryKeyColumns()
}

// bindKey returns the values bound by the key predicate. A key whose arity
// differs from the key columns is a model defect: it is logged and panics
// before anything is submitted.
func (m *KeyedMapper[T, K, P]) bindKey(key K) []any {
	args := keyArgs(key)
	if cols := m.keyColumns(); len(args) != len(cols) {
		debug.Error("primary key arity mismatch", "table", m.table(), "values", len(args), "columns", cols)
		panic(contractError("%s key has %d values for columns %s", m.table(), len(args), strings.Join(cols, ", ")))
	}
	return args
}

// FindByPrimaryKey returns the row with the given key. Only ForUpdate
// applies; a missing or duplicated key fails with an UnexpectedRowsError.
func (m *KeyedMapper[T, K, P]) FindByPrimaryKey(ctx context.Context, key K) (T, error) {
	var zero T
	q := m.take()
	args := m.bindKey(key)

	typ := m.client.Type()
	table := m.table()
	sql := zero.SQLForFindingByPrimaryKey()
	if sql == "" {
		var b strings.Builder
		b.WriteString("select * from ")
		b.WriteString(table)
		sqlgen.PrimaryKeyPredicate(&b, m.keyColumns())
		sql = b.String()
	}
	stmt := sqlgen.Statement{SQL: sqlgen.Translate(sqlgen.Lock(typ, sql, q), typ), Args: args}
	return submit(ctx, m.client, stmt, decodeOne[T, P](table))
}

// Update writes the dirty columns of obj and returns the number of matched
// rows. Without dirty columns nothing is written and the result is the
// number of rows with obj's key.
func (m *KeyedMapper[T, K, P]) Update(ctx context.Context, obj T) (uint64, error) {
	m.Reset()
	args := m.bindKey(obj.PrimaryKey())

	typ := m.client.Type()
	columns := obj.UpdateColumns()
	if len(columns) == 0 {
		stmt := sqlgen.CountByPrimaryKey(typ, m.table(), obj.PrimaryKeyColumns(), args)
		return submit(ctx, m.client, stmt, decodeCount)
	}

	values := append(obj.UpdateArgs(), args...)
	stmt := sqlgen.Update(typ, m.table(), columns, obj.PrimaryKeyColumns(), values)
	return submit(ctx, m.client, stmt, affectedRows)
}

// DeleteOne deletes the row with obj's key and returns the affected rows.
func (m *KeyedMapper[T, K, P]) DeleteOne(ctx context.Context, obj T) (uint64, error) {
	m.Reset()
	args := m.bindKey(obj.PrimaryKey())
	stmt := sqlgen.DeleteByPrimaryKey(m.client.Type(), m.table(), obj.PrimaryKeyColumns(), args)
	return submit(ctx, m.client, stmt, affectedRows)
}

// DeleteBy deletes the rows matching where and returns the affected rows.
func (m *KeyedMapper[T, K, P]) DeleteBy(ctx context.Context, where criteria.Criteria) (uint64, error) {
	m.Reset()
	stmt := sqlgen.Delete(m.client.Type(), m.table(), where)
	return submit(ctx, m.client, stmt, affectedRows)
}

// DeleteByPrimaryKey deletes the row with the given key and returns the
// affected rows.
func (m *KeyedMapper[T, K, P]) DeleteByPrimaryKey(ctx context.Context, key K) (uint64, error) {
	m.Reset()
	args := m.bindKey(key)

	var zero T
	typ := m.client.Type()
	if sql := zero.SQLForDeletingByPrimaryKey(); sql != "" {
		stmt := sqlgen.Statement{SQL: sqlgen.Translate(sql, typ), Args: args}
		return submit(ctx, m.client, stmt, affectedRows)
	}
	stmt := sqlgen.DeleteByPrimaryKey(typ, m.table(), m.keyColumns(), args)
	return submit(ctx, m.client, stmt, affectedRows)
}

func affectedRows(res *client.Result) (uint64, error) {
	n := res.AffectedRows()
	if n < 0 {
		return 0, contractError("negative affected row count %d", n)
	}
	return uint64(n), nil
}

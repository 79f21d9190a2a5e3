// Package orm maps typed models to SQL statements and runs them through a
// callback-based client, returning each outcome to the calling goroutine.
//
// A Mapper serves any Model. A KeyedMapper additionally serves models with
// a primary key; keyed operations on a keyless model do not compile.
package orm

import (
	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/runtime/client"
)

// Model is a row type the mapper can select and insert.
type Model interface {
	// TableName returns the table the model maps to.
	TableName() string
	// SQLForInserting returns the insert statement for this object using
	// dialect.Marker placeholders, and whether the stored row must be read
	// back after the insert.
	SQLForInserting(typ dialect.ClientType) (sql string, needSelection bool)
	// InsertArgs returns the values bound by SQLForInserting.
	InsertArgs() []any
}

// RowPtr is the pointer side of a Model: decoding a result row into the
// model and assigning a generated identifier.
type RowPtr[T any] interface {
	*T
	Scan(row client.Row) error
	SetInsertID(id int64)
}

// Keyed is a Model with a primary key of type K. A composite key type
// implements KeyValues.
type Keyed[K comparable] interface {
	Model
	PrimaryKey() K
	PrimaryKeyColumns() []string
	// UpdateColumns lists the dirty non-key columns.
	UpdateColumns() []string
	// UpdateArgs returns the values of UpdateColumns.
	UpdateArgs() []any
	// SQLForFindingByPrimaryKey returns precomputed lookup SQL, or "" to
	// have the mapper build it from PrimaryKeyColumns.
	SQLForFindingByPrimaryKey() string
	// SQLForDeletingByPrimaryKey returns precomputed delete SQL, or "".
	SQLForDeletingByPrimaryKey() string
}

// KeyValues is implemented by composite primary keys.
type KeyValues interface {
	KeyValues() []any
}

func keyArgs(key any) []any {
	if kv, ok := key.(KeyValues); ok {
		return kv.KeyValues()
	}
	return []any{key}
}

// Package model holds the table metadata generated models are built on:
// column layout, primary key, insert and keyed statement text, and dirty
// column tracking.
package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Orochi-Adde/drogon/query/dialect"
	"github.com/Orochi-Adde/drogon/query/sqlgen"
)

// Table describes one table. Statement text uses dialect.Marker for bound
// parameters.
type Table struct {
	Name    string
	Columns []string
	// PrimaryKey lists the key columns; empty for tables without a key.
	PrimaryKey []string
	// AutoIncrement is the generated key column, or "".
	AutoIncrement string
	// ServerDefaults are columns the database fills in when omitted.
	ServerDefaults []string
}

// Validate checks that every referenced column exists.
func (t *Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("model: table has no name")
	}
	if len(t.Columns) == 0 || len(t.Columns) > MaxColumns {
		return fmt.Errorf("model: table %s has %d columns", t.Name, len(t.Columns))
	}
	refs := append(append([]string(nil), t.PrimaryKey...), t.ServerDefaults...)
	if t.AutoIncrement != "" {
		refs = append(refs, t.AutoIncrement)
	}
	for _, col := range refs {
		if t.Index(col) < 0 {
			return fmt.Errorf("model: table %s has no column %q", t.Name, col)
		}
	}
	return nil
}

// Index returns the position of column, or -1.
func (t *Table) Index(column string) int {
	return slices.Index(t.Columns, column)
}

// HasPrimaryKey reports whether the table declares a key.
func (t *Table) HasPrimaryKey() bool {
	return len(t.PrimaryKey) > 0
}

// insertable reports whether column i goes into an insert when set holds
// the columns the caller assigned, and whether omitting it leaves a value
// only the database knows.
func (t *Table) insertable(i int, set Dirty) (include, generated bool) {
	if set.Has(i) {
		return true, false
	}
	col := t.Columns[i]
	if col == t.AutoIncrement {
		return false, true
	}
	if slices.Contains(t.ServerDefaults, col) {
		return false, true
	}
	return true, false
}

// InsertSQL builds the insert statement for an object whose assigned
// columns are set. Unassigned auto-increment and server-default columns are
// left out. needSelection reports that the stored row differs from the
// object and must be read back: on RETURNING backends the statement then
// ends in "returning *". On other backends a generated auto-increment key
// arrives as the last insert id, so only server defaults need a read.
func (t *Table) InsertSQL(typ dialect.ClientType, set Dirty) (sql string, needSelection bool) {
	d := typ.Dialect()
	var cols []string
	for i, col := range t.Columns {
		include, generated := t.insertable(i, set)
		if include {
			cols = append(cols, col)
			continue
		}
		if generated && (d == dialect.Returning || col != t.AutoIncrement) {
			needSelection = true
		}
	}

	var b strings.Builder
	b.WriteString("insert into ")
	b.WriteString(t.Name)
	if len(cols) == 0 {
		b.WriteString(typ.DefaultRow())
	} else {
		b.WriteString(" (")
		b.WriteString(strings.Join(cols, ", "))
		b.WriteString(") values (")
		for i := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(dialect.Marker)
		}
		b.WriteString(")")
	}
	if needSelection && d == dialect.Returning {
		b.WriteString(" returning *")
	}
	return b.String(), needSelection
}

// InsertArgs picks the values InsertSQL binds. values holds every column in
// table order.
func (t *Table) InsertArgs(values []any, set Dirty) []any {
	args := make([]any, 0, len(values))
	for i := range t.Columns {
		if include, _ := t.insertable(i, set); include {
			args = append(args, values[i])
		}
	}
	return args
}

// UpdateColumns returns the dirty non-key columns in table order.
func (t *Table) UpdateColumns(dirty Dirty) []string {
	var cols []string
	for _, i := range dirty.Indexes() {
		if i < len(t.Columns) && !slices.Contains(t.PrimaryKey, t.Columns[i]) {
			cols = append(cols, t.Columns[i])
		}
	}
	return cols
}

// UpdateArgs returns the values of UpdateColumns.
func (t *Table) UpdateArgs(values []any, dirty Dirty) []any {
	var args []any
	for _, i := range dirty.Indexes() {
		if i < len(t.Columns) && !slices.Contains(t.PrimaryKey, t.Columns[i]) {
			args = append(args, values[i])
		}
	}
	return args
}

// FindByPrimaryKeySQL returns select * from <table> where <key predicate>.
func (t *Table) FindByPrimaryKeySQL() string {
	var b strings.Builder
	b.WriteString("select * from ")
	b.WriteString(t.Name)
	sqlgen.PrimaryKeyPredicate(&b, t.PrimaryKey)
	return b.String()
}

// DeleteByPrimaryKeySQL returns delete from <table> where <key predicate>.
func (t *Table) DeleteByPrimaryKeySQL() string {
	var b strings.Builder
	b.WriteString("delete from ")
	b.WriteString(t.Name)
	sqlgen.PrimaryKeyPredicate(&b, t.PrimaryKey)
	return b.String()
}

// Package sqlgen generates the mapper's SQL for different backends.
package sqlgen

import (
	"strings"

	"github.com/Orochi-Adde/drogon/query/criteria"
	"github.com/Orochi-Adde/drogon/query/dialect"
)

// Statement is SQL text in the backend's native placeholder syntax plus its
// positional arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

// SortOrder is the direction of an ORDER BY term.
type SortOrder int

const (
	// ASC sorts ascending.
	ASC SortOrder = iota
	// DESC sorts descending.
	DESC
)

// OrderBy represents an ORDER BY term.
type OrderBy struct {
	Column    string
	Direction SortOrder
}

// Query is a snapshot of the single-use modifiers of one mapper call.
// Zero values mean unset.
type Query struct {
	Limit     uint64
	Offset    uint64
	Order     []OrderBy
	ForUpdate bool
}

// IsZero reports whether no modifier is set.
func (q Query) IsZero() bool {
	return q.Limit == 0 && q.Offset == 0 && len(q.Order) == 0 && !q.ForUpdate
}

// OrderClause renders " order by a asc, b desc", or "" without terms.
func (q Query) OrderClause() string {
	if len(q.Order) == 0 {
		return ""
	}
	terms := make([]string, len(q.Order))
	for i, ob := range q.Order {
		direction := "asc"
		if ob.Direction == DESC {
			direction = "desc"
		}
		terms[i] = ob.Column + " " + direction
	}
	return " order by " + strings.Join(terms, ", ")
}

// Select builds
//
//	select * from <table> [where ...] [order by ...] [limit ?] [offset ?] [for update]
//
// Criteria arguments are bound first, then limit, then offset.
func Select(t dialect.ClientType, table string, where criteria.Criteria, q Query) Statement {
	var args []interface{}
	hasParameters := false

	sql := "select * from " + table
	if !where.IsEmpty() {
		sql += " where " + where.String()
		args = where.AppendArgs(args)
		hasParameters = true
	}
	sql += q.OrderClause()
	if q.Limit > 0 {
		sql += " limit " + dialect.Marker
		args = append(args, q.Limit)
		hasParameters = true
	} else if q.Offset > 0 {
		if unbounded := t.UnboundedLimit(); unbounded != "" {
			sql += " limit " + unbounded
		}
	}
	if q.Offset > 0 {
		sql += " offset " + dialect.Marker
		args = append(args, q.Offset)
		hasParameters = true
	}
	if hasParameters {
		sql = Translate(sql, t)
	}

	return Statement{SQL: Lock(t, sql, q), Args: args}
}

// Count builds select count(*) from <table> [where ...]. Modifiers do not
// apply to counts.
func Count(t dialect.ClientType, table string, where criteria.Criteria) Statement {
	sql := "select count(*) from " + table
	if where.IsEmpty() {
		return Statement{SQL: sql}
	}
	sql += " where " + where.String()
	return Statement{SQL: Translate(sql, t), Args: where.Args()}
}

// CountByPrimaryKey builds select count(*) from <table> where <key predicate>.
func CountByPrimaryKey(t dialect.ClientType, table string, key []string, keyArgs []interface{}) Statement {
	var b strings.Builder
	b.WriteString("select count(*) from ")
	b.WriteString(table)
	PrimaryKeyPredicate(&b, key)
	return Statement{SQL: Translate(b.String(), t), Args: append([]interface{}(nil), keyArgs...)}
}

// Update builds update <table> set c1 = ?, c2 = ? where <key predicate>.
// args holds the column values followed by the key values. columns must not
// be empty.
func Update(t dialect.ClientType, table string, columns, key []string, args []interface{}) Statement {
	setParts := make([]string, len(columns))
	for i, col := range columns {
		setParts[i] = col + " = " + dialect.Marker
	}

	var b strings.Builder
	b.WriteString("update ")
	b.WriteString(table)
	b.WriteString(" set ")
	b.WriteString(strings.Join(setParts, ", "))
	PrimaryKeyPredicate(&b, key)

	return Statement{SQL: Translate(b.String(), t), Args: append([]interface{}(nil), args...)}
}

// Delete builds delete from <table> [where ...].
func Delete(t dialect.ClientType, table string, where criteria.Criteria) Statement {
	sql := "delete from " + table
	if where.IsEmpty() {
		return Statement{SQL: sql}
	}
	sql += " where " + where.String()
	return Statement{SQL: Translate(sql, t), Args: where.Args()}
}

// DeleteByPrimaryKey builds delete from <table> where <key predicate>.
func DeleteByPrimaryKey(t dialect.ClientType, table string, key []string, keyArgs []interface{}) Statement {
	var b strings.Builder
	b.WriteString("delete from ")
	b.WriteString(table)
	PrimaryKeyPredicate(&b, key)
	return Statement{SQL: Translate(b.String(), t), Args: append([]interface{}(nil), keyArgs...)}
}

// PrimaryKeyPredicate appends " where k1 = $? and k2 = $?" using the
// generic marker.
func PrimaryKeyPredicate(b *strings.Builder, key []string) {
	if len(key) == 0 {
		panic("sqlgen: primary key predicate needs at least one column")
	}
	b.WriteString(" where ")
	for i, col := range key {
		if i > 0 {
			b.WriteString(" and ")
		}
		b.WriteString(col)
		b.WriteString(" = ")
		b.WriteString(dialect.Marker)
	}
}

// Lock appends the row-lock suffix when the query asks for it and the
// backend supports it.
func Lock(t dialect.ClientType, sql string, q Query) string {
	if q.ForUpdate && t.SupportsRowLocks() {
		return sql + " for update"
	}
	return sql
}

// Package client provides result materialization.
package client

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Result is a fully read result set plus the write counters of the
// statement that produced it.
type Result struct {
	columns      []string
	rows         []Row
	affectedRows int64
	insertID     int64
}

// NewResult builds a result from column names and row values. For row
// producing statements affected is usually len(values).
func NewResult(columns []string, values [][]interface{}, affected, insertID int64) *Result {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{columns: columns, index: index, values: v}
	}
	return &Result{
		columns:      columns,
		rows:         rows,
		affectedRows: affected,
		insertID:     insertID,
	}
}

// Size returns the number of rows.
func (r *Result) Size() int {
	return len(r.rows)
}

// Row returns the i-th row.
func (r *Result) Row(i int) Row {
	return r.rows[i]
}

// Rows returns all rows in result order.
func (r *Result) Rows() []Row {
	return r.rows
}

// Columns returns the column names.
func (r *Result) Columns() []string {
	return r.columns
}

// AffectedRows returns the number of rows written, or returned for row
// producing statements.
func (r *Result) AffectedRows() int64 {
	return r.affectedRows
}

// InsertID returns the backend's last insert id, or 0 when it has none.
func (r *Result) InsertID() int64 {
	return r.insertID
}

// Row is one row of a Result.
type Row struct {
	columns []string
	index   map[string]int
	values  []interface{}
}

// Column converts the named column into dest.
func (r Row) Column(column string, dest interface{}) error {
	i, ok := r.lookup(column)
	if !ok {
		return fmt.Errorf("column %q not in result", column)
	}
	if err := assign(dest, r.values[i]); err != nil {
		return fmt.Errorf("column %q: %w", column, err)
	}
	return nil
}

// Scan converts the columns, in order, into dest.
func (r Row) Scan(dest ...interface{}) error {
	if len(dest) > len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(r.values))
	}
	for i, d := range dest {
		if err := assign(d, r.values[i]); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	return nil
}

func (r Row) lookup(column string) (int, bool) {
	if i, ok := r.index[column]; ok {
		return i, true
	}
	// Case-insensitive match
	for i, col := range r.columns {
		if strings.EqualFold(col, column) {
			return i, true
		}
	}
	return 0, false
}

var binaryTypes = map[string]bool{
	"BLOB": true, "BYTEA": true, "BINARY": true, "VARBINARY": true,
	"TINYBLOB": true, "MEDIUMBLOB": true, "LONGBLOB": true,
}

// materialize reads every row of rows.
func materialize(rows *sql.Rows) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	keepBytes := make([]bool, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			keepBytes[i] = binaryTypes[strings.ToUpper(ct.DatabaseTypeName())]
		}
	}

	var values [][]interface{}
	for rows.Next() {
		raw := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range raw {
			// Convert []byte to string
			if b, ok := v.([]byte); ok && !keepBytes[i] {
				raw[i] = string(b)
			} else if ok {
				raw[i] = append([]byte(nil), b...)
			}
		}
		values = append(values, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return NewResult(columns, values, int64(len(values)), 0), nil
}

// assign converts src into the value dest points to.
func assign(dest, src interface{}) error {
	if s, ok := dest.(sql.Scanner); ok {
		return s.Scan(src)
	}

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dest)
	}
	target := dv.Elem()

	if src == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}

	var (
		v   interface{}
		err error
	)
	switch d := dest.(type) {
	case *interface{}:
		*d = src
		return nil
	case *string:
		v, err = cast.ToStringE(src)
	case *[]byte:
		switch s := src.(type) {
		case []byte:
			v = append([]byte(nil), s...)
		case string:
			v = []byte(s)
		default:
			err = fmt.Errorf("cannot convert %T to []byte", src)
		}
	case *int:
		v, err = cast.ToIntE(src)
	case *int8:
		v, err = cast.ToInt8E(src)
	case *int16:
		v, err = cast.ToInt16E(src)
	case *int32:
		v, err = cast.ToInt32E(src)
	case *int64:
		v, err = cast.ToInt64E(src)
	case *uint:
		v, err = cast.ToUintE(src)
	case *uint8:
		v, err = cast.ToUint8E(src)
	case *uint16:
		v, err = cast.ToUint16E(src)
	case *uint32:
		v, err = cast.ToUint32E(src)
	case *uint64:
		v, err = cast.ToUint64E(src)
	case *float32:
		v, err = cast.ToFloat32E(src)
	case *float64:
		v, err = cast.ToFloat64E(src)
	case *bool:
		v, err = cast.ToBoolE(src)
	case *time.Time:
		v, err = cast.ToTimeE(src)
	default:
		// nullable destinations such as **string
		if target.Kind() == reflect.Ptr {
			elem := reflect.New(target.Type().Elem())
			if err := assign(elem.Interface(), src); err != nil {
				return err
			}
			target.Set(elem)
			return nil
		}
		sv := reflect.ValueOf(src)
		if sv.Type().ConvertibleTo(target.Type()) {
			target.Set(sv.Convert(target.Type()))
			return nil
		}
		return fmt.Errorf("unsupported destination %T for %T", dest, src)
	}
	if err != nil {
		return err
	}
	target.Set(reflect.ValueOf(v))
	return nil
}

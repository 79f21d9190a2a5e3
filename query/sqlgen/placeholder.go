// Package sqlgen provides placeholder translation.
package sqlgen

import (
	"strconv"
	"strings"

	"github.com/Orochi-Adde/drogon/query/dialect"
)

// Translate rewrites every dialect.Marker in sql into the bound-parameter
// syntax of the backend, numbering left to right.
func Translate(sql string, t dialect.ClientType) string {
	return TranslateMarker(sql, dialect.Marker, t.Placeholder())
}

// TranslateMarker rewrites every occurrence of marker using style.
func TranslateMarker(sql, marker string, style dialect.PlaceholderStyle) string {
	if style == dialect.Verbatim || marker == "" || !strings.Contains(sql, marker) {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + 8)
	argIndex := 1
	for {
		pos := strings.Index(sql, marker)
		if pos < 0 {
			b.WriteString(sql)
			return b.String()
		}
		b.WriteString(sql[:pos])
		if style == dialect.Numbered {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(argIndex))
			argIndex++
		} else {
			b.WriteByte('?')
		}
		sql = sql[pos+len(marker):]
	}
}

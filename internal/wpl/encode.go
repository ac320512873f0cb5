package wpl

import (
	"fmt"
	"strings"
)

// EncodeRow serializes a row back into dump-tuple syntax using the same
// quoting and escaping rules the decoder honors. Non-null fields are
// always quoted, so decoding an encoded row yields the original values.
func EncodeRow(row Row) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, f := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		if f.Null {
			b.WriteString("NULL")
			continue
		}
		b.WriteByte('\'')
		for _, ch := range f.Value {
			switch ch {
			case '\'':
				b.WriteString(`\'`)
			case '\\':
				b.WriteString(`\\`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			default:
				b.WriteRune(ch)
			}
		}
		b.WriteByte('\'')
	}
	b.WriteByte(')')
	return b.String()
}

// EncodeStatement serializes rows as a single INSERT statement.
func EncodeStatement(table string, rows []Row) string {
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, EncodeRow(row))
	}
	return fmt.Sprintf("INSERT INTO `%s` VALUES %s;", table, strings.Join(parts, ","))
}

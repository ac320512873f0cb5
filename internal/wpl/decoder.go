// Package wpl decodes the legacy WPL SQL dump and normalizes its rows
// into canonical property records.
package wpl

import (
	"strings"
)

// Field is one decoded scalar from a dump tuple. Quoted literals arrive
// with their escapes resolved; an unquoted NULL is carried as Null=true.
type Field struct {
	Value string
	Null  bool
}

// Row is one decoded tuple in declaration order.
type Row []Field

// Decoder extracts the tuples of INSERT statements targeting a single
// table from a contiguous dump block. Decoding holds no state between
// statements, so a block can always be re-decoded from its start.
type Decoder struct {
	table string
}

// NewDecoder returns a decoder for INSERT statements on the given table.
func NewDecoder(table string) *Decoder {
	return &Decoder{table: table}
}

// Decode scans the block and returns an iterator over every tuple of
// every INSERT statement for the decoder's table. The scan is the only
// side effect; no file or network I/O happens here.
func (d *Decoder) Decode(block string) *RowIter {
	var rows []Row

	rest := block
	for {
		body, ok := nextStatement(rest, d.table)
		if !ok {
			break
		}
		tuples, consumed := scanTuples(body)
		rows = append(rows, tuples...)
		rest = body[consumed:]
	}

	return &RowIter{rows: rows}
}

// RowIter is a cursor over decoded rows.
type RowIter struct {
	rows []Row
	pos  int
}

// Next returns the next row, or ok=false when the iterator is drained.
func (it *RowIter) Next() (Row, bool) {
	if it.pos >= len(it.rows) {
		return nil, false
	}
	row := it.rows[it.pos]
	it.pos++
	return row, true
}

// Len reports the total number of decoded rows.
func (it *RowIter) Len() int {
	return len(it.rows)
}

// Collect drains the iterator into a slice.
func (it *RowIter) Collect() []Row {
	var out []Row
	for {
		row, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, row)
	}
}

// nextStatement locates the next "INSERT INTO <table> ... VALUES" for the
// wanted table and returns everything after the VALUES keyword. Statements
// for other tables are skipped.
func nextStatement(block, table string) (body string, ok bool) {
	upper := strings.ToUpper(block)
	offset := 0
	for {
		i := strings.Index(upper[offset:], "INSERT INTO")
		if i < 0 {
			return "", false
		}
		pos := offset + i + len("INSERT INTO")

		name, afterName := readTableName(block[pos:])
		after := strings.TrimLeft(afterName, " \t\r\n")
		if name == table && len(after) >= len("VALUES") &&
			strings.EqualFold(after[:len("VALUES")], "VALUES") {
			return after[len("VALUES"):], true
		}
		offset = pos
	}
}

// readTableName consumes optional whitespace and backticks around the
// table identifier.
func readTableName(s string) (name, rest string) {
	s = strings.TrimLeft(s, " \t\r\n")
	s = strings.TrimPrefix(s, "`")
	end := strings.IndexFunc(s, func(r rune) bool {
		return r == '`' || r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '('
	})
	if end < 0 {
		return s, ""
	}
	name = s[:end]
	rest = strings.TrimPrefix(s[end:], "`")
	return name, rest
}

// scanTuples walks the VALUES body character by character. Commas, quotes
// and parentheses are only structurally significant outside an active
// quoted literal and outside an escape sequence. The scan stops at the
// statement-terminating semicolon and reports how many bytes it consumed.
func scanTuples(body string) ([]Row, int) {
	var (
		rows    []Row
		current Row
		field   strings.Builder
		inTuple bool
		inQuote bool
		escaped bool
		quoted  bool
	)

	flush := func() {
		current = append(current, makeField(field.String(), quoted))
		field.Reset()
		quoted = false
	}

	for i, ch := range body {
		if escaped {
			field.WriteRune(unescape(ch))
			escaped = false
			continue
		}
		if inQuote {
			switch ch {
			case '\\':
				escaped = true
			case '\'':
				inQuote = false
			default:
				field.WriteRune(ch)
			}
			continue
		}

		switch ch {
		case '\'':
			inQuote = true
			quoted = true
		case '(':
			if !inTuple {
				inTuple = true
				current = nil
			} else {
				field.WriteRune(ch)
			}
		case ')':
			if inTuple {
				flush()
				rows = append(rows, current)
				current = nil
				inTuple = false
			}
		case ',':
			if inTuple {
				flush()
			}
		case ';':
			if !inTuple {
				return rows, i + 1
			}
			field.WriteRune(ch)
		default:
			if inTuple {
				field.WriteRune(ch)
			}
		}
	}
	return rows, len(body)
}

func makeField(raw string, quoted bool) Field {
	if quoted {
		return Field{Value: raw}
	}
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "NULL") {
		return Field{Null: true}
	}
	return Field{Value: trimmed}
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '0':
		return 0
	default:
		return ch
	}
}

package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingTable   = errors.New("querybuilder: table is required")
	ErrMissingColumns = errors.New("querybuilder: columns are required")
	ErrUnsafeDelete   = errors.New("querybuilder: delete without conditions")
)

// sqlWriter accumulates SQL text and positional ($n) arguments.
type sqlWriter struct {
	buf  strings.Builder
	args []any
}

func (w *sqlWriter) text(parts ...string) {
	for _, p := range parts {
		w.buf.WriteString(p)
	}
}

func (w *sqlWriter) bind(v any) {
	w.args = append(w.args, v)
	w.buf.WriteByte('$')
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes raw SQL, binding each '?' to the next value.
func (w *sqlWriter) expr(raw string, values []any) {
	next := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '?' && next < len(values) {
			w.bind(values[next])
			next++
			continue
		}
		w.buf.WriteByte(raw[i])
	}
}

func (w *sqlWriter) where(conds []Condition) {
	if len(conds) == 0 {
		return
	}
	w.text(" WHERE ")
	for i, c := range conds {
		if i > 0 {
			w.text(" AND ")
		}
		c(w)
	}
}

func (w *sqlWriter) returning(cols []string) {
	if len(cols) > 0 {
		w.text(" RETURNING ", strings.Join(cols, ", "))
	}
}

func (w *sqlWriter) result() (string, []any, error) {
	return w.buf.String(), w.args, nil
}

// Condition renders one predicate of a WHERE clause.
type Condition func(w *sqlWriter)

func Eq(column string, value any) Condition {
	return func(w *sqlWriter) {
		w.text(column, " = ")
		w.bind(value)
	}
}

// In matches any of values; an empty list matches nothing.
func In[T any](column string, values []T) Condition {
	return func(w *sqlWriter) {
		if len(values) == 0 {
			w.text("1=0")
			return
		}
		w.text(column, " IN (")
		for i, v := range values {
			if i > 0 {
				w.text(", ")
			}
			w.bind(v)
		}
		w.text(")")
	}
}

// NotDistinctFrom is equality that also matches NULL against NULL.
func NotDistinctFrom(column string, value any) Condition {
	return func(w *sqlWriter) {
		w.text(column, " IS NOT DISTINCT FROM ")
		w.bind(value)
	}
}

func IsNull(column string) Condition {
	return func(w *sqlWriter) { w.text(column, " IS NULL") }
}

// Or joins conditions with OR inside parentheses.
func Or(conds ...Condition) Condition {
	return func(w *sqlWriter) {
		w.text("(")
		for i, c := range conds {
			if i > 0 {
				w.text(" OR ")
			}
			c(w)
		}
		w.text(")")
	}
}

// Expr is a raw predicate with '?' placeholders.
func Expr(raw string, values ...any) Condition {
	return func(w *sqlWriter) { w.expr(raw, values) }
}

type SelectBuilder struct {
	columns   []string
	table     string
	where     []Condition
	orderBy   []string
	limit     int
	offset    int
	forUpdate bool
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) Offset(offset int) *SelectBuilder {
	b.offset = offset
	return b
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (b *SelectBuilder) ForUpdate() *SelectBuilder {
	b.forUpdate = true
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, ErrMissingColumns
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, ErrMissingTable
	}

	var w sqlWriter
	w.text("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.text(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.text(" LIMIT ", strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		w.text(" OFFSET ", strconv.Itoa(b.offset))
	}
	if b.forUpdate {
		w.text(" FOR UPDATE")
	}
	return w.result()
}

type InsertBuilder struct {
	table     string
	columns   []string
	values    []any
	returning []string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Set(column string, value any) *InsertBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = append(b.returning, columns...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, ErrMissingTable
	}
	if len(b.columns) == 0 {
		return "", nil, ErrMissingColumns
	}

	var w sqlWriter
	w.text("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES (")
	for i, v := range b.values {
		if i > 0 {
			w.text(", ")
		}
		w.bind(v)
	}
	w.text(")")
	w.returning(b.returning)
	return w.result()
}

type assignment struct {
	column string
	raw    string
	values []any
}

type UpdateBuilder struct {
	table     string
	sets      []assignment
	where     []Condition
	returning []string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: "?", values: []any{value}})
	return b
}

// SetExpr assigns a raw SQL expression such as NOW().
func (b *UpdateBuilder) SetExpr(column, raw string, values ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: raw, values: values})
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	b.returning = append(b.returning, columns...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, ErrMissingTable
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("querybuilder: update %s has no assignments", b.table)
	}

	var w sqlWriter
	w.text("UPDATE ", b.table, " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.text(", ")
		}
		w.text(s.column, " = ")
		w.expr(s.raw, s.values)
	}
	w.where(b.where)
	w.returning(b.returning)
	return w.result()
}

type DeleteBuilder struct {
	table     string
	where     []Condition
	returning []string
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *DeleteBuilder) Returning(columns ...string) *DeleteBuilder {
	b.returning = append(b.returning, columns...)
	return b
}

// ToSQL refuses to build an unconditional DELETE.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, ErrMissingTable
	}
	if len(b.where) == 0 {
		return "", nil, ErrUnsafeDelete
	}

	var w sqlWriter
	w.text("DELETE FROM ", b.table)
	w.where(b.where)
	w.returning(b.returning)
	return w.result()
}

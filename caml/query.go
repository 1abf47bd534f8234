package caml

import (
	"fmt"
	"strings"
)

// Query is the root of a fragment: one where-statement plus ordered
// group-by and order-by field lists.
//
//	<Query><Where>{statement}</Where><GroupBy>...</GroupBy><OrderBy>...</OrderBy></Query>
//
// GroupBy and OrderBy blocks are omitted when empty. A nil statement renders
// as an empty <Where></Where>.
type Query struct {
	statement Statement
	orderBy   []FieldRef
	groupBy   []FieldRef
}

// Build starts a query from its root statement, which may be nil.
func Build(statement Statement) *Query {
	if isNilStatement(statement) {
		statement = nil
	}
	return &Query{statement: statement}
}

// Statement returns the root statement, or nil.
func (q *Query) Statement() Statement { return q.statement }

// OrderByFields returns a copy of the order-by list.
func (q *Query) OrderByFields() []FieldRef {
	out := make([]FieldRef, len(q.orderBy))
	copy(out, q.orderBy)
	return out
}

// GroupByFields returns a copy of the group-by list.
func (q *Query) GroupByFields() []FieldRef {
	out := make([]FieldRef, len(q.groupBy))
	copy(out, q.groupBy)
	return out
}

// OrderBy appends order-by fields. Ascending is the default; use
// Descending() on the FieldRef for descending order.
func (q *Query) OrderBy(fields ...FieldRef) error {
	if err := checkFields("orderBy", fields); err != nil {
		return err
	}
	q.orderBy = append(q.orderBy, fields...)
	return nil
}

// GroupBy appends group-by fields.
func (q *Query) GroupBy(fields ...FieldRef) error {
	if err := checkFields("groupBy", fields); err != nil {
		return err
	}
	q.groupBy = append(q.groupBy, fields...)
	return nil
}

// GroupByName appends group-by fields given by plain names.
func (q *Query) GroupByName(names ...string) error {
	fields := make([]FieldRef, 0, len(names))
	for _, name := range names {
		f, err := NewFieldRef(name)
		if err != nil {
			return err
		}
		fields = append(fields, f)
	}
	q.groupBy = append(q.groupBy, fields...)
	return nil
}

// Render returns the query markup. With whereOnly set only the
// <Where>...</Where> element is returned.
func (q *Query) Render(whereOnly bool) string {
	var b strings.Builder
	if whereOnly {
		q.writeWhere(&b)
		return b.String()
	}

	b.WriteString("<Query>")
	q.writeWhere(&b)
	writeFieldBlock(&b, "GroupBy", q.groupBy)
	writeFieldBlock(&b, "OrderBy", q.orderBy)
	b.WriteString("</Query>")
	return b.String()
}

func (q *Query) writeWhere(b *strings.Builder) {
	b.WriteString("<Where>")
	if q.statement != nil {
		writeStatement(b, q.statement)
	}
	b.WriteString("</Where>")
}

func writeFieldBlock(b *strings.Builder, tag string, fields []FieldRef) {
	if len(fields) == 0 {
		return
	}
	openTag(b, tag)
	for _, f := range fields {
		f.writeTo(b, nil)
	}
	closeTag(b, tag)
}

func checkFields(param string, fields []FieldRef) error {
	for i, f := range fields {
		if f.IsZero() {
			return newArgumentError(param, fmt.Sprintf("field %d has no name", i))
		}
	}
	return nil
}

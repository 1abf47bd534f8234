// Package caml builds CAML query fragments from an immutable expression
// tree.
//
// CAML is the XML-tagged filter, sort and grouping language consumed by
// list-data query engines. This package composes the tree and renders it;
// it never executes a query, never checks field names against a schema and
// never rewrites the tree.
//
// ARCHITECTURE:
//
//	FieldRef, Value          leaves
//	ComparisonOperator       predicate over one field
//	LogicalJoin              And / Or over statements (recursive)
//	Query                    where-statement + GroupBy + OrderBy
//
// Statement is a sealed interface using the marker method pattern. Only
// *ComparisonOperator and *LogicalJoin implement it, which keeps the
// renderer and Lint exhaustive.
//
// CONSTRUCTION:
//
// Arguments are validated when a node is built or mutated, never when it is
// rendered. Constructors that can fail return an error wrapping
// ErrInvalidArgument; Must turns them into panics for literal trees:
//
//	q := caml.Build(caml.Must(caml.And(
//	    caml.Must(caml.EqualLiteral(caml.Field("Status"), caml.ValueTypeText, "Active")),
//	    caml.Must(caml.GreaterThan(caml.Field("Amount"), caml.Integer(100))),
//	)))
//	_ = q.OrderBy(caml.Field("Created", caml.Descending()))
//	fragment := q.Render(false)
//
// WIRE FORMAT:
//
// Attributes are single-quoted. Nothing is escaped: field names, attribute
// values and scalar literals are emitted exactly as given, so text
// containing ', <, > or & produces markup the engine will misread. This
// matches the format existing consumers expect. Lint reports such text
// without altering the output.
//
// CONCURRENCY:
//
// Rendering is pure and reentrant; a finished tree may be rendered from
// many goroutines. The append methods (LogicalJoin.AddStatement,
// Query.OrderBy, Query.GroupBy, ComparisonOperator.AddAttribute) are not
// synchronized.
package caml

// Package querydef loads declarative query definitions and compiles them
// into caml.Query trees.
//
// Definitions are written in YAML or CUE using the same shape:
//
//	name: open_orders
//	where:
//	  and:
//	    - eq: {field: Status, value: Open}
//	    - geq: {field: Created, value: {today: {offset: -30}}}
//	order_by:
//	  - {name: Created, ascending: false}
//
// In CUE, definitions live under the top-level `query` field and take their
// name from the field label.
//
// Decode validates structure; Build validates against the caml constructors.
// Both report *DefinitionError with the path of the failing element and,
// where known, its source position.
//
// Canonical, MarshalCanonical and Fingerprint give every definition a
// content identity independent of source formatting and key order.
package querydef

// Package harness runs rendering scenarios: YAML files that load query
// definitions, render them, and check the fragments.
//
// # Scenario Format
//
//	name: orders
//	description: "What this scenario validates"
//	definitions:
//	  - path: ../defs/orders.yaml     # file or directory, relative to the scenario
//	  - inline:                       # same shape the YAML loader accepts
//	      name: company
//	      where:
//	        eq: {field: Company, value: Contoso}
//	cases:
//	  - definition: company
//	    where_only: true              # overrides the definition's setting
//	    expect:
//	      equals: "<Where>...</Where>"
//	      contains: ["Contoso"]
//	      not_contains: ["<OrderBy>"]
//	      order: [Where, Eq, FieldRef]
//	      lint_clean: true
//	  - definition: broken
//	    expect:
//	      error: unknown membership type
//
// # Expectations
//
//   - equals: the fragment matches exactly
//   - contains / not_contains: substring checks
//   - order: element names open in this order, gaps allowed
//   - lint_clean: caml.Lint reports no warnings (or, when false, some)
//   - error: the definition fails to build with this text in the message
//
// # Golden Snapshots
//
// Snapshot turns a result into one text block per case. RunWithGolden
// compares it with testdata/golden/<scenario>.golden through goldie; the
// camlq test command keeps snapshots in a golden/ directory next to each
// scenario file.
package harness

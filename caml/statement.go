package caml

// Statement is a node that can appear inside a <Where> clause.
//
// This is a sealed interface: only *LogicalJoin and *ComparisonOperator
// implement it, so renderers and the lint pass can switch exhaustively.
type Statement interface {
	// Render returns the node's markup. Rendering has no side effects and
	// may be called concurrently on a finished tree.
	Render() string

	statementNode() // Marker method - seals interface to this package
}

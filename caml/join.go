package caml

import (
	"fmt"
	"strings"
)

// LogicalJoin combines child statements with And or Or.
//
// Rendering depends on the number of children:
//
//	0 children   ""
//	1 child      the child's own markup, no join tag
//	2 children   <And>c1c2</And>
//	N children   <And>c1<And>c2 ... <And>cN-1 cN</And>...</And></And>
//
// The N-child form nests to the right, giving N-1 join tags and keeping the
// insertion order of the children at every level.
//
// Children may be appended until the join is rendered. Appending is not
// synchronized and nothing prevents a join from being added to itself;
// keep a tree under construction single-owner.
type LogicalJoin struct {
	joinType   LogicalJoinType
	tag        string
	statements []Statement
}

func (*LogicalJoin) statementNode() {}

// NewLogicalJoin builds a join of type t over statements.
func NewLogicalJoin(t LogicalJoinType, statements []Statement) (*LogicalJoin, error) {
	tag, err := t.Tag()
	if err != nil {
		return nil, err
	}
	if err := checkStatements(statements); err != nil {
		return nil, err
	}
	j := &LogicalJoin{joinType: t, tag: tag}
	j.statements = make([]Statement, len(statements))
	copy(j.statements, statements)
	return j, nil
}

// And builds an <And> join.
func And(statements ...Statement) (*LogicalJoin, error) {
	return NewLogicalJoin(JoinAnd, statements)
}

// Or builds an <Or> join.
func Or(statements ...Statement) (*LogicalJoin, error) {
	return NewLogicalJoin(JoinOr, statements)
}

// JoinType returns the join's type.
func (j *LogicalJoin) JoinType() LogicalJoinType { return j.joinType }

// Statements returns a copy of the children in insertion order.
func (j *LogicalJoin) Statements() []Statement {
	out := make([]Statement, len(j.statements))
	copy(out, j.statements)
	return out
}

// Len returns the number of children.
func (j *LogicalJoin) Len() int { return len(j.statements) }

// AddStatement appends one child.
func (j *LogicalJoin) AddStatement(s Statement) error {
	return j.AddStatements(s)
}

// AddStatements appends children in order. If any child is nil none are
// appended.
func (j *LogicalJoin) AddStatements(statements ...Statement) error {
	if err := checkStatements(statements); err != nil {
		return err
	}
	j.statements = append(j.statements, statements...)
	return nil
}

// Render returns the join markup.
func (j *LogicalJoin) Render() string {
	var b strings.Builder
	j.writeTo(&b)
	return b.String()
}

func (j *LogicalJoin) writeTo(b *strings.Builder) {
	switch len(j.statements) {
	case 0:
		return
	case 1:
		writeStatement(b, j.statements[0])
	default:
		j.fold(b, j.statements)
	}
}

// fold wraps the head and the folded tail in one join tag, stopping when two
// statements remain.
func (j *LogicalJoin) fold(b *strings.Builder, rest []Statement) {
	openTag(b, j.tag)
	writeStatement(b, rest[0])
	if len(rest) == 2 {
		writeStatement(b, rest[1])
	} else {
		j.fold(b, rest[1:])
	}
	closeTag(b, j.tag)
}

func writeStatement(b *strings.Builder, s Statement) {
	switch node := s.(type) {
	case *LogicalJoin:
		node.writeTo(b)
	case *ComparisonOperator:
		node.writeTo(b)
	default:
		b.WriteString(s.Render())
	}
}

func checkStatements(statements []Statement) error {
	for i, s := range statements {
		if isNilStatement(s) {
			return newArgumentError("statements", fmt.Sprintf("statement %d is nil", i))
		}
	}
	return nil
}

func isNilStatement(s Statement) bool {
	switch node := s.(type) {
	case nil:
		return true
	case *LogicalJoin:
		return node == nil
	case *ComparisonOperator:
		return node == nil
	default:
		return false
	}
}

package caml

import (
	"fmt"
	"strings"
)

// LintResult reports markup hazards found in a query tree.
type LintResult struct {
	// Clean is true when no warnings were produced.
	Clean bool

	// Warnings lists each hazard found, in tree order.
	Warnings []string
}

// unsafeChars are the characters that break single-quoted attributes or
// element content when emitted verbatim.
const unsafeChars = "'<>&"

// Lint walks a query and reports text that the renderer will emit verbatim
// but that the consuming engine is likely to misread: attribute values or
// literals containing a single quote, '<', '>' or '&', and joins whose
// child count makes the join tag disappear.
//
// Lint never changes what Render produces. It is a pure function.
func Lint(q *Query) LintResult {
	l := &linter{warnings: []string{}}
	if q == nil {
		l.addWarning("nil query")
	} else {
		if q.statement != nil {
			l.lintStatement(q.statement, "where")
		}
		for i, f := range q.groupBy {
			l.lintField(f, fmt.Sprintf("groupBy[%d]", i))
		}
		for i, f := range q.orderBy {
			l.lintField(f, fmt.Sprintf("orderBy[%d]", i))
		}
	}
	return LintResult{
		Clean:    len(l.warnings) == 0,
		Warnings: l.warnings,
	}
}

// LintStatement is Lint for a bare statement.
func LintStatement(s Statement) LintResult {
	return Lint(Build(s))
}

// linter accumulates warnings during traversal.
type linter struct {
	warnings []string
}

func (l *linter) addWarning(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *linter) lintStatement(s Statement, path string) {
	switch node := s.(type) {
	case *LogicalJoin:
		l.lintJoin(node, path)
	case *ComparisonOperator:
		l.lintOperator(node, path)
	default:
		l.addWarning("%s: unknown statement type %T", path, s)
	}
}

func (l *linter) lintJoin(j *LogicalJoin, path string) {
	switch len(j.statements) {
	case 0:
		l.addWarning("%s: empty %s renders no markup", path, j.tag)
	case 1:
		l.addWarning("%s: %s with a single statement renders without the %s tag", path, j.tag, j.tag)
	}
	for i, child := range j.statements {
		l.lintStatement(child, fmt.Sprintf("%s.%s[%d]", path, j.tag, i))
	}
}

func (l *linter) lintOperator(c *ComparisonOperator, path string) {
	path = path + "." + c.tag
	l.lintField(c.field, path+".field")
	for _, name := range c.attrNames {
		l.checkText(path+".attribute "+name, name)
		l.checkText(path+".attribute "+name, c.attrs[name])
	}
	switch {
	case c.opType == OpIn:
		if len(c.values) == 0 {
			l.addWarning("%s: In has no values", path)
		}
		for i, v := range c.values {
			l.lintValue(v, fmt.Sprintf("%s.values[%d]", path, i))
		}
	case c.opType.isComplex():
		l.lintValue(c.value, path+".value")
	}
}

func (l *linter) lintField(f FieldRef, path string) {
	for _, a := range f.attributes() {
		l.checkText(path+"."+a.name, a.value)
	}
}

func (l *linter) lintValue(v Value, path string) {
	switch v.kind {
	case kindScalar:
		l.checkText(path, fmt.Sprint(v.literal))
	case kindListProperties:
		for i, item := range v.items {
			l.checkText(fmt.Sprintf("%s.items[%d].Select", path, i), item.selector)
			l.checkText(fmt.Sprintf("%s.items[%d].Default", path, i), item.deflt)
		}
	}
}

func (l *linter) checkText(path, text string) {
	if i := strings.IndexAny(text, unsafeChars); i >= 0 {
		l.addWarning("%s: %q contains %q, which is emitted unescaped", path, text, text[i:i+1])
	}
}

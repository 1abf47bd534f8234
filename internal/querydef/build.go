package querydef

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/camlkit/caml"
)

var comparisonOps = map[string]caml.ComparisonOperatorType{
	OpEq:                caml.OpEqual,
	OpNeq:               caml.OpNotEqual,
	OpGt:                caml.OpGreaterThan,
	OpGeq:               caml.OpGreaterThanOrEqualTo,
	OpLt:                caml.OpLowerThan,
	OpLeq:               caml.OpLowerThanOrEqualTo,
	OpBeginsWith:        caml.OpBeginsWith,
	OpContains:          caml.OpContains,
	OpDateRangesOverlap: caml.OpDateRangesOverlap,
	OpIncludes:          caml.OpIncludes,
	OpNotIncludes:       caml.OpNotIncludes,
}

// Build compiles a definition into a caml.Query. Every failure is a
// *DefinitionError; failures raised by the caml package also unwrap to
// caml.ErrInvalidArgument.
func Build(def *Definition) (*caml.Query, error) {
	if def == nil {
		return nil, errors.New("querydef: nil definition")
	}
	q, err := build(def)
	if err != nil {
		var de *DefinitionError
		if errors.As(err, &de) {
			de.Definition = def.Name
		}
		return nil, err
	}
	return q, nil
}

// Render builds def and renders it, honouring WhereOnly.
func Render(def *Definition) (string, error) {
	q, err := Build(def)
	if err != nil {
		return "", err
	}
	return q.Render(def.WhereOnly), nil
}

func build(def *Definition) (*caml.Query, error) {
	var root caml.Statement
	if def.Where != nil {
		s, err := buildNode(def.Where, path{"where"})
		if err != nil {
			return nil, err
		}
		root = s
	}

	q := caml.Build(root)
	for i, spec := range def.OrderBy {
		f, err := buildField(spec, path{"order_by"}.index(i))
		if err != nil {
			return nil, err
		}
		if err := q.OrderBy(f); err != nil {
			return nil, wrapAt(path{"order_by"}.index(i), err)
		}
	}
	for i, spec := range def.GroupBy {
		f, err := buildField(spec, path{"group_by"}.index(i))
		if err != nil {
			return nil, err
		}
		if err := q.GroupBy(f); err != nil {
			return nil, wrapAt(path{"group_by"}.index(i), err)
		}
	}
	return q, nil
}

func buildNode(n *Node, p path) (caml.Statement, error) {
	p = p.key(n.Op)
	if n.IsJoin() {
		children := make([]caml.Statement, 0, len(n.Children))
		for i, child := range n.Children {
			s, err := buildNode(child, p.index(i))
			if err != nil {
				return nil, err
			}
			children = append(children, s)
		}
		joinType := caml.JoinAnd
		if n.Op == OpOr {
			joinType = caml.JoinOr
		}
		j, err := caml.NewLogicalJoin(joinType, children)
		if err != nil {
			return nil, wrapAt(p, err)
		}
		return j, nil
	}

	op, err := buildPredicate(n, p)
	if err != nil {
		return nil, err
	}

	// Sorted so the rendered attribute order does not depend on map order.
	names := make([]string, 0, len(n.Attributes))
	for name := range n.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := op.AddAttribute(name, n.Attributes[name]); err != nil {
			return nil, wrapAt(p.key("attributes").key(name), err)
		}
	}
	return op, nil
}

func buildPredicate(n *Node, p path) (*caml.ComparisonOperator, error) {
	field, err := buildField(n.Field, p.key("field"))
	if err != nil {
		return nil, err
	}

	var op *caml.ComparisonOperator
	switch n.Op {
	case OpIsNull:
		op, err = caml.IsNull(field)
	case OpIsNotNull:
		op, err = caml.IsNotNull(field)
	case OpMembership:
		m, perr := caml.ParseMembershipType(n.Membership)
		if perr != nil {
			return nil, wrapAt(p.key("membership"), perr)
		}
		op, err = caml.Membership(field, m)
	case OpIn:
		values := make([]caml.Value, 0, len(n.Values))
		for i, spec := range n.Values {
			v, verr := buildValue(spec, n, p.key("values").index(i))
			if verr != nil {
				return nil, verr
			}
			values = append(values, v)
		}
		op, err = caml.In(field, values...)
	default:
		opType, ok := comparisonOps[n.Op]
		if !ok {
			return nil, errAt(p, "unknown operator %q", n.Op)
		}
		if n.Value == nil {
			return nil, errAt(p.key("value"), "value is required")
		}
		v, verr := buildValue(*n.Value, n, p.key("value"))
		if verr != nil {
			return nil, verr
		}
		op, err = caml.Compare(opType, field, v)
	}
	if err != nil {
		return nil, wrapAt(p, err)
	}
	return op, nil
}

// buildValue applies the predicate's type and include_time to one value.
// A literal without an explicit type takes Text, Integer or Boolean from its
// Go type; dynamic values keep their own default type.
func buildValue(spec ValueSpec, n *Node, p path) (caml.Value, error) {
	var opts []caml.ValueOption
	if n.Type != "" {
		t, err := caml.ParseValueType(n.Type)
		if err != nil {
			return caml.Value{}, wrapAt(p.key("type"), err)
		}
		opts = append(opts, caml.WithType(t))
	}
	if n.IncludeTime != nil {
		opts = append(opts, caml.IncludeTime(*n.IncludeTime))
	}

	switch spec.Kind {
	case ValueLiteral:
		t := literalType(spec.Literal)
		v, err := caml.Scalar(t, spec.Literal, opts...)
		if err != nil {
			return caml.Value{}, wrapAt(p, err)
		}
		return v, nil
	case ValueNow:
		return caml.Now(opts...), nil
	case ValueToday:
		if spec.Offset != nil {
			return caml.TodayOffset(*spec.Offset, opts...), nil
		}
		return caml.Today(opts...), nil
	case ValueMonth:
		return caml.Month(opts...), nil
	case ValueUserID:
		return caml.UserID(opts...), nil
	case ValueListProperties:
		items := make([]caml.ListPropertyItem, 0, len(spec.Items))
		for i, lp := range spec.Items {
			item, err := buildListProperty(lp)
			if err != nil {
				return caml.Value{}, wrapAt(p.key(ValueListProperties).index(i), err)
			}
			items = append(items, item)
		}
		v, err := caml.ListProperties(caml.ValueTypeText, items, opts...)
		if err != nil {
			return caml.Value{}, wrapAt(p, err)
		}
		return v, nil
	default:
		return caml.Value{}, errAt(p, "unknown value kind %q", spec.Kind)
	}
}

func literalType(lit any) caml.ValueType {
	switch lit.(type) {
	case int64:
		return caml.ValueTypeInteger
	case bool:
		return caml.ValueTypeBoolean
	default:
		return caml.ValueTypeText
	}
}

func buildListProperty(lp ListPropertySpec) (caml.ListPropertyItem, error) {
	opts := []caml.ListPropertyOption{}
	if lp.Default != "" {
		opts = append(opts, caml.DefaultText(lp.Default))
	}
	flags := []struct {
		value *bool
		opt   func(bool) caml.ListPropertyOption
	}{
		{lp.AutoHyperLink, caml.AutoHyperLink},
		{lp.AutoHyperLinkNoEncoding, caml.AutoHyperLinkNoEncoding},
		{lp.AutoNewLine, caml.AutoNewLine},
		{lp.ExpandXML, caml.ExpandXML},
		{lp.HTMLEncode, caml.HTMLEncode},
		{lp.StripWS, caml.StripWS},
		{lp.URLEncode, caml.URLEncode},
		{lp.URLEncodeAsURL, caml.URLEncodeAsURL},
	}
	for _, f := range flags {
		if f.value != nil {
			opts = append(opts, f.opt(*f.value))
		}
	}
	return caml.NewListPropertyItem(lp.Select, opts...)
}

func buildField(spec FieldSpec, p path) (caml.FieldRef, error) {
	opts := []caml.FieldRefOption{
		caml.WithAlias(spec.Alias),
		caml.WithCreateURL(spec.CreateURL),
		caml.WithDisplayName(spec.DisplayName),
		caml.WithFormat(spec.Format),
		caml.WithID(spec.ID),
		caml.WithKey(spec.Key),
		caml.WithList(spec.List),
		caml.WithRefType(spec.RefType),
		caml.WithShowField(spec.ShowField),
	}
	if spec.Function != "" {
		fn, err := caml.ParseFieldRefFunction(spec.Function)
		if err != nil {
			return caml.FieldRef{}, wrapAt(p.key("function"), err)
		}
		opts = append(opts, caml.WithFunction(fn))
	}
	bools := []struct {
		value *bool
		opt   func(bool) caml.FieldRefOption
	}{
		{spec.Ascending, caml.WithAscending},
		{spec.Explicit, caml.WithExplicit},
		{spec.LookupID, caml.WithLookupID},
		{spec.TextOnly, caml.WithTextOnly},
	}
	for _, b := range bools {
		if b.value != nil {
			opts = append(opts, b.opt(*b.value))
		}
	}

	f, err := caml.NewFieldRef(spec.Name, opts...)
	if err != nil {
		return caml.FieldRef{}, wrapAt(p, err)
	}
	return f, nil
}

// MustBuild is like Build but panics on error. Use only in tests.
func MustBuild(def *Definition) *caml.Query {
	q, err := Build(def)
	if err != nil {
		panic(fmt.Sprintf("querydef: %v", err))
	}
	return q
}

package querydef

import (
	"slices"
)

// Definition is a named, declarative query. It is the serializable form of a
// caml.Query: Build turns it into the expression tree, Canonical into the
// stable map used for storage and fingerprints.
type Definition struct {
	Name        string
	Description string
	Where       *Node
	OrderBy     []FieldSpec
	GroupBy     []FieldSpec
	WhereOnly   bool

	// Source is the file the definition was loaded from. It is not part of
	// the canonical form.
	Source string
}

// Node is one element of the where tree: a join (and/or) over children, or a
// predicate over one field.
type Node struct {
	Op string

	// Joins.
	Children []*Node

	// Predicates.
	Field       FieldSpec
	Type        string
	IncludeTime *bool
	Value       *ValueSpec
	Values      []ValueSpec
	Membership  string
	Attributes  map[string]string
}

// IsJoin reports whether the node is an and/or join.
func (n *Node) IsJoin() bool {
	return n.Op == OpAnd || n.Op == OpOr
}

// FieldSpec describes a caml.FieldRef.
type FieldSpec struct {
	Name        string
	Alias       string
	CreateURL   string
	DisplayName string
	Format      string
	ID          string
	Key         string
	List        string
	RefType     string
	ShowField   string
	Function    string
	Ascending   *bool
	Explicit    *bool
	LookupID    *bool
	TextOnly    *bool
}

// Value kinds.
const (
	ValueLiteral        = "literal"
	ValueNow            = "now"
	ValueToday          = "today"
	ValueMonth          = "month"
	ValueUserID         = "user_id"
	ValueListProperties = "list_properties"
)

// ValueSpec describes a caml.Value. Literal holds a string, int64 or bool.
type ValueSpec struct {
	Kind    string
	Literal any
	Offset  *int
	Items   []ListPropertySpec
}

// ListPropertySpec describes a caml.ListPropertyItem.
type ListPropertySpec struct {
	Select                  string
	Default                 string
	AutoHyperLink           *bool
	AutoHyperLinkNoEncoding *bool
	AutoNewLine             *bool
	ExpandXML               *bool
	HTMLEncode              *bool
	StripWS                 *bool
	URLEncode               *bool
	URLEncodeAsURL          *bool
}

// Operator keywords used as node keys.
const (
	OpAnd               = "and"
	OpOr                = "or"
	OpEq                = "eq"
	OpNeq               = "neq"
	OpGt                = "gt"
	OpGeq               = "geq"
	OpLt                = "lt"
	OpLeq               = "leq"
	OpIsNull            = "is_null"
	OpIsNotNull         = "is_not_null"
	OpBeginsWith        = "begins_with"
	OpContains          = "contains"
	OpDateRangesOverlap = "date_ranges_overlap"
	OpIncludes          = "includes"
	OpNotIncludes       = "not_includes"
	OpIn                = "in"
	OpMembership        = "membership"
)

// Canonical returns the definition as a generic map of strings, int64s,
// bools, slices and maps, in the same shape the loaders accept. Empty and
// unset fields are omitted so that equivalent definitions compare equal.
func (d *Definition) Canonical() map[string]any {
	out := map[string]any{"name": d.Name}
	putString(out, "description", d.Description)
	if d.Where != nil {
		out["where"] = d.Where.canonical()
	}
	if len(d.OrderBy) > 0 {
		out["order_by"] = canonicalFields(d.OrderBy)
	}
	if len(d.GroupBy) > 0 {
		out["group_by"] = canonicalFields(d.GroupBy)
	}
	if d.WhereOnly {
		out["where_only"] = true
	}
	return out
}

func (n *Node) canonical() map[string]any {
	if n.IsJoin() {
		children := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, c.canonical())
		}
		return map[string]any{n.Op: children}
	}

	body := map[string]any{"field": n.Field.canonical()}
	putString(body, "type", n.Type)
	putBool(body, "include_time", n.IncludeTime)
	if n.Value != nil {
		body["value"] = n.Value.canonical()
	}
	if n.Op == OpIn {
		values := make([]any, 0, len(n.Values))
		for _, v := range n.Values {
			values = append(values, v.canonical())
		}
		body["values"] = values
	}
	putString(body, "membership", n.Membership)
	if len(n.Attributes) > 0 {
		attrs := make(map[string]any, len(n.Attributes))
		for k, v := range n.Attributes {
			attrs[k] = v
		}
		body["attributes"] = attrs
	}
	return map[string]any{n.Op: body}
}

func (f FieldSpec) canonical() map[string]any {
	out := map[string]any{"name": f.Name}
	putString(out, "alias", f.Alias)
	putString(out, "create_url", f.CreateURL)
	putString(out, "display_name", f.DisplayName)
	putString(out, "format", f.Format)
	putString(out, "id", f.ID)
	putString(out, "key", f.Key)
	putString(out, "list", f.List)
	putString(out, "ref_type", f.RefType)
	putString(out, "show_field", f.ShowField)
	putString(out, "function", f.Function)
	putBool(out, "ascending", f.Ascending)
	putBool(out, "explicit", f.Explicit)
	putBool(out, "lookup_id", f.LookupID)
	putBool(out, "text_only", f.TextOnly)
	return out
}

func canonicalFields(fields []FieldSpec) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.canonical())
	}
	return out
}

func (v ValueSpec) canonical() any {
	switch v.Kind {
	case ValueLiteral:
		return v.Literal
	case ValueToday:
		body := map[string]any{}
		if v.Offset != nil {
			body["offset"] = int64(*v.Offset)
		}
		return map[string]any{ValueToday: body}
	case ValueListProperties:
		items := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, item.canonical())
		}
		return map[string]any{ValueListProperties: items}
	default:
		return map[string]any{v.Kind: map[string]any{}}
	}
}

func (i ListPropertySpec) canonical() map[string]any {
	out := map[string]any{"select": i.Select}
	putString(out, "default", i.Default)
	putBool(out, "auto_hyperlink", i.AutoHyperLink)
	putBool(out, "auto_hyperlink_no_encoding", i.AutoHyperLinkNoEncoding)
	putBool(out, "auto_newline", i.AutoNewLine)
	putBool(out, "expand_xml", i.ExpandXML)
	putBool(out, "html_encode", i.HTMLEncode)
	putBool(out, "strip_ws", i.StripWS)
	putBool(out, "url_encode", i.URLEncode)
	putBool(out, "url_encode_as_url", i.URLEncodeAsURL)
	return out
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func putBool(m map[string]any, key string, value *bool) {
	if value != nil {
		m[key] = *value
	}
}

// predicateOps lists every predicate keyword in a fixed order, for messages.
var predicateOps = []string{
	OpEq, OpNeq, OpGt, OpGeq, OpLt, OpLeq, OpIsNull, OpIsNotNull,
	OpBeginsWith, OpContains, OpDateRangesOverlap, OpIncludes, OpNotIncludes,
	OpIn, OpMembership,
}

func isPredicateOp(op string) bool {
	return slices.Contains(predicateOps, op)
}

package querydef

import (
	"encoding/json"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Decode converts a generic document (as produced by yaml.v3 or
// encoding/json with UseNumber) into a Definition. Unknown keys are
// rejected. Errors are *DefinitionError carrying the failing path.
func Decode(raw any) (*Definition, error) {
	return decodeWithin(raw, nil)
}

var definitionKeys = []string{"name", "description", "where", "order_by", "group_by", "where_only"}

func decodeDefinition(raw any, p path) (*Definition, error) {
	m, err := asMap(raw, p)
	if err != nil {
		return nil, err
	}
	def := &Definition{}
	if name, ok := m["name"]; ok {
		if def.Name, err = asString(name, p.key("name")); err != nil {
			return def, err
		}
	}
	if err := checkKeys(m, definitionKeys, p); err != nil {
		return def, err
	}
	if def.Name == "" {
		return def, errAt(p.key("name"), "name is required")
	}
	if desc, ok := m["description"]; ok {
		if def.Description, err = asString(desc, p.key("description")); err != nil {
			return def, err
		}
	}
	if where, ok := m["where"]; ok && where != nil {
		if def.Where, err = decodeNode(where, p.key("where")); err != nil {
			return def, err
		}
	}
	if def.OrderBy, err = decodeFieldList(m["order_by"], p.key("order_by")); err != nil {
		return def, err
	}
	if def.GroupBy, err = decodeFieldList(m["group_by"], p.key("group_by")); err != nil {
		return def, err
	}
	if wo, ok := m["where_only"]; ok {
		if def.WhereOnly, err = asBool(wo, p.key("where_only")); err != nil {
			return def, err
		}
	}
	return def, nil
}

func decodeNode(raw any, p path) (*Node, error) {
	m, err := asMap(raw, p)
	if err != nil {
		return nil, err
	}
	if len(m) != 1 {
		return nil, errAt(p, "node must have exactly one operator key, found %d (%s)", len(m), strings.Join(sortedKeys(m), ", "))
	}

	var op string
	var body any
	for k, v := range m {
		op, body = k, v
	}
	p = p.key(op)

	switch {
	case op == OpAnd || op == OpOr:
		list, err := asList(body, p)
		if err != nil {
			return nil, err
		}
		node := &Node{Op: op, Children: make([]*Node, 0, len(list))}
		for i, item := range list {
			child, err := decodeNode(item, p.index(i))
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
		return node, nil
	case isPredicateOp(op):
		return decodePredicate(op, body, p)
	default:
		return nil, errAt(p, "unknown operator %q", op)
	}
}

var predicateKeys = []string{"field", "type", "include_time", "value", "values", "membership", "attributes"}

func decodePredicate(op string, raw any, p path) (*Node, error) {
	m, err := asMap(raw, p)
	if err != nil {
		return nil, err
	}
	if err := checkKeys(m, predicateKeys, p); err != nil {
		return nil, err
	}

	node := &Node{Op: op}
	fieldRaw, ok := m["field"]
	if !ok {
		return nil, errAt(p.key("field"), "field is required")
	}
	if node.Field, err = decodeField(fieldRaw, p.key("field")); err != nil {
		return nil, err
	}
	if t, ok := m["type"]; ok {
		if node.Type, err = asString(t, p.key("type")); err != nil {
			return nil, err
		}
	}
	if it, ok := m["include_time"]; ok {
		b, err := asBool(it, p.key("include_time"))
		if err != nil {
			return nil, err
		}
		node.IncludeTime = &b
	}

	_, hasValue := m["value"]
	_, hasValues := m["values"]
	_, hasMembership := m["membership"]

	switch op {
	case OpIsNull, OpIsNotNull:
		if hasValue || hasValues || hasMembership {
			return nil, errAt(p, "%s takes no value", op)
		}
	case OpIn:
		if hasValue || hasMembership {
			return nil, errAt(p, "in takes values, not value")
		}
		list, err := asList(m["values"], p.key("values"))
		if err != nil {
			return nil, err
		}
		node.Values = make([]ValueSpec, 0, len(list))
		for i, item := range list {
			v, err := decodeValue(item, p.key("values").index(i))
			if err != nil {
				return nil, err
			}
			node.Values = append(node.Values, v)
		}
	case OpMembership:
		if hasValue || hasValues {
			return nil, errAt(p, "membership takes no value")
		}
		if !hasMembership {
			return nil, errAt(p.key("membership"), "membership type is required")
		}
		if node.Membership, err = asString(m["membership"], p.key("membership")); err != nil {
			return nil, err
		}
	default:
		if hasValues || hasMembership {
			return nil, errAt(p, "%s takes a single value", op)
		}
		if !hasValue {
			return nil, errAt(p.key("value"), "value is required")
		}
		v, err := decodeValue(m["value"], p.key("value"))
		if err != nil {
			return nil, err
		}
		node.Value = &v
	}

	if attrs, ok := m["attributes"]; ok {
		am, err := asMap(attrs, p.key("attributes"))
		if err != nil {
			return nil, err
		}
		node.Attributes = make(map[string]string, len(am))
		for k, v := range am {
			s, err := asString(v, p.key("attributes").key(k))
			if err != nil {
				return nil, err
			}
			node.Attributes[k] = s
		}
	}
	return node, nil
}

var fieldKeys = []string{
	"name", "alias", "create_url", "display_name", "format", "id", "key", "list",
	"ref_type", "show_field", "function", "ascending", "explicit", "lookup_id", "text_only",
}

// decodeField accepts a bare name or a mapping of modifiers.
func decodeField(raw any, p path) (FieldSpec, error) {
	if s, ok := raw.(string); ok {
		if s == "" {
			return FieldSpec{}, errAt(p, "field name cannot be empty")
		}
		return FieldSpec{Name: s}, nil
	}
	m, err := asMap(raw, p)
	if err != nil {
		return FieldSpec{}, err
	}
	if err := checkKeys(m, fieldKeys, p); err != nil {
		return FieldSpec{}, err
	}

	var f FieldSpec
	strs := []struct {
		key string
		dst *string
	}{
		{"name", &f.Name}, {"alias", &f.Alias}, {"create_url", &f.CreateURL},
		{"display_name", &f.DisplayName}, {"format", &f.Format}, {"id", &f.ID},
		{"key", &f.Key}, {"list", &f.List}, {"ref_type", &f.RefType},
		{"show_field", &f.ShowField}, {"function", &f.Function},
	}
	for _, s := range strs {
		if v, ok := m[s.key]; ok {
			if *s.dst, err = asString(v, p.key(s.key)); err != nil {
				return FieldSpec{}, err
			}
		}
	}
	bools := []struct {
		key string
		dst **bool
	}{
		{"ascending", &f.Ascending}, {"explicit", &f.Explicit},
		{"lookup_id", &f.LookupID}, {"text_only", &f.TextOnly},
	}
	for _, b := range bools {
		if err := optionalBool(m, b.key, p, b.dst); err != nil {
			return FieldSpec{}, err
		}
	}
	if f.Name == "" {
		return FieldSpec{}, errAt(p.key("name"), "field name is required")
	}
	return f, nil
}

func decodeFieldList(raw any, p path) ([]FieldSpec, error) {
	if raw == nil {
		return nil, nil
	}
	list, err := asList(raw, p)
	if err != nil {
		return nil, err
	}
	fields := make([]FieldSpec, 0, len(list))
	for i, item := range list {
		f, err := decodeField(item, p.index(i))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

var valueKinds = []string{ValueNow, ValueToday, ValueMonth, ValueUserID, ValueListProperties}

// decodeValue accepts a scalar literal or a single-key mapping naming a
// dynamic value: {now: {}}, {today: {offset: -7}}, {month: {}},
// {user_id: {}}, {list_properties: [...]}.
func decodeValue(raw any, p path) (ValueSpec, error) {
	m, isMap := raw.(map[string]any)
	if !isMap {
		lit, err := normalizeLiteral(raw, p)
		if err != nil {
			return ValueSpec{}, err
		}
		return ValueSpec{Kind: ValueLiteral, Literal: lit}, nil
	}
	if len(m) != 1 {
		return ValueSpec{}, errAt(p, "value mapping must have exactly one of %s", strings.Join(valueKinds, ", "))
	}

	var kind string
	var body any
	for k, v := range m {
		kind, body = k, v
	}
	p = p.key(kind)

	switch kind {
	case ValueNow, ValueMonth, ValueUserID:
		if err := expectEmpty(body, p); err != nil {
			return ValueSpec{}, err
		}
		return ValueSpec{Kind: kind}, nil
	case ValueToday:
		v := ValueSpec{Kind: ValueToday}
		if body == nil || body == true {
			return v, nil
		}
		bm, err := asMap(body, p)
		if err != nil {
			return ValueSpec{}, err
		}
		if err := checkKeys(bm, []string{"offset"}, p); err != nil {
			return ValueSpec{}, err
		}
		if off, ok := bm["offset"]; ok {
			n, err := asInt(off, p.key("offset"))
			if err != nil {
				return ValueSpec{}, err
			}
			v.Offset = &n
		}
		return v, nil
	case ValueListProperties:
		list, err := asList(body, p)
		if err != nil {
			return ValueSpec{}, err
		}
		v := ValueSpec{Kind: ValueListProperties, Items: make([]ListPropertySpec, 0, len(list))}
		for i, item := range list {
			lp, err := decodeListProperty(item, p.index(i))
			if err != nil {
				return ValueSpec{}, err
			}
			v.Items = append(v.Items, lp)
		}
		return v, nil
	default:
		return ValueSpec{}, errAt(p, "unknown value kind %q", kind)
	}
}

var listPropertyKeys = []string{
	"select", "default", "auto_hyperlink", "auto_hyperlink_no_encoding", "auto_newline",
	"expand_xml", "html_encode", "strip_ws", "url_encode", "url_encode_as_url",
}

func decodeListProperty(raw any, p path) (ListPropertySpec, error) {
	if s, ok := raw.(string); ok {
		return ListPropertySpec{Select: s}, nil
	}
	m, err := asMap(raw, p)
	if err != nil {
		return ListPropertySpec{}, err
	}
	if err := checkKeys(m, listPropertyKeys, p); err != nil {
		return ListPropertySpec{}, err
	}
	var lp ListPropertySpec
	if v, ok := m["select"]; ok {
		if lp.Select, err = asString(v, p.key("select")); err != nil {
			return lp, err
		}
	}
	if v, ok := m["default"]; ok {
		if lp.Default, err = asString(v, p.key("default")); err != nil {
			return lp, err
		}
	}
	bools := []struct {
		key string
		dst **bool
	}{
		{"auto_hyperlink", &lp.AutoHyperLink},
		{"auto_hyperlink_no_encoding", &lp.AutoHyperLinkNoEncoding},
		{"auto_newline", &lp.AutoNewLine},
		{"expand_xml", &lp.ExpandXML},
		{"html_encode", &lp.HTMLEncode},
		{"strip_ws", &lp.StripWS},
		{"url_encode", &lp.URLEncode},
		{"url_encode_as_url", &lp.URLEncodeAsURL},
	}
	for _, b := range bools {
		if err := optionalBool(m, b.key, p, b.dst); err != nil {
			return lp, err
		}
	}
	return lp, nil
}

// normalizeLiteral maps decoder-specific scalars onto string, int64 or bool.
// Integral floats become int64; other floats are kept as their shortest
// decimal text, which is what the renderer would emit for them anyway.
func normalizeLiteral(raw any, p path) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errAt(p, "value cannot be null")
	case string:
		return v, nil
	case bool:
		return v, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return strconv.FormatUint(v, 10), nil
		}
		return int64(v), nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		return v.String(), nil
	case time.Time:
		// Unquoted YAML dates.
		if v.Equal(v.Truncate(24*time.Hour)) && v.Location() == time.UTC {
			return v.Format(time.DateOnly), nil
		}
		return v.Format(time.RFC3339Nano), nil
	default:
		return nil, errAt(p, "unsupported literal of type %T", raw)
	}
}

func asMap(raw any, p path) (map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errAt(p, "expected a mapping, got %s", describe(raw))
	}
	return m, nil
}

func asList(raw any, p path) ([]any, error) {
	if raw == nil {
		return nil, nil
	}
	l, ok := raw.([]any)
	if !ok {
		return nil, errAt(p, "expected a list, got %s", describe(raw))
	}
	return l, nil
}

func asString(raw any, p path) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", errAt(p, "expected a string, got %s", describe(raw))
	}
	return s, nil
}

func asBool(raw any, p path) (bool, error) {
	b, ok := raw.(bool)
	if !ok {
		return false, errAt(p, "expected a boolean, got %s", describe(raw))
	}
	return b, nil
}

func asInt(raw any, p path) (int, error) {
	lit, err := normalizeLiteral(raw, p)
	if err != nil {
		return 0, err
	}
	n, ok := lit.(int64)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, errAt(p, "expected an integer, got %s", describe(raw))
	}
	return int(n), nil
}

func optionalBool(m map[string]any, key string, p path, dst **bool) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	b, err := asBool(v, p.key(key))
	if err != nil {
		return err
	}
	*dst = &b
	return nil
}

func expectEmpty(body any, p path) error {
	switch v := body.(type) {
	case nil:
		return nil
	case bool:
		if v {
			return nil
		}
	case map[string]any:
		if len(v) == 0 {
			return nil
		}
	}
	return errAt(p, "takes no arguments")
}

func checkKeys(m map[string]any, allowed []string, p path) error {
	for _, k := range sortedKeys(m) {
		if !slices.Contains(allowed, k) {
			return errAt(p.key(k), "unknown key %q", k)
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func describe(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "a mapping"
	case []any:
		return "a list"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}

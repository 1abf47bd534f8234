package caml

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// valueKind discriminates the Value variants.
type valueKind int

const (
	kindScalar valueKind = iota + 1
	kindNow
	kindToday
	kindMonth
	kindUserID
	kindListProperties
)

// Value is a comparison operand rendered as a <Value> tag.
//
// Values are built with the variant factories (Scalar, Text, Integer, Now,
// Today, TodayOffset, Month, UserID, ListProperties) and are immutable
// afterwards. The zero Value is not a valid operand.
type Value struct {
	kind        valueKind
	valueType   ValueType
	includeTime *bool

	literal any
	offset  *int
	items   []ListPropertyItem
}

// ValueOption adjusts the optional attributes of a Value at construction.
type ValueOption func(*Value)

// WithType overrides the Type attribute. Passing the zero ValueType
// suppresses the attribute.
func WithType(t ValueType) ValueOption {
	return func(v *Value) { v.valueType = t }
}

// IncludeTime sets the IncludeTimeValue attribute.
func IncludeTime(include bool) ValueOption {
	return func(v *Value) { v.includeTime = &include }
}

func newValue(kind valueKind, t ValueType, opts []ValueOption) Value {
	v := Value{kind: kind, valueType: t}
	for _, opt := range opts {
		if opt != nil {
			opt(&v)
		}
	}
	return v
}

// Scalar builds a literal Value. The literal is rendered through its natural
// string form (fmt.Sprint) with no escaping and no trimming.
//
// A nil literal (including a typed nil pointer, map, slice or interface) is
// rejected here rather than rendered.
func Scalar(t ValueType, literal any, opts ...ValueOption) (Value, error) {
	if !t.Valid() {
		return Value{}, newArgumentError("type", fmt.Sprintf("unknown value type %d", int(t)))
	}
	if isNil(literal) {
		return Value{}, newArgumentError("literal", "scalar literal cannot be nil")
	}
	v := newValue(kindScalar, t, opts)
	v.literal = literal
	return v, nil
}

// Text builds a Text scalar.
func Text(s string, opts ...ValueOption) Value {
	v := newValue(kindScalar, ValueTypeText, opts)
	v.literal = s
	return v
}

// Integer builds an Integer scalar.
func Integer(n int64, opts ...ValueOption) Value {
	v := newValue(kindScalar, ValueTypeInteger, opts)
	v.literal = n
	return v
}

// Now builds a <Now/> value. Type defaults to DateTime.
func Now(opts ...ValueOption) Value {
	return newValue(kindNow, ValueTypeDateTime, opts)
}

// Today builds a <Today/> value. Type defaults to DateTime.
func Today(opts ...ValueOption) Value {
	return newValue(kindToday, ValueTypeDateTime, opts)
}

// TodayOffset builds a <Today Offset='n'/> value; days may be negative.
func TodayOffset(days int, opts ...ValueOption) Value {
	v := newValue(kindToday, ValueTypeDateTime, opts)
	v.offset = &days
	return v
}

// Month builds a <Month/> value. Type defaults to DateTime.
func Month(opts ...ValueOption) Value {
	return newValue(kindMonth, ValueTypeDateTime, opts)
}

// UserID builds a <UserID/> value. Type defaults to Integer.
func UserID(opts ...ValueOption) Value {
	return newValue(kindUserID, ValueTypeInteger, opts)
}

// ListProperties builds a value from an ordered list of list-property items.
func ListProperties(t ValueType, items []ListPropertyItem, opts ...ValueOption) (Value, error) {
	if !t.Valid() {
		return Value{}, newArgumentError("type", fmt.Sprintf("unknown value type %d", int(t)))
	}
	for i, item := range items {
		if item.selector == "" {
			return Value{}, newArgumentError("items", fmt.Sprintf("item %d has no selector", i))
		}
	}
	v := newValue(kindListProperties, t, opts)
	v.items = make([]ListPropertyItem, len(items))
	copy(v.items, items)
	return v, nil
}

// Type returns the value type, or zero when the attribute is suppressed.
func (v Value) Type() ValueType { return v.valueType }

// IsZero reports whether v was never constructed.
func (v Value) IsZero() bool { return v.kind == 0 }

// validate checks a Value handed to an operator.
func (v Value) validate(param string) error {
	if v.kind == 0 {
		return newArgumentError(param, "value was not constructed")
	}
	if v.valueType != 0 && !v.valueType.Valid() {
		return newArgumentError(param, fmt.Sprintf("unknown value type %d", int(v.valueType)))
	}
	return nil
}

// Render returns the <Value ...>...</Value> markup.
func (v Value) Render() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v Value) writeTo(b *strings.Builder) {
	b.WriteString("<Value")
	if v.valueType != 0 {
		writeAttributes(b, []attribute{{"Type", v.valueType.String()}})
	}
	if v.includeTime != nil {
		writeAttributes(b, []attribute{{"IncludeTimeValue", boolText(*v.includeTime)}})
	}
	b.WriteByte('>')

	switch v.kind {
	case kindScalar:
		b.WriteString(fmt.Sprint(v.literal))
	case kindNow:
		b.WriteString("<Now/>")
	case kindMonth:
		b.WriteString("<Month/>")
	case kindUserID:
		b.WriteString("<UserID/>")
	case kindToday:
		if v.offset == nil {
			b.WriteString("<Today/>")
		} else {
			b.WriteString("<Today")
			writeAttributes(b, []attribute{{"Offset", strconv.Itoa(*v.offset)}})
			b.WriteString("/>")
		}
	case kindListProperties:
		for _, item := range v.items {
			item.writeTo(b)
		}
	}

	b.WriteString("</Value>")
}

// ListPropertyItem selects one list property inside a ListProperties value.
type ListPropertyItem struct {
	selector string
	deflt    string

	autoHyperLink           *bool
	autoHyperLinkNoEncoding *bool
	autoNewLine             *bool
	expandXML               *bool
	htmlEncode              *bool
	stripWS                 *bool
	urlEncode               *bool
	urlEncodeAsURL          *bool
}

// ListPropertyOption sets an optional ListPropertyItem flag.
type ListPropertyOption func(*ListPropertyItem)

// NewListPropertyItem builds an item for selector, which must be non-empty.
func NewListPropertyItem(selector string, opts ...ListPropertyOption) (ListPropertyItem, error) {
	if selector == "" {
		return ListPropertyItem{}, newArgumentError("select", "list property selector cannot be empty")
	}
	item := ListPropertyItem{selector: selector}
	for _, opt := range opts {
		if opt != nil {
			opt(&item)
		}
	}
	return item, nil
}

// Selector returns the item's Select string.
func (i ListPropertyItem) Selector() string { return i.selector }

func boolOption(set func(*ListPropertyItem, *bool)) func(bool) ListPropertyOption {
	return func(v bool) ListPropertyOption {
		return func(i *ListPropertyItem) { set(i, &v) }
	}
}

var (
	AutoHyperLink           = boolOption(func(i *ListPropertyItem, v *bool) { i.autoHyperLink = v })
	AutoHyperLinkNoEncoding = boolOption(func(i *ListPropertyItem, v *bool) { i.autoHyperLinkNoEncoding = v })
	AutoNewLine             = boolOption(func(i *ListPropertyItem, v *bool) { i.autoNewLine = v })
	ExpandXML               = boolOption(func(i *ListPropertyItem, v *bool) { i.expandXML = v })
	HTMLEncode              = boolOption(func(i *ListPropertyItem, v *bool) { i.htmlEncode = v })
	StripWS                 = boolOption(func(i *ListPropertyItem, v *bool) { i.stripWS = v })
	URLEncode               = boolOption(func(i *ListPropertyItem, v *bool) { i.urlEncode = v })
	URLEncodeAsURL          = boolOption(func(i *ListPropertyItem, v *bool) { i.urlEncodeAsURL = v })
)

// DefaultText sets the Default attribute.
func DefaultText(text string) ListPropertyOption {
	return func(i *ListPropertyItem) { i.deflt = text }
}

func (i ListPropertyItem) writeTo(b *strings.Builder) {
	attrs := []attribute{{"Select", i.selector}}
	addBool := func(name string, value *bool) {
		if value != nil {
			attrs = append(attrs, attribute{name, boolText(*value)})
		}
	}
	addBool("AutoHyperLink", i.autoHyperLink)
	addBool("AutoHyperLinkNoEncoding", i.autoHyperLinkNoEncoding)
	addBool("AutoNewLine", i.autoNewLine)
	if i.deflt != "" {
		attrs = append(attrs, attribute{"Default", i.deflt})
	}
	addBool("ExpandXML", i.expandXML)
	addBool("HTMLEncode", i.htmlEncode)
	addBool("StripWS", i.stripWS)
	addBool("URLEncode", i.urlEncode)
	addBool("URLEncodeAsURL", i.urlEncodeAsURL)

	b.WriteString("<ListProperty")
	writeAttributes(b, attrs)
	b.WriteString("/>")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

package caml

import (
	"strings"
)

// FieldRef references a list field, optionally carrying presentation and
// lookup modifiers.
//
// The name is fixed at construction; modifiers are applied through
// FieldRefOption values passed to NewFieldRef or Field. The zero FieldRef
// has no name and is rejected by every operator and query method.
type FieldRef struct {
	name string

	alias       string
	createURL   string
	displayName string
	format      string
	id          string
	key         string
	list        string
	refType     string
	showField   string

	function *FieldRefFunction

	ascending *bool
	explicit  *bool
	lookupID  *bool
	textOnly  *bool
}

// FieldRefOption sets an optional FieldRef modifier.
type FieldRefOption func(*FieldRef) error

// NewFieldRef builds a FieldRef for name. Returns an *ArgumentError if name
// is empty or an option is invalid.
func NewFieldRef(name string, opts ...FieldRefOption) (FieldRef, error) {
	if name == "" {
		return FieldRef{}, newArgumentError("name", "field name cannot be empty")
	}
	f := FieldRef{name: name}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&f); err != nil {
			return FieldRef{}, err
		}
	}
	return f, nil
}

// Field is like NewFieldRef but panics on error. It is the explicit
// stand-in for converting a bare name into a field reference.
func Field(name string, opts ...FieldRefOption) FieldRef {
	return Must(NewFieldRef(name, opts...))
}

// Name returns the field's internal name.
func (f FieldRef) Name() string { return f.name }

// IsZero reports whether f was never constructed.
func (f FieldRef) IsZero() bool { return f.name == "" }

// WithAlias sets the Alias attribute.
func WithAlias(alias string) FieldRefOption {
	return func(f *FieldRef) error { f.alias = alias; return nil }
}

// WithCreateURL sets the CreateURL attribute.
func WithCreateURL(url string) FieldRefOption {
	return func(f *FieldRef) error { f.createURL = url; return nil }
}

// WithDisplayName sets the DisplayName attribute.
func WithDisplayName(name string) FieldRefOption {
	return func(f *FieldRef) error { f.displayName = name; return nil }
}

// WithFormat sets the Format attribute.
func WithFormat(format string) FieldRefOption {
	return func(f *FieldRef) error { f.format = format; return nil }
}

// WithID sets the ID attribute.
func WithID(id string) FieldRefOption {
	return func(f *FieldRef) error { f.id = id; return nil }
}

// WithKey sets the Key attribute.
func WithKey(key string) FieldRefOption {
	return func(f *FieldRef) error { f.key = key; return nil }
}

// WithList sets the List attribute.
func WithList(list string) FieldRefOption {
	return func(f *FieldRef) error { f.list = list; return nil }
}

// WithRefType sets the RefType attribute.
func WithRefType(refType string) FieldRefOption {
	return func(f *FieldRef) error { f.refType = refType; return nil }
}

// WithShowField sets the ShowField attribute.
func WithShowField(showField string) FieldRefOption {
	return func(f *FieldRef) error { f.showField = showField; return nil }
}

// WithFunction sets the aggregation function rendered as the Type attribute.
func WithFunction(fn FieldRefFunction) FieldRefOption {
	return func(f *FieldRef) error {
		if _, err := fn.Abbreviation(); err != nil {
			return err
		}
		f.function = &fn
		return nil
	}
}

// WithAscending sets the Ascending attribute explicitly.
func WithAscending(ascending bool) FieldRefOption {
	return func(f *FieldRef) error { f.ascending = &ascending; return nil }
}

// Descending marks the field for descending order (Ascending='FALSE').
func Descending() FieldRefOption {
	return WithAscending(false)
}

// WithExplicit sets the Explicit attribute.
func WithExplicit(explicit bool) FieldRefOption {
	return func(f *FieldRef) error { f.explicit = &explicit; return nil }
}

// WithLookupID sets the LookupId attribute.
func WithLookupID(lookupID bool) FieldRefOption {
	return func(f *FieldRef) error { f.lookupID = &lookupID; return nil }
}

// WithTextOnly sets the TextOnly attribute.
func WithTextOnly(textOnly bool) FieldRefOption {
	return func(f *FieldRef) error { f.textOnly = &textOnly; return nil }
}

// Render returns the <FieldRef .../> tag.
func (f FieldRef) Render() string {
	var b strings.Builder
	f.writeTo(&b, nil)
	return b.String()
}

// attributes returns the set attributes in their fixed wire order.
func (f FieldRef) attributes() []attribute {
	attrs := make([]attribute, 0, 4)
	addString := func(name, value string) {
		if value != "" {
			attrs = append(attrs, attribute{name, value})
		}
	}
	addBool := func(name string, value *bool) {
		if value != nil {
			attrs = append(attrs, attribute{name, boolText(*value)})
		}
	}

	addString("Alias", f.alias)
	addString("CreateURL", f.createURL)
	addString("DisplayName", f.displayName)
	addString("Format", f.format)
	addString("ID", f.id)
	addString("Key", f.key)
	addString("List", f.list)
	addString("Name", f.name)
	addString("RefType", f.refType)
	addString("ShowField", f.showField)
	if f.function != nil {
		// Validated by WithFunction.
		abbr, _ := f.function.Abbreviation()
		attrs = append(attrs, attribute{"Type", abbr})
	}
	addBool("Ascending", f.ascending)
	addBool("Explicit", f.explicit)
	addBool("LookupId", f.lookupID)
	addBool("TextOnly", f.textOnly)
	return attrs
}

func (f FieldRef) writeTo(b *strings.Builder, extra []attribute) {
	b.WriteString("<FieldRef")
	writeAttributes(b, f.attributes())
	writeAttributes(b, extra)
	b.WriteString("/>")
}

// attribute is a single name='value' pair. Values are emitted verbatim.
type attribute struct {
	name  string
	value string
}

func writeAttributes(b *strings.Builder, attrs []attribute) {
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		b.WriteString("='")
		b.WriteString(a.value)
		b.WriteByte('\'')
	}
}

func boolText(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

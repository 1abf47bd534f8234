// Package fieldname resolves list field names from Go struct fields.
//
// A field's list name is the value of its `caml` struct tag when present,
// else the Go field's own identifier:
//
//	type Order struct {
//	    Title  string
//	    Amount int    `caml:"OrderTotal"`
//	}
//
//	fieldname.Resolve(Order{}, "Amount") // "OrderTotal"
//	fieldname.Ref(Order{}, "Title")       // <FieldRef Name='Title'/>
//
// Embedded structs are searched by the usual Go promotion rules. Results are
// cached per type and safe for concurrent use.
package fieldname

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/roach88/camlkit/caml"
)

// TagKey is the struct tag consulted for name overrides.
const TagKey = "caml"

var (
	// ErrNotStruct is returned when the model is not a struct, a pointer to
	// one, or a reflect.Type naming one.
	ErrNotStruct = errors.New("fieldname: model is not a struct")

	// ErrUnknownField is returned when the struct has no such field.
	ErrUnknownField = errors.New("fieldname: unknown field")

	// ErrEmptyOverride is returned when a `caml` tag is present but empty.
	ErrEmptyOverride = errors.New("fieldname: empty name override")
)

var cache sync.Map // reflect.Type -> map[string]string

// Resolve returns the list field name for the Go field goField of model.
// model may be a struct value, a pointer to a struct, or a reflect.Type.
func Resolve(model any, goField string) (string, error) {
	typ, err := structType(model)
	if err != nil {
		return "", err
	}
	names, err := namesFor(typ)
	if err != nil {
		return "", err
	}
	name, ok := names[goField]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, typ.Name(), goField)
	}
	return name, nil
}

// Ref resolves goField and builds a caml.FieldRef carrying opts.
func Ref(model any, goField string, opts ...caml.FieldRefOption) (caml.FieldRef, error) {
	name, err := Resolve(model, goField)
	if err != nil {
		return caml.FieldRef{}, err
	}
	return caml.NewFieldRef(name, opts...)
}

// Names returns every resolvable Go field of model mapped to its list name.
func Names(model any) (map[string]string, error) {
	typ, err := structType(model)
	if err != nil {
		return nil, err
	}
	names, err := namesFor(typ)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(names))
	for k, v := range names {
		out[k] = v
	}
	return out, nil
}

func structType(model any) (reflect.Type, error) {
	if model == nil {
		return nil, ErrNotStruct
	}
	typ, ok := model.(reflect.Type)
	if !ok {
		typ = reflect.TypeOf(model)
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, typ)
	}
	return typ, nil
}

func namesFor(typ reflect.Type) (map[string]string, error) {
	if cached, ok := cache.Load(typ); ok {
		return cached.(map[string]string), nil
	}

	names := make(map[string]string)
	for _, f := range reflect.VisibleFields(typ) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		// Shadowed promoted fields are not reachable by name.
		if top, ok := typ.FieldByName(f.Name); !ok || !slices.Equal(top.Index, f.Index) {
			continue
		}
		name := f.Name
		if override, ok := f.Tag.Lookup(TagKey); ok {
			if override == "" {
				return nil, fmt.Errorf("%w: %s.%s", ErrEmptyOverride, typ.Name(), f.Name)
			}
			name = override
		}
		names[f.Name] = name
	}

	cache.Store(typ, names)
	return names, nil
}

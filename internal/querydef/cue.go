package querydef

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// QueryField is the top-level CUE field holding definitions by name:
//
//	query: open_orders: {
//	    where: eq: {field: "Status", value: "Open"}
//	}
const QueryField = "query"

// CompileCUE compiles every definition under the `query` field of v, in
// field order.
func CompileCUE(v cue.Value) ([]*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	queries := v.LookupPath(cue.ParsePath(QueryField))
	if !queries.Exists() {
		return nil, nil
	}
	iter, err := queries.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var defs []*Definition
	for iter.Next() {
		def, err := CompileDefinition(iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// CompileDefinition compiles one definition value. The definition is named
// by its struct label; an explicit name field must agree with it.
func CompileDefinition(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var label string
	if sels := v.Path().Selectors(); len(sels) > 0 {
		if last := sels[len(sels)-1]; last.LabelType() == cue.StringLabel {
			label = last.Unquoted()
		}
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", label, err)
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &DefinitionError{Definition: label, Message: "definition must be a struct", Pos: v.Pos()}
	}
	if name, ok := m["name"]; ok && label != "" && name != label {
		return nil, &DefinitionError{
			Definition: label,
			Field:      "name",
			Message:    fmt.Sprintf("name %v does not match label %q", name, label),
			Pos:        v.LookupPath(cue.ParsePath("name")).Pos(),
		}
	}
	if label != "" {
		m["name"] = label
	}

	def, err := Decode(m)
	if err != nil {
		return nil, annotateCUE(err, v)
	}
	if def.Source == "" {
		def.Source = v.Pos().Filename()
	}
	return def, nil
}

// ParseCUE compiles CUE source text.
func ParseCUE(src []byte, filename string) ([]*Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileCUE(v)
}

// LoadCUEDir loads the CUE package in dir and compiles its definitions.
func LoadCUEDir(dir string) ([]*Definition, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCUE(v)
}

// annotateCUE attaches the source position of the failing path.
func annotateCUE(err error, v cue.Value) error {
	var de *DefinitionError
	if !errors.As(err, &de) {
		return err
	}
	de.Pos = cuePos(v, de.at)
	return de
}

// cuePos returns the position of the deepest existing value along p.
func cuePos(v cue.Value, p path) token.Pos {
	sels := make([]cue.Selector, 0, len(p))
	for _, elem := range p {
		switch e := elem.(type) {
		case string:
			sels = append(sels, cue.Str(e))
		case int:
			sels = append(sels, cue.Index(e))
		}
	}
	for i := len(sels); i > 0; i-- {
		if f := v.LookupPath(cue.MakePath(sels[:i]...)); f.Exists() {
			return f.Pos()
		}
	}
	return v.Pos()
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &DefinitionError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
			Err:     err,
		}
	}
	return err
}

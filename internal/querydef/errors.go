package querydef

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/token"
)

// DefinitionError reports a malformed query definition. Field is the dotted
// path of the offending element (e.g. "where.and[1].eq.field"). Pos is set
// when the definition came from CUE source; File and Line when it came from
// YAML.
type DefinitionError struct {
	Definition string
	Field      string
	Message    string
	Pos        token.Pos
	File       string
	Line       int
	Column     int
	Err        error

	at path
}

func (e *DefinitionError) Error() string {
	var b strings.Builder
	switch {
	case e.Pos.IsValid():
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	case e.File != "" && e.Line > 0:
		fmt.Fprintf(&b, "%s:%d:%d: ", e.File, e.Line, e.Column)
	case e.File != "":
		fmt.Fprintf(&b, "%s: ", e.File)
	}
	if e.Definition != "" {
		b.WriteString(e.Definition)
		b.WriteString(": ")
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// path is a location inside a definition: string keys and int indexes.
type path []any

func (p path) key(k string) path {
	out := make(path, len(p), len(p)+1)
	copy(out, p)
	return append(out, k)
}

func (p path) index(i int) path {
	out := make(path, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

func (p path) String() string {
	var b strings.Builder
	for _, elem := range p {
		switch v := elem.(type) {
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		case string:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		}
	}
	return b.String()
}

func errAt(p path, format string, args ...any) *DefinitionError {
	return &DefinitionError{
		Field:   p.String(),
		Message: fmt.Sprintf(format, args...),
		at:      p,
	}
}

func wrapAt(p path, err error) *DefinitionError {
	return &DefinitionError{
		Field:   p.String(),
		Message: err.Error(),
		Err:     err,
		at:      p,
	}
}

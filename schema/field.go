package schema

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Field is one record field: a name, a type and an optional default literal
// used when the field is absent from the input.
type Field struct {
	name   string
	typ    *Schema
	def    []byte
	hasDef bool
	doc    string
	err    error
}

// FieldOption customizes a field at construction.
type FieldOption func(*Field)

// NewField declares a record field.
func NewField(name string, t *Schema, opts ...FieldOption) *Field {
	f := &Field{name: name, typ: t}
	if !validName(name) {
		f.err = invalidf("field name %q", name)
	}
	if t == nil {
		f.err = invalidf("field %q: nil type", name)
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// WithDefault sets the default from a Go value, marshaled as JSON. Use nil
// for a null default.
func WithDefault(v any) FieldOption {
	return func(f *Field) {
		b, err := json.Marshal(v)
		if err != nil {
			f.err = fmt.Errorf("%w: default for %q: %v", ErrInvalidSchema, f.name, err)
			return
		}
		f.def, f.hasDef = b, true
	}
}

// WithDefaultJSON sets the default from a JSON literal.
func WithDefaultJSON(literal string) FieldOption {
	return func(f *Field) {
		b := bytes.TrimSpace([]byte(literal))
		if !json.Valid(b) {
			f.err = fmt.Errorf("%w: default for %q is not valid JSON", ErrInvalidSchema, f.name)
			return
		}
		f.def, f.hasDef = b, true
	}
}

// WithDoc attaches documentation text.
func WithDoc(doc string) FieldOption { return func(f *Field) { f.doc = doc } }

func (f *Field) Name() string  { return f.name }
func (f *Field) Type() *Schema { return f.typ }
func (f *Field) Doc() string   { return f.doc }

// Default returns the default literal as JSON text.
func (f *Field) Default() ([]byte, bool) { return f.def, f.hasDef }

func (f *Field) HasDefault() bool { return f.hasDef }

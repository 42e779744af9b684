// Package schema is the type model the decoder walks: records with ordered
// fields and default literals, unions, arrays, maps, enums, fixed and the
// primitive types. Schemas are built with Go constructors and are immutable
// once built, so one schema may back any number of decoders.
package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Type identifies the kind of a schema node.
type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeBytes
	TypeString
	TypeRecord
	TypeEnum
	TypeArray
	TypeMap
	TypeUnion
	TypeFixed
)

var typeNames = [...]string{
	TypeNull:    "null",
	TypeBoolean: "boolean",
	TypeInt:     "int",
	TypeLong:    "long",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeBytes:   "bytes",
	TypeString:  "string",
	TypeRecord:  "record",
	TypeEnum:    "enum",
	TypeArray:   "array",
	TypeMap:     "map",
	TypeUnion:   "union",
	TypeFixed:   "fixed",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Named reports whether schemas of this type carry a name.
func (t Type) Named() bool { return t == TypeRecord || t == TypeEnum || t == TypeFixed }

// ErrInvalidSchema is wrapped by every construction error.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Schema is one node of a type tree.
type Schema struct {
	typ       Type
	name      string
	namespace string

	fields []*Field
	index  map[string]int

	symbols  []string
	items    *Schema
	values   *Schema
	branches []*Schema
	size     int
}

var primitives = map[Type]*Schema{
	TypeNull:    {typ: TypeNull},
	TypeBoolean: {typ: TypeBoolean},
	TypeInt:     {typ: TypeInt},
	TypeLong:    {typ: TypeLong},
	TypeFloat:   {typ: TypeFloat},
	TypeDouble:  {typ: TypeDouble},
	TypeBytes:   {typ: TypeBytes},
	TypeString:  {typ: TypeString},
}

func Null() *Schema    { return primitives[TypeNull] }
func Boolean() *Schema { return primitives[TypeBoolean] }
func Int() *Schema     { return primitives[TypeInt] }
func Long() *Schema    { return primitives[TypeLong] }
func Float() *Schema   { return primitives[TypeFloat] }
func Double() *Schema  { return primitives[TypeDouble] }
func Bytes() *Schema   { return primitives[TypeBytes] }
func String() *Schema  { return primitives[TypeString] }

// Array returns an array schema with the given item type.
func Array(items *Schema) *Schema {
	if items == nil {
		panic("schema.Array: nil items")
	}
	return &Schema{typ: TypeArray, items: items}
}

// Map returns a map schema with string keys and the given value type.
func Map(values *Schema) *Schema {
	if values == nil {
		panic("schema.Map: nil values")
	}
	return &Schema{typ: TypeMap, values: values}
}

// Nullable is shorthand for Union(Null(), s).
func Nullable(s *Schema) *Schema { return MustUnion(Null(), s) }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidSchema}, args...)...)
}

func splitName(full string) (name, namespace string) {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[i+1:], full[:i]
	}
	return full, ""
}

func validName(n string) bool {
	if n == "" {
		return false
	}
	for i, r := range n {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func newNamed(t Type, fullName string) (*Schema, error) {
	name, ns := splitName(fullName)
	if !validName(name) {
		return nil, invalidf("%s name %q", t, fullName)
	}
	return &Schema{typ: t, name: name, namespace: ns}, nil
}

// NewRecord builds a record. Field names must be unique.
func NewRecord(fullName string, fields ...*Field) (*Schema, error) {
	s, err := newNamed(TypeRecord, fullName)
	if err != nil {
		return nil, err
	}
	s.fields = fields
	s.index = make(map[string]int, len(fields))
	for i, f := range fields {
		if f == nil {
			return nil, invalidf("record %s: nil field at %d", fullName, i)
		}
		if f.err != nil {
			return nil, fmt.Errorf("record %s: field %s: %w", fullName, f.name, f.err)
		}
		if _, dup := s.index[f.name]; dup {
			return nil, invalidf("record %s: duplicate field %q", fullName, f.name)
		}
		s.index[f.name] = i
	}
	return s, nil
}

// Record is NewRecord that panics on error.
func Record(fullName string, fields ...*Field) *Schema {
	s, err := NewRecord(fullName, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// NewEnum builds an enum with unique symbols.
func NewEnum(fullName string, symbols ...string) (*Schema, error) {
	s, err := newNamed(TypeEnum, fullName)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, invalidf("enum %s: no symbols", fullName)
	}
	seen := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		if _, dup := seen[sym]; dup {
			return nil, invalidf("enum %s: duplicate symbol %q", fullName, sym)
		}
		seen[sym] = struct{}{}
	}
	s.symbols = symbols
	return s, nil
}

// Enum is NewEnum that panics on error.
func Enum(fullName string, symbols ...string) *Schema {
	s, err := NewEnum(fullName, symbols...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fixed builds a fixed-size bytes type.
func Fixed(fullName string, size int) *Schema {
	s, err := newNamed(TypeFixed, fullName)
	if err != nil {
		panic(err)
	}
	if size < 0 {
		panic(invalidf("fixed %s: negative size", fullName))
	}
	s.size = size
	return s
}

// NewUnion builds a union. Branches may not be unions themselves and no two
// branches may share a branch name.
func NewUnion(branches ...*Schema) (*Schema, error) {
	if len(branches) == 0 {
		return nil, invalidf("union without branches")
	}
	seen := make(map[string]struct{}, len(branches))
	for i, b := range branches {
		if b == nil {
			return nil, invalidf("union: nil branch at %d", i)
		}
		if b.typ == TypeUnion {
			return nil, invalidf("union: nested union at %d", i)
		}
		n := b.BranchName()
		if _, dup := seen[n]; dup {
			return nil, invalidf("union: duplicate branch %q", n)
		}
		seen[n] = struct{}{}
	}
	return &Schema{typ: TypeUnion, branches: branches}, nil
}

// MustUnion is NewUnion that panics on error.
func MustUnion(branches ...*Schema) *Schema {
	s, err := NewUnion(branches...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Type() Type { return s.typ }

// Name returns the simple name of a named type.
func (s *Schema) Name() string { return s.name }

func (s *Schema) Namespace() string { return s.namespace }

// FullName returns the namespace-qualified name of a named type.
func (s *Schema) FullName() string {
	if s.namespace == "" {
		return s.name
	}
	return s.namespace + "." + s.name
}

// BranchName is the name that identifies s as a union branch: the full name
// for named types and the type name otherwise.
func (s *Schema) BranchName() string {
	if s.typ.Named() {
		return s.FullName()
	}
	return s.typ.String()
}

// Fields returns record fields in declaration order.
func (s *Schema) Fields() []*Field { return s.fields }

// FieldIndex returns the position of the named field, or -1.
func (s *Schema) FieldIndex(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Field returns the named field, or nil.
func (s *Schema) Field(name string) *Field {
	if i := s.FieldIndex(name); i >= 0 {
		return s.fields[i]
	}
	return nil
}

func (s *Schema) Symbols() []string { return s.symbols }

// SymbolIndex returns the ordinal of sym, or -1.
func (s *Schema) SymbolIndex(sym string) int {
	for i, v := range s.symbols {
		if v == sym {
			return i
		}
	}
	return -1
}

func (s *Schema) Items() *Schema      { return s.items }
func (s *Schema) Values() *Schema     { return s.values }
func (s *Schema) Branches() []*Schema { return s.branches }
func (s *Schema) Size() int           { return s.size }

// NullIndex returns the index of the null branch of a union, or -1.
func (s *Schema) NullIndex() int {
	for i, b := range s.branches {
		if b.typ == TypeNull {
			return i
		}
	}
	return -1
}

// BranchIndex resolves a union tag. Named branches match by full or simple
// name, others by type name.
func (s *Schema) BranchIndex(tag string) int {
	for i, b := range s.branches {
		if b.BranchName() == tag || (b.typ.Named() && b.name == tag) {
			return i
		}
	}
	return -1
}

// String renders a compact description, e.g. "union[null,long]".
func (s *Schema) String() string {
	switch s.typ {
	case TypeRecord, TypeEnum, TypeFixed:
		return s.typ.String() + " " + s.FullName()
	case TypeArray:
		return "array<" + s.items.String() + ">"
	case TypeMap:
		return "map<" + s.values.String() + ">"
	case TypeUnion:
		parts := make([]string, len(s.branches))
		for i, b := range s.branches {
			parts[i] = b.BranchName()
		}
		return "union[" + strings.Join(parts, ",") + "]"
	default:
		return s.typ.String()
	}
}

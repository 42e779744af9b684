// Package generic materializes decoded values without generated types:
// records become *Record, arrays []any, maps map[string]any, enums
// EnumSymbol, bytes and fixed []byte, and scalars their Go counterparts.
package generic

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reoring/skemajson"
	"github.com/reoring/skemajson/schema"
)

// Record holds field values in schema order.
type Record struct {
	schema *schema.Schema
	values []any
}

// NewRecord returns a record of s with every field nil.
func NewRecord(s *schema.Schema) *Record {
	return &Record{schema: s, values: make([]any, len(s.Fields()))}
}

func (r *Record) Schema() *schema.Schema { return r.schema }

// Get returns the value of the named field. It reports false for names the
// schema does not declare.
func (r *Record) Get(name string) (any, bool) {
	i := r.schema.FieldIndex(name)
	if i < 0 {
		return nil, false
	}
	return r.values[i], true
}

// Set assigns the named field. It reports false for undeclared names.
func (r *Record) Set(name string, v any) bool {
	i := r.schema.FieldIndex(name)
	if i < 0 {
		return false
	}
	r.values[i] = v
	return true
}

// Values returns the field values in schema order.
func (r *Record) Values() []any { return r.values }

func (r *Record) String() string {
	b := &strings.Builder{}
	b.WriteString(r.schema.FullName())
	b.WriteByte('{')
	for i, f := range r.schema.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: %v", f.Name(), r.values[i])
	}
	b.WriteByte('}')
	return b.String()
}

// EnumSymbol is a decoded enum value.
type EnumSymbol struct {
	Index  int
	Symbol string
}

func (e EnumSymbol) String() string { return e.Symbol }

// Read decodes the next value of type s, issuing the pull calls s implies.
func Read(d *skemajson.Decoder, s *schema.Schema) (any, error) {
	switch s.Type() {
	case schema.TypeNull:
		return nil, d.ReadNull()
	case schema.TypeBoolean:
		return d.ReadBoolean()
	case schema.TypeInt:
		return d.ReadInt()
	case schema.TypeLong:
		return d.ReadLong()
	case schema.TypeFloat:
		return d.ReadFloat()
	case schema.TypeDouble:
		return d.ReadDouble()
	case schema.TypeString:
		return d.ReadString()
	case schema.TypeBytes:
		return d.ReadBytes()
	case schema.TypeFixed:
		return d.ReadFixed()
	case schema.TypeEnum:
		i, err := d.ReadEnum()
		if err != nil {
			return nil, err
		}
		return EnumSymbol{Index: i, Symbol: s.Symbols()[i]}, nil
	case schema.TypeRecord:
		return readRecord(d, s)
	case schema.TypeArray:
		return readArray(d, s)
	case schema.TypeMap:
		return readMap(d, s)
	case schema.TypeUnion:
		i, err := d.ReadUnionIndex()
		if err != nil {
			return nil, err
		}
		return Read(d, s.Branches()[i])
	}
	return nil, fmt.Errorf("generic: unsupported schema type %s", s.Type())
}

func readRecord(d *skemajson.Decoder, s *schema.Schema) (any, error) {
	r := NewRecord(s)
	if len(s.Fields()) == 0 {
		return r, d.Skip()
	}
	for i, f := range s.Fields() {
		v, err := Read(d, f.Type())
		if err != nil {
			return nil, err
		}
		r.values[i] = v
	}
	return r, nil
}

func readArray(d *skemajson.Decoder, s *schema.Schema) (any, error) {
	if err := d.ArrayStart(); err != nil {
		return nil, err
	}
	out := []any{}
	for {
		more, err := d.ArrayNext()
		if err != nil {
			return nil, err
		}
		if !more {
			return out, nil
		}
		v, err := Read(d, s.Items())
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func readMap(d *skemajson.Decoder, s *schema.Schema) (any, error) {
	if err := d.MapStart(); err != nil {
		return nil, err
	}
	out := map[string]any{}
	for {
		more, err := d.MapNext()
		if err != nil {
			return nil, err
		}
		if !more {
			return out, nil
		}
		k, err := d.ReadMapKey()
		if err != nil {
			return nil, err
		}
		v, err := Read(d, s.Values())
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
}

// ReadDocument reads one whole document of the decoder's schema. It returns
// io.EOF when the input holds no further document.
func ReadDocument(d *skemajson.Decoder) (any, error) {
	v, err := Read(d, d.Schema())
	if err != nil {
		return nil, err
	}
	if err := d.EndDocument(); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeString decodes the single document in data.
func DecodeString(s *schema.Schema, data string, opts ...skemajson.DecodeOpt) (any, error) {
	return ReadDocument(skemajson.NewStringDecoder(s, data, opts...))
}

// DecodeAll decodes every concatenated document from src.
func DecodeAll(s *schema.Schema, src skemajson.Source, opts ...skemajson.DecodeOpt) ([]any, error) {
	d := skemajson.NewDecoder(s, src, opts...)
	var out []any
	for d.More() {
		v, err := ReadDocument(d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	if err := d.Err(); err != nil {
		return out, err
	}
	return out, nil
}

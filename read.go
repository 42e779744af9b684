package skemajson

import (
	"math"
	"strconv"

	eng "github.com/reoring/skemajson/internal/engine"
	"github.com/reoring/skemajson/internal/stream"
	"github.com/reoring/skemajson/schema"
)

// scalar resolves the next value and checks that the schema holds one of want.
func (d *Decoder) scalar(want ...schema.Type) (slot, error) {
	sl, err := d.next(true)
	if err != nil {
		return sl, err
	}
	for _, w := range want {
		if sl.schema.Type() == w {
			return sl, nil
		}
	}
	return slot{}, d.fail(d.callOrder("%s read at %s value", want[0], sl.schema))
}

// ReadNull reads a null value.
func (d *Decoder) ReadNull() error {
	sl, err := d.scalar(schema.TypeNull)
	if err != nil {
		return err
	}
	if sl.tok.Kind != eng.KindNull {
		return d.fail(d.mismatch(sl))
	}
	return nil
}

// ReadBoolean reads a boolean value.
func (d *Decoder) ReadBoolean() (bool, error) {
	sl, err := d.scalar(schema.TypeBoolean)
	if err != nil {
		return false, err
	}
	if sl.tok.Kind != eng.KindBool {
		return false, d.fail(d.mismatch(sl))
	}
	return sl.tok.Bool, nil
}

// ReadInt reads an int. Integral numbers written with a fraction, such as
// 1.0, are accepted.
func (d *Decoder) ReadInt() (int32, error) {
	sl, err := d.scalar(schema.TypeInt)
	if err != nil {
		return 0, err
	}
	v, ok := parseIntegral(sl.tok, 32)
	if !ok {
		return 0, d.fail(d.mismatch(sl))
	}
	return int32(v), nil
}

// ReadLong reads a long, or an int promoted to long.
func (d *Decoder) ReadLong() (int64, error) {
	sl, err := d.scalar(schema.TypeLong, schema.TypeInt)
	if err != nil {
		return 0, err
	}
	bits := 64
	if sl.schema.Type() == schema.TypeInt {
		bits = 32
	}
	v, ok := parseIntegral(sl.tok, bits)
	if !ok {
		return 0, d.fail(d.mismatch(sl))
	}
	return v, nil
}

// ReadFloat reads a float. The strings "NaN", "Infinity" and "-Infinity"
// stand for the non-finite values.
func (d *Decoder) ReadFloat() (float32, error) {
	sl, err := d.scalar(schema.TypeFloat, schema.TypeInt, schema.TypeLong)
	if err != nil {
		return 0, err
	}
	v, ok := parseFloating(sl.tok, 32)
	if !ok {
		return 0, d.fail(d.mismatch(sl))
	}
	return float32(v), nil
}

// ReadDouble reads a double, or any narrower numeric type promoted to it.
func (d *Decoder) ReadDouble() (float64, error) {
	sl, err := d.scalar(schema.TypeDouble, schema.TypeFloat, schema.TypeInt, schema.TypeLong)
	if err != nil {
		return 0, err
	}
	v, ok := parseFloating(sl.tok, 64)
	if !ok {
		return 0, d.fail(d.mismatch(sl))
	}
	return v, nil
}

// ReadString reads a string value.
func (d *Decoder) ReadString() (string, error) {
	sl, err := d.scalar(schema.TypeString)
	if err != nil {
		return "", err
	}
	if sl.tok.Kind != eng.KindString {
		return "", d.fail(d.mismatch(sl))
	}
	return sl.tok.String, nil
}

// ReadBytes reads bytes written as a string of code points 0 to 255.
func (d *Decoder) ReadBytes() ([]byte, error) {
	sl, err := d.scalar(schema.TypeBytes)
	if err != nil {
		return nil, err
	}
	b, ok := latin1(sl.tok)
	if !ok {
		return nil, d.fail(d.mismatch(sl))
	}
	return b, nil
}

// ReadFixed reads a fixed value; its length must equal the declared size.
func (d *Decoder) ReadFixed() ([]byte, error) {
	sl, err := d.scalar(schema.TypeFixed)
	if err != nil {
		return nil, err
	}
	b, ok := latin1(sl.tok)
	if !ok || len(b) != sl.schema.Size() {
		return nil, d.fail(d.mismatch(sl))
	}
	return b, nil
}

// ReadEnum reads an enum symbol and returns its ordinal.
func (d *Decoder) ReadEnum() (int, error) {
	sl, err := d.scalar(schema.TypeEnum)
	if err != nil {
		return 0, err
	}
	i := -1
	if sl.tok.Kind == eng.KindString {
		i = sl.schema.SymbolIndex(sl.tok.String)
	}
	if i < 0 {
		return 0, d.fail(d.mismatch(sl))
	}
	return i, nil
}

func (d *Decoder) open(kind frameKind, t schema.Type, begin eng.Kind) error {
	sl, err := d.next(true)
	if err != nil {
		return err
	}
	if sl.schema.Type() != t {
		return d.fail(d.callOrder("%s start at %s value", t, sl.schema))
	}
	if sl.tok.Kind != begin {
		return d.fail(d.mismatch(sl))
	}
	d.push(frame{kind: kind, schema: sl.schema, path: sl.path, synth: sl.synth})
	return nil
}

// ArrayStart opens an array. Follow it with ArrayNext before each item.
func (d *Decoder) ArrayStart() error {
	return d.open(frameArray, schema.TypeArray, eng.KindBeginArray)
}

// ArrayNext reports whether another item follows. It returns false after
// consuming the end of the array.
func (d *Decoder) ArrayNext() (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if err := d.settle(); err != nil {
		return false, d.fail(err)
	}
	f := d.top()
	if f.kind != frameArray || f.pending {
		return false, d.fail(d.callOrder("ArrayNext outside of an array"))
	}
	tok, err := d.in.Peek()
	if err != nil {
		return false, d.fail(err)
	}
	if tok.Kind == eng.KindEndArray {
		d.in.NextToken()
		d.pop()
		return false, nil
	}
	f.pending = true
	return true, nil
}

// MapStart opens a map. Follow it with MapNext before each entry.
func (d *Decoder) MapStart() error {
	return d.open(frameMap, schema.TypeMap, eng.KindBeginObject)
}

// MapNext reports whether another entry follows. It returns false after
// consuming the end of the map.
func (d *Decoder) MapNext() (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if err := d.settle(); err != nil {
		return false, d.fail(err)
	}
	f := d.top()
	if f.kind != frameMap || f.state != mapIdle {
		return false, d.fail(d.callOrder("MapNext outside of a map"))
	}
	tok, err := d.in.Peek()
	if err != nil {
		return false, d.fail(err)
	}
	switch tok.Kind {
	case eng.KindEndObject:
		d.in.NextToken()
		d.pop()
		return false, nil
	case eng.KindKey:
		f.state = mapKey
		return true, nil
	}
	return false, d.fail(d.malformed(tok, "expected map key"))
}

// ReadMapKey reads the key of the entry announced by MapNext.
func (d *Decoder) ReadMapKey() (string, error) {
	if d.err != nil {
		return "", d.err
	}
	f := d.top()
	if f.kind != frameMap || f.state != mapKey {
		return "", d.fail(d.callOrder("ReadMapKey without MapNext"))
	}
	tok, err := d.in.NextToken()
	if err != nil {
		return "", d.fail(err)
	}
	f.state = mapValue
	f.key = tok.String
	return tok.String, nil
}

// Skip consumes the next value, whatever its schema. Record fields, array
// items, map values and union values are skipped whole.
func (d *Decoder) Skip() error {
	sl, err := d.next(false)
	if err != nil {
		return err
	}
	return d.fail(stream.Skip(d.in, sl.tok))
}

// SkipArray consumes the next value, which the schema declares an array.
func (d *Decoder) SkipArray() error { return d.skipKind(schema.TypeArray) }

// SkipMap consumes the next value, which the schema declares a map.
func (d *Decoder) SkipMap() error { return d.skipKind(schema.TypeMap) }

func (d *Decoder) skipKind(t schema.Type) error {
	sl, err := d.next(false)
	if err != nil {
		return err
	}
	if sl.schema.Type() != t {
		return d.fail(d.callOrder("skip %s at %s value", t, sl.schema))
	}
	return d.fail(stream.Skip(d.in, sl.tok))
}

// parseIntegral parses an integral number of the given width. Numbers with
// a zero fraction or an exponent are accepted when they are whole and fit.
func parseIntegral(tok eng.Token, bits int) (int64, bool) {
	if tok.Kind != eng.KindNumber {
		return 0, false
	}
	if v, err := strconv.ParseInt(tok.Number, 10, bits); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(tok.Number, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	lim := math.Ldexp(1, bits-1)
	if f < -lim || f >= lim {
		return 0, false
	}
	return int64(f), true
}

func parseFloating(tok eng.Token, bits int) (float64, bool) {
	switch tok.Kind {
	case eng.KindNumber:
		v, err := strconv.ParseFloat(tok.Number, bits)
		return v, err == nil
	case eng.KindString:
		switch tok.String {
		case "NaN":
			return math.NaN(), true
		case "Infinity":
			return math.Inf(1), true
		case "-Infinity":
			return math.Inf(-1), true
		}
	}
	return 0, false
}

// latin1 maps each code point of a string token to one byte.
func latin1(tok eng.Token) ([]byte, bool) {
	if tok.Kind != eng.KindString {
		return nil, false
	}
	out := make([]byte, 0, len(tok.String))
	for _, r := range tok.String {
		if r > 0xFF {
			return nil, false
		}
		out = append(out, byte(r))
	}
	return out, true
}

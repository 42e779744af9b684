package skemajson

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	eng "github.com/reoring/skemajson/internal/engine"
	"github.com/reoring/skemajson/internal/stream"
	"github.com/reoring/skemajson/schema"
)

type frameKind uint8

const (
	frameRoot frameKind = iota
	frameRecord
	frameArray
	frameMap
	frameUnion
)

type mapState uint8

const (
	mapIdle mapState = iota
	mapKey
	mapValue
)

// frame is one open value on the decode stack. Only the fields of its kind
// are meaningful.
type frame struct {
	kind   frameKind
	schema *schema.Schema
	path   string
	// synth marks values that come from a default literal rather than input.
	synth bool

	served bool // root, union

	idx   int            // record: next field to serve
	buf   *stream.Buffer // record: fields seen ahead of their position
	ended bool           // record: closing token consumed

	pending bool // array: ArrayNext announced an item
	count   int  // array: items served

	state mapState
	key   string

	branch int
	tagged bool
}

// slot is a resolved value position: its schema, JSON Pointer, and the first
// token of its value, already consumed.
type slot struct {
	schema *schema.Schema
	tok    eng.Token
	path   string
	synth  bool
}

var errNoDocument = errors.New("no document")

// Decoder reads JSON values in the order a schema declares them.
//
// Callers issue reads following the schema: one read per scalar, ArrayStart
// and ArrayNext for arrays, MapStart, MapNext and ReadMapKey for maps, and
// ReadUnionIndex before the value of a union. Records need no call of their
// own; reading the first field enters the record. A record with no fields is
// consumed with Skip. At the start of a document, Skip consumes the first
// field of a document record, or the whole document for other schemas.
//
// Object keys may appear in any order. Keys that arrive before their schema
// position are buffered and replayed, keys unknown to the schema are skipped,
// and fields missing from the input resolve to their default, to null for
// nullable unions, or to ErrMissingRequiredField.
//
// Errors are sticky: after the first error every call returns it until Reset.
type Decoder struct {
	schema *schema.Schema
	opt    DecodeOpt
	log    *slog.Logger
	driver JSONDriver

	in       *stream.Reader
	frames   []frame
	err      error
	defaults map[*schema.Field][]eng.Token
	presence presenceCollector
	warnings Issues
	docs     int
	path     string
}

// NewDecoder returns a decoder for s over src. When several options are
// given the last one wins.
func NewDecoder(s *schema.Schema, src Source, opts ...DecodeOpt) *Decoder {
	o := mergeOpts(opts)
	d := &Decoder{
		schema:   s,
		opt:      o,
		log:      o.Logger,
		driver:   CurrentJSONDriver(),
		defaults: make(map[*schema.Field][]eng.Token),
		presence: presenceCollector{opt: o.Presence},
	}
	d.Reset(src)
	return d
}

// NewStringDecoder is NewDecoder over JSON text.
func NewStringDecoder(s *schema.Schema, json string, opts ...DecodeOpt) *Decoder {
	return NewDecoder(s, JSONString(json), opts...)
}

// Reset discards all decoding state, including a sticky error, and continues
// with src. Cached default literals are kept.
func (d *Decoder) Reset(src Source) {
	src = EnforceSource(src, d.opt, d.warn)
	if d.in == nil {
		d.in = stream.NewReader(src)
	} else {
		d.in.Reset(src)
	}
	d.frames = append(d.frames[:0], frame{kind: frameRoot, schema: d.schema})
	d.err = nil
	d.warnings = nil
	d.presence.pm = nil
	d.docs = 0
	d.path = ""
}

// Schema returns the schema the decoder reads.
func (d *Decoder) Schema() *schema.Schema { return d.schema }

// Path returns the JSON Pointer of the value most recently resolved.
func (d *Decoder) Path() string {
	if d.path == "" {
		return "/"
	}
	return d.path
}

// Err returns the sticky error, if any.
func (d *Decoder) Err() error { return d.err }

// Warnings returns the non-fatal issues of the current document: duplicate
// keys under Warn and ambiguous unions under AmbiguityFirstMatch.
func (d *Decoder) Warnings() Issues { return d.warnings }

// Presence returns the presence flags of the current or last document. It is
// nil unless DecodeOpt.Presence.Collect is set.
func (d *Decoder) Presence() PresenceMap { return d.presence.pm }

// Documents returns how many documents have been started.
func (d *Decoder) Documents() int { return d.docs }

// More reports whether another value follows in the input. At a document
// boundary this is whether another document follows.
func (d *Decoder) More() bool {
	if d.err != nil {
		return false
	}
	if err := d.settle(); err != nil {
		d.fail(err)
		return true
	}
	_, err := d.in.Peek()
	return err != io.EOF
}

// EndDocument finishes the current document: it consumes the remaining
// unknown keys of closed records and checks that the whole value was read.
func (d *Decoder) EndDocument() error {
	if d.err != nil {
		return d.err
	}
	return d.fail(d.endDocument())
}

func (d *Decoder) endDocument() error {
	if err := d.settle(); err != nil {
		return err
	}
	if len(d.frames) > 1 {
		return d.callOrder("document not fully read")
	}
	root := &d.frames[0]
	if !root.served {
		return d.callOrder("no document started")
	}
	root.served = false
	return nil
}

func (d *Decoder) top() *frame { return &d.frames[len(d.frames)-1] }

func (d *Decoder) push(f frame) { d.frames = append(d.frames, f) }

func (d *Decoder) pop() { d.frames = d.frames[:len(d.frames)-1] }

// next resolves the next value position and consumes its first token. With
// enter set, record positions are entered until a non-record value is found.
// Without it only the document record is entered.
func (d *Decoder) next(enter bool) (slot, error) {
	if d.err != nil {
		return slot{}, d.err
	}
	again := false
	for {
		if err := d.settle(); err != nil {
			return slot{}, d.fail(err)
		}
		atRoot := len(d.frames) == 1
		sl, err := d.resolve(again)
		if err == errNoDocument {
			return slot{}, io.EOF
		}
		if err != nil {
			return slot{}, d.fail(err)
		}
		again = again || atRoot
		d.path = sl.path
		if sl.schema.Type() != schema.TypeRecord {
			return sl, nil
		}
		// a document-level record has no read of its own
		if !enter && !(atRoot && len(sl.schema.Fields()) > 0) {
			return sl, nil
		}
		if sl.tok.Kind != eng.KindBeginObject {
			return slot{}, d.fail(d.mismatch(sl))
		}
		d.push(frame{kind: frameRecord, schema: sl.schema, path: sl.path, synth: sl.synth})
	}
}

// settle closes finished records and served unions on top of the stack.
func (d *Decoder) settle() error {
	for {
		f := d.top()
		switch f.kind {
		case frameRecord:
			if f.idx < len(f.schema.Fields()) {
				return nil
			}
			if err := d.closeRecord(f); err != nil {
				return err
			}
		case frameUnion:
			if !f.served {
				return nil
			}
			if f.tagged {
				tok, err := d.in.NextToken()
				if err != nil {
					return err
				}
				if tok.Kind != eng.KindEndObject {
					return Issues{newIssue(CodeInvalidType, f.path, tok.Offset, ErrSchemaMismatch, nil, "tagged union wrapper must hold exactly one key")}
				}
			}
		default:
			return nil
		}
		d.pop()
	}
}

func (d *Decoder) closeRecord(f *frame) error {
	for !f.ended {
		tok, err := d.in.NextToken()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case eng.KindEndObject:
			f.ended = true
		case eng.KindKey:
			if err := d.skipValue(f, tok.String); err != nil {
				return err
			}
		default:
			return d.malformed(tok, "expected object key")
		}
	}
	f.buf = nil
	return nil
}

func (d *Decoder) skipValue(f *frame, key string) error {
	first, err := d.in.NextToken()
	if err != nil {
		return err
	}
	if f.schema.FieldIndex(key) < 0 {
		d.log.Debug("unknown field skipped", "record", f.schema.FullName(), "path", eng.JoinPointer(f.path, key))
	} else {
		d.log.Debug("duplicate field skipped", "record", f.schema.FullName(), "path", eng.JoinPointer(f.path, key))
	}
	return stream.Skip(d.in, first)
}

func (d *Decoder) resolve(again bool) (slot, error) {
	f := d.top()
	switch f.kind {
	case frameRoot:
		if f.served {
			if again {
				return slot{}, d.callOrder("no value left in document")
			}
			if err := d.endDocument(); err != nil {
				return slot{}, err
			}
		}
		d.warnings = nil
		tok, err := d.in.NextToken()
		if err == io.EOF {
			return slot{}, errNoDocument
		}
		if err != nil {
			return slot{}, err
		}
		d.frames[0].served = true
		d.docs++
		d.presence.reset()
		d.note("", PresenceSeen, tok)
		return slot{schema: d.schema, tok: tok}, nil
	case frameRecord:
		return d.resolveField(f)
	case frameArray:
		if !f.pending {
			return slot{}, d.callOrder("ArrayNext must precede each item")
		}
		f.pending = false
		path := eng.JoinPointer(f.path, strconv.Itoa(f.count))
		f.count++
		return d.take(path, f.schema.Items(), f.synth, PresenceSeen)
	case frameMap:
		if f.state != mapValue {
			return slot{}, d.callOrder("ReadMapKey must precede each value")
		}
		f.state = mapIdle
		return d.take(eng.JoinPointer(f.path, f.key), f.schema.Values(), f.synth, PresenceSeen)
	case frameUnion:
		if f.served {
			return slot{}, d.callOrder("union value already read")
		}
		f.served = true
		return d.take(f.path, f.schema.Branches()[f.branch], f.synth, 0)
	}
	return slot{}, fmt.Errorf("skemajson: unknown frame kind %d", f.kind)
}

// take consumes the first token of a value at path and records presence.
func (d *Decoder) take(path string, s *schema.Schema, synth bool, p Presence) (slot, error) {
	tok, err := d.in.NextToken()
	if err != nil {
		return slot{}, err
	}
	if !synth {
		d.note(path, p, tok)
	}
	return slot{schema: s, tok: tok, path: path, synth: synth}, nil
}

func (d *Decoder) note(path string, p Presence, tok eng.Token) {
	if tok.Kind == eng.KindNull {
		p |= PresenceWasNull
	}
	if p != 0 {
		d.presence.mark(path, p)
	}
}

// resolveField serves the next declared field of the record on top: from
// the buffer, from the live object, or from the absent-field policy.
func (d *Decoder) resolveField(f *frame) (slot, error) {
	fld := f.schema.Fields()[f.idx]
	f.idx++
	name := fld.Name()
	path := eng.JoinPointer(f.path, name)

	if f.buf.Has(name) {
		d.in.Push(f.buf.Take(name))
		return d.take(path, fld.Type(), f.synth, PresenceSeen)
	}
	for !f.ended {
		tok, err := d.in.NextToken()
		if err != nil {
			return slot{}, err
		}
		switch tok.Kind {
		case eng.KindEndObject:
			f.ended = true
		case eng.KindKey:
			key := tok.String
			if key == name {
				return d.take(path, fld.Type(), f.synth, PresenceSeen)
			}
			j := f.schema.FieldIndex(key)
			if j < 0 || j < f.idx || f.buf.Has(key) {
				if err := d.skipValue(f, key); err != nil {
					return slot{}, err
				}
				continue
			}
			first, err := d.in.NextToken()
			if err != nil {
				return slot{}, err
			}
			toks, err := stream.Capture(d.in, first)
			if err != nil {
				return slot{}, err
			}
			if f.buf == nil {
				f.buf = &stream.Buffer{}
			}
			f.buf.Put(key, toks)
			d.log.Debug("field buffered", "path", eng.JoinPointer(f.path, key), "tokens", len(toks), "waiting_for", name,
				"buffered_fields", f.buf.Len(), "buffered_tokens", f.buf.Tokens())
		default:
			return slot{}, d.malformed(tok, "expected object key")
		}
	}
	return d.absent(f, fld, path)
}

// absent applies the default, implicit null, or required policy to a field
// the closed object did not contain.
func (d *Decoder) absent(f *frame, fld *schema.Field, path string) (slot, error) {
	mark := PresenceDefaultApplied
	if f.synth {
		mark = 0
	}
	if raw, ok := fld.Default(); ok {
		toks, err := d.defaultTokens(fld, raw)
		if err != nil {
			return slot{}, err
		}
		d.log.Debug("default applied", "path", path)
		d.in.Push(toks)
		sl, err := d.take(path, fld.Type(), true, 0)
		if err == nil && mark != 0 {
			d.note(path, mark, sl.tok)
		}
		return sl, err
	}
	if t := fld.Type(); t.Type() == schema.TypeUnion && t.NullIndex() >= 0 {
		d.log.Debug("implicit null", "path", path)
		d.in.Push([]eng.Token{eng.NullToken()})
		sl, err := d.take(path, t, true, 0)
		if err == nil && mark != 0 {
			d.note(path, mark, sl.tok)
		}
		return sl, err
	}
	return slot{}, Issues{newIssue(CodeRequired, path, d.in.Location(), ErrMissingRequiredField, nil, "field "+fld.Name()+" of "+f.schema.FullName())}
}

// defaultTokens tokenizes a default literal once per decoder.
func (d *Decoder) defaultTokens(fld *schema.Field, raw []byte) ([]eng.Token, error) {
	if toks, ok := d.defaults[fld]; ok {
		return toks, nil
	}
	src := d.driver.NewBytes(raw)
	first, err := src.NextToken()
	if err == nil {
		var toks []eng.Token
		toks, err = stream.Capture(src, first)
		if err == nil {
			for i := range toks {
				toks[i].Offset = -1
			}
			d.defaults[fld] = toks
			return toks, nil
		}
	}
	return nil, Issues{newIssue(CodeParseError, "", -1, ErrMalformedInput, err, "default literal of field "+fld.Name())}
}

func (d *Decoder) warn(it Issue) {
	d.warnings = append(d.warnings, it)
	d.log.Warn(it.Message, "code", it.Code, "path", it.Path, "hint", it.Hint)
}

// fail converts err into Issues and makes it sticky.
func (d *Decoder) fail(err error) error {
	if err == nil {
		return nil
	}
	if d.err != nil {
		return d.err
	}
	var iss Issues
	switch {
	case errors.As(err, &iss):
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		iss = Issues{newIssue(CodeParseError, d.path, d.in.Location(), ErrMalformedInput, io.ErrUnexpectedEOF, "unexpected end of input")}
	default:
		iss = Issues{newIssue(CodeParseError, d.path, d.in.Location(), ErrMalformedInput, err, "")}
	}
	d.err = iss
	return iss
}

func (d *Decoder) callOrder(format string, args ...any) error {
	return Issues{newIssue(CodeCallOrder, d.path, d.in.Location(), ErrCallOrder, nil, fmt.Sprintf(format, args...))}
}

func (d *Decoder) mismatch(sl slot) error {
	return Issues{newIssue(CodeInvalidType, sl.path, sl.tok.Offset, ErrSchemaMismatch, nil,
		"expected "+sl.schema.String()+", got "+sl.tok.Kind.String())}
}

func (d *Decoder) malformed(tok eng.Token, hint string) error {
	return Issues{newIssue(CodeParseError, d.path, tok.Offset, ErrMalformedInput, nil, hint+", got "+tok.Kind.String())}
}

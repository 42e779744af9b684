package skemajson

import (
	"strings"

	eng "github.com/reoring/skemajson/internal/engine"
	"github.com/reoring/skemajson/internal/stream"
	"github.com/reoring/skemajson/schema"
)

// ReadUnionIndex resolves the branch of the next union value and returns its
// index. The branch value is read next with the call matching its type.
//
// Branches are chosen in this order: null selects the null branch; an object
// holding exactly one key that names a branch is the tagged form
// {"<branch>": value};
// anything else selects the first branch whose type fits the value. A
// missing nullable field reads as null.
func (d *Decoder) ReadUnionIndex() (int, error) {
	sl, err := d.next(true)
	if err != nil {
		return 0, err
	}
	if sl.schema.Type() != schema.TypeUnion {
		return 0, d.fail(d.callOrder("union read at %s value", sl.schema))
	}
	idx, tagged, err := d.resolveUnion(sl)
	if err != nil {
		return 0, d.fail(err)
	}
	d.push(frame{kind: frameUnion, schema: sl.schema, path: sl.path, synth: sl.synth, branch: idx, tagged: tagged})
	return idx, nil
}

// resolveUnion picks the branch for the value starting at sl.tok. For the
// tagged form the wrapper key is consumed and its closing token is left for
// settle; otherwise everything read is pushed back so the branch read sees
// the whole value.
func (d *Decoder) resolveUnion(sl slot) (int, bool, error) {
	u := sl.schema
	if sl.tok.Kind == eng.KindBeginObject {
		next, err := d.in.Peek()
		if err != nil {
			return 0, false, err
		}
		if next.Kind == eng.KindKey {
			if i := u.BranchIndex(next.String); i >= 0 {
				tagged, err := d.unwrapTagged()
				if err != nil {
					return 0, false, err
				}
				if tagged {
					d.log.Debug("tagged union", "path", sl.path, "branch", next.String)
					return i, true, nil
				}
			}
		}
	}
	d.in.Push([]eng.Token{sl.tok})
	if sl.tok.Kind == eng.KindNull {
		if i := u.NullIndex(); i >= 0 {
			return i, false, nil
		}
		return 0, false, d.mismatch(sl)
	}

	first, n := -1, 0
	var names []string
	for i, b := range u.Branches() {
		if b.Type() == schema.TypeNull || !fits(b, sl.tok) {
			continue
		}
		if first < 0 {
			first = i
		}
		n++
		names = append(names, b.BranchName())
	}
	switch {
	case n == 0:
		return 0, false, d.mismatch(sl)
	case n > 1:
		it := newIssue(CodeUnionAmbiguous, sl.path, sl.tok.Offset, ErrAmbiguousUnion, nil, "value fits "+strings.Join(names, ", "))
		if d.opt.Ambiguity == AmbiguityError {
			return 0, false, Issues{it}
		}
		d.warn(it)
	}
	return first, false, nil
}

// unwrapTagged reads the first member of an object whose first key names a
// branch. If the object ends there the member value is pushed back alone;
// otherwise key and value are pushed back for an untagged read.
func (d *Decoder) unwrapTagged() (bool, error) {
	key, err := d.in.NextToken()
	if err != nil {
		return false, err
	}
	first, err := d.in.NextToken()
	if err != nil {
		return false, err
	}
	val, err := stream.Capture(d.in, first)
	if err != nil {
		return false, err
	}
	end, err := d.in.Peek()
	if err != nil {
		return false, err
	}
	if end.Kind == eng.KindEndObject {
		d.in.Push(val)
		return true, nil
	}
	d.in.Push(append([]eng.Token{key}, val...))
	return false, nil
}

// fits reports whether a value starting with tok can be read as b.
func fits(b *schema.Schema, tok eng.Token) bool {
	switch tok.Kind {
	case eng.KindNumber:
		switch b.Type() {
		case schema.TypeInt:
			_, ok := parseIntegral(tok, 32)
			return ok
		case schema.TypeLong:
			_, ok := parseIntegral(tok, 64)
			return ok
		case schema.TypeFloat:
			_, ok := parseFloating(tok, 32)
			return ok
		case schema.TypeDouble:
			_, ok := parseFloating(tok, 64)
			return ok
		}
	case eng.KindString:
		switch b.Type() {
		case schema.TypeString:
			return true
		case schema.TypeBytes:
			_, ok := latin1(tok)
			return ok
		case schema.TypeFixed:
			v, ok := latin1(tok)
			return ok && len(v) == b.Size()
		case schema.TypeEnum:
			return b.SymbolIndex(tok.String) >= 0
		case schema.TypeFloat, schema.TypeDouble:
			_, ok := parseFloating(tok, 64)
			return ok
		}
	case eng.KindBool:
		return b.Type() == schema.TypeBoolean
	case eng.KindBeginArray:
		return b.Type() == schema.TypeArray
	case eng.KindBeginObject:
		return b.Type() == schema.TypeRecord || b.Type() == schema.TypeMap
	}
	return false
}

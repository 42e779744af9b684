// Package fastjson provides a token source backed by valyala/fastjson. Each
// top-level value is parsed as a whole by fastjson.Scanner and then served
// as tokens in document order.
//
// The scanner works on one contiguous buffer: NewReader reads the whole
// stream before the first token, so memory grows with the input. fastjson
// rejects values nested deeper than fastjson.MaxDepth (300), so deeper input
// fails with a parse error under this driver even when it is well-formed.
// Tokens carry no byte offsets and Location reports -1; size limits fall
// back to the length of the token text.
package fastjson

import (
	"fmt"
	"io"

	fj "github.com/valyala/fastjson"

	eng "github.com/reoring/skemajson/internal/engine"
)

type source struct {
	sc   fj.Scanner
	toks []eng.Token
	pos  int
	err  error
	docs int64
}

// NewBytes wraps a byte slice holding one or more concatenated JSON values.
func NewBytes(b []byte) eng.TokenSource {
	s := &source{}
	s.sc.InitBytes(b)
	return s
}

// NewReader reads r to the end and then behaves like NewBytes.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &source{err: err}
	}
	return NewBytes(b)
}

func (s *source) NextToken() (eng.Token, error) {
	if s.pos < len(s.toks) {
		t := s.toks[s.pos]
		s.pos++
		return t, nil
	}
	if s.err != nil {
		return eng.Token{}, s.err
	}
	if !s.sc.Next() {
		if err := s.sc.Error(); err != nil {
			s.err = fmt.Errorf("fastjson: document %d: %w", s.docs+1, err)
		} else {
			s.err = io.EOF
		}
		return eng.Token{}, s.err
	}
	s.docs++
	s.toks = appendValue(s.toks[:0], s.sc.Value())
	s.pos = 1
	return s.toks[0], nil
}

// appendValue flattens v; fastjson already bounds nesting depth while parsing.
func appendValue(dst []eng.Token, v *fj.Value) []eng.Token {
	switch v.Type() {
	case fj.TypeObject:
		dst = append(dst, eng.Token{Kind: eng.KindBeginObject, Offset: -1})
		o, _ := v.Object()
		o.Visit(func(key []byte, fv *fj.Value) {
			dst = append(dst, eng.Token{Kind: eng.KindKey, String: string(key), Offset: -1})
			dst = appendValue(dst, fv)
		})
		return append(dst, eng.Token{Kind: eng.KindEndObject, Offset: -1})
	case fj.TypeArray:
		dst = append(dst, eng.Token{Kind: eng.KindBeginArray, Offset: -1})
		items, _ := v.Array()
		for _, it := range items {
			dst = appendValue(dst, it)
		}
		return append(dst, eng.Token{Kind: eng.KindEndArray, Offset: -1})
	case fj.TypeString:
		sb, _ := v.StringBytes()
		return append(dst, eng.Token{Kind: eng.KindString, String: string(sb), Offset: -1})
	case fj.TypeNumber:
		return append(dst, eng.Token{Kind: eng.KindNumber, Number: string(v.MarshalTo(nil)), Offset: -1})
	case fj.TypeTrue:
		return append(dst, eng.Token{Kind: eng.KindBool, Bool: true, Offset: -1})
	case fj.TypeFalse:
		return append(dst, eng.Token{Kind: eng.KindBool, Bool: false, Offset: -1})
	default:
		return append(dst, eng.Token{Kind: eng.KindNull, Offset: -1})
	}
}

func (s *source) Location() int64 { return -1 }

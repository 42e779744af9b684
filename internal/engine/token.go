package engine

import (
	"io"
	"strconv"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "begin_object"
	case KindEndObject:
		return "end_object"
	case KindBeginArray:
		return "begin_array"
	case KindEndArray:
		return "end_array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsScalar reports whether the kind carries a complete value on its own.
func (k Kind) IsScalar() bool {
	switch k {
	case KindString, KindNumber, KindBool, KindNull:
		return true
	}
	return false
}

// Token represents a streaming token with approximate input offset.
// Key and String tokens carry their text in String; Number tokens keep the
// raw literal in Number so callers decide the numeric interpretation.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// NullToken returns a null token with unknown offset.
func NullToken() Token { return Token{Kind: KindNull, Offset: -1} }

// Text renders the token payload the way it appeared in JSON.
func (t Token) Text() string {
	switch t.Kind {
	case KindBeginObject:
		return "{"
	case KindEndObject:
		return "}"
	case KindBeginArray:
		return "["
	case KindEndArray:
		return "]"
	case KindKey, KindString:
		return strconv.Quote(t.String)
	case KindNumber:
		return t.Number
	case KindBool:
		return strconv.FormatBool(t.Bool)
	case KindNull:
		return "null"
	default:
		return "?"
	}
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SliceSource serves a fixed token sequence and then io.EOF.
type SliceSource struct {
	toks []Token
	pos  int
}

// NewSliceSource wraps toks without copying.
func NewSliceSource(toks []Token) *SliceSource { return &SliceSource{toks: toks} }

func (s *SliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *SliceSource) Location() int64 {
	if s.pos > 0 && s.pos <= len(s.toks) {
		return s.toks[s.pos-1].Offset
	}
	return -1
}

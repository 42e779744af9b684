package stream

import (
	"io"

	eng "github.com/reoring/skemajson/internal/engine"
)

// SubtreeSource is a view over exactly one JSON value: it first returns the
// already-consumed token that starts the value and then streams the rest of
// that value from inner, returning io.EOF after the matching end token.
// Nesting is tracked with a depth counter rather than recursion.
type SubtreeSource struct {
	inner       eng.TokenSource
	first       eng.Token
	firstServed bool
	depth       int
	done        bool
}

// NewSubtreeSource constructs a subtree view whose first token is first.
func NewSubtreeSource(inner eng.TokenSource, first eng.Token) *SubtreeSource {
	return &SubtreeSource{inner: inner, first: first}
}

func (s *SubtreeSource) NextToken() (eng.Token, error) {
	if s.done {
		return eng.Token{}, io.EOF
	}
	var tok eng.Token
	if !s.firstServed {
		s.firstServed = true
		tok = s.first
	} else {
		var err error
		tok, err = s.inner.NextToken()
		if err != nil {
			if err == io.EOF {
				return eng.Token{}, io.ErrUnexpectedEOF
			}
			return eng.Token{}, err
		}
	}
	switch tok.Kind {
	case eng.KindBeginObject, eng.KindBeginArray:
		s.depth++
	case eng.KindEndObject, eng.KindEndArray:
		s.depth--
		if s.depth < 0 {
			return eng.Token{}, errUnbalanced
		}
	case eng.KindKey:
		if s.depth == 0 {
			return eng.Token{}, errUnbalanced
		}
	}
	if s.depth == 0 {
		s.done = true
	}
	return tok, nil
}

func (s *SubtreeSource) Location() int64 { return s.inner.Location() }

// Capture reads the value starting at first and returns its complete,
// depth-balanced token sequence.
func Capture(src eng.TokenSource, first eng.Token) ([]eng.Token, error) {
	sub := NewSubtreeSource(src, first)
	var toks []eng.Token
	for {
		tok, err := sub.NextToken()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

// Skip discards the value starting at first without retaining it.
func Skip(src eng.TokenSource, first eng.Token) error {
	sub := NewSubtreeSource(src, first)
	for {
		_, err := sub.NextToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

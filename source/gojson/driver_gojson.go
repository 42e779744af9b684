// Package gojson adapts goccy/go-json's streaming Decoder.Token API to the
// engine token model. It is the default driver.
//
// Decoder.Token skips ',' and ':' wherever they appear, so the source keeps
// the raw bytes between tokens and checks the separators against the
// position in the enclosing object or array.
package gojson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/skemajson/internal/engine"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind     containerKind
	afterKey bool // object: key read, value pending
	n        int  // completed members or items
}

// SyntaxError reports input that is not well-formed JSON.
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("gojson: %s (offset %d)", e.Msg, e.Offset)
}

// teeReader keeps the bytes the decoder pulled that no token has consumed yet.
type teeReader struct {
	r   io.Reader
	buf []byte
}

func (t *teeReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.buf = append(t.buf, p[:n]...)
	return n, err
}

type source struct {
	dec   *j.Decoder
	raw   *teeReader
	base  int64 // input offset of raw.buf[0]
	stack []frame
	err   error
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
// Token offsets are the byte position where each token starts.
func NewReader(r io.Reader) eng.TokenSource {
	raw := &teeReader{r: r}
	dec := j.NewDecoder(raw)
	dec.UseNumber()
	return &source{dec: dec, raw: raw}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	tok, err := s.dec.Token()
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
		return eng.Token{}, err
	}
	end := s.dec.InputOffset()
	seps, start := s.gap(end)
	s.consume(end)
	if err != nil {
		switch {
		case seps != "":
			err = &SyntaxError{Offset: start, Msg: fmt.Sprintf("unexpected %q at end of input", seps)}
		case len(s.stack) > 0:
			err = io.ErrUnexpectedEOF
		}
		s.err = err
		return eng.Token{}, err
	}
	t, err := s.accept(tok, seps, start)
	if err != nil {
		s.err = err
		return eng.Token{}, err
	}
	return t, nil
}

// gap returns the separators between the previous token and the one ending
// at end, and the offset where that token starts.
func (s *source) gap(end int64) (string, int64) {
	b := s.raw.buf[:min(end-s.base, int64(len(s.raw.buf)))]
	var seps []byte
	i := 0
scan:
	for ; i < len(b); i++ {
		switch b[i] {
		case ' ', '\t', '\r', '\n':
		case ',', ':':
			seps = append(seps, b[i])
		default:
			break scan
		}
	}
	return string(seps), s.base + int64(i)
}

func (s *source) consume(end int64) {
	n := min(end-s.base, int64(len(s.raw.buf)))
	s.raw.buf = s.raw.buf[n:]
	if len(s.raw.buf) == 0 {
		s.raw.buf = nil
	}
	s.base += n
}

func (s *source) syntax(off int64, format string, args ...any) error {
	return &SyntaxError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func want(n int) string {
	if n == 0 {
		return ""
	}
	return ","
}

// accept checks tok and its leading separators against the current position
// and converts it.
func (s *source) accept(tok j.Token, seps string, off int64) (eng.Token, error) {
	d, isDelim := tok.(j.Delim)
	closing := isDelim && (d == '}' || d == ']')
	var top *frame
	if n := len(s.stack); n > 0 {
		top = &s.stack[n-1]
	}
	switch {
	case top == nil:
		if seps != "" {
			return eng.Token{}, s.syntax(off, "unexpected %q before value", seps)
		}
		if closing {
			return eng.Token{}, s.syntax(off, "unexpected %q outside any container", rune(d))
		}
	case top.kind == kindObject && top.afterKey:
		if seps != ":" {
			return eng.Token{}, s.syntax(off, "expected ':' after object key, got %q", seps)
		}
		if closing {
			return eng.Token{}, s.syntax(off, "expected value after object key, got %q", rune(d))
		}
		top.afterKey = false
	case top.kind == kindObject:
		if isDelim && d == '}' {
			if seps != "" {
				return eng.Token{}, s.syntax(off, "unexpected %q before '}'", seps)
			}
			break
		}
		key, ok := tok.(string)
		if !ok {
			return eng.Token{}, s.syntax(off, "expected object key")
		}
		if seps != want(top.n) {
			return eng.Token{}, s.syntax(off, "expected %q before object key, got %q", want(top.n), seps)
		}
		top.afterKey = true
		return eng.Token{Kind: eng.KindKey, String: key, Offset: off}, nil
	default:
		if isDelim && d == '}' {
			return eng.Token{}, s.syntax(off, "unexpected '}' in array")
		}
		if isDelim && d == ']' {
			if seps != "" {
				return eng.Token{}, s.syntax(off, "unexpected %q before ']'", seps)
			}
			break
		}
		if seps != want(top.n) {
			return eng.Token{}, s.syntax(off, "expected %q between array items, got %q", want(top.n), seps)
		}
	}

	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject})
			return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: off}, nil
		case '}':
			s.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: off}, nil
		default:
			s.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: off}, nil
		}
	case string:
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: off}, nil
	case bool:
		s.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: off}, nil
	case j.Number:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: off}, nil
	case float64:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}, nil
	}
	s.valueDone()
	return eng.Token{Kind: eng.KindNull, Offset: off}, nil
}

func (s *source) pop() {
	s.stack = s.stack[:len(s.stack)-1]
	s.valueDone()
}

func (s *source) valueDone() {
	if n := len(s.stack); n > 0 {
		s.stack[n-1].n++
	}
}

// Location returns the number of input bytes consumed by tokens so far.
func (s *source) Location() int64 { return s.dec.InputOffset() }

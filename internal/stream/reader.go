package stream

import (
	eng "github.com/reoring/skemajson/internal/engine"
)

type replay struct {
	toks []eng.Token
	pos  int
}

// Reader layers one-token lookahead and replay over a live TokenSource.
// Replayed sequences form a stack: the top one is active until exhausted,
// after which reading resumes from the one below it, or from live input.
type Reader struct {
	live    eng.TokenSource
	peeked  bool
	peekTok eng.Token
	peekErr error
	stack   []replay
}

// NewReader wraps live. The source stays owned by the caller.
func NewReader(live eng.TokenSource) *Reader { return &Reader{live: live} }

// Push makes toks the active input until they are consumed.
func (r *Reader) Push(toks []eng.Token) {
	if len(toks) == 0 {
		return
	}
	r.stack = append(r.stack, replay{toks: toks})
}

func (r *Reader) top() *replay {
	for n := len(r.stack); n > 0; n = len(r.stack) {
		rp := &r.stack[n-1]
		if rp.pos < len(rp.toks) {
			return rp
		}
		r.stack = r.stack[:n-1]
	}
	return nil
}

// NextToken returns the next token from the active cursor.
func (r *Reader) NextToken() (eng.Token, error) {
	if rp := r.top(); rp != nil {
		t := rp.toks[rp.pos]
		rp.pos++
		return t, nil
	}
	if r.peeked {
		r.peeked = false
		return r.peekTok, r.peekErr
	}
	return r.live.NextToken()
}

// Peek returns the next token without consuming it.
func (r *Reader) Peek() (eng.Token, error) {
	if rp := r.top(); rp != nil {
		return rp.toks[rp.pos], nil
	}
	if !r.peeked {
		r.peekTok, r.peekErr = r.live.NextToken()
		r.peeked = true
	}
	return r.peekTok, r.peekErr
}

// Location returns the offset of the last token read, best effort.
func (r *Reader) Location() int64 {
	if rp := r.top(); rp != nil && rp.pos > 0 {
		return rp.toks[rp.pos-1].Offset
	}
	return r.live.Location()
}

// Reset drops all replay state and any pending lookahead and continues
// with live.
func (r *Reader) Reset(live eng.TokenSource) {
	r.live = live
	r.stack = r.stack[:0]
	r.peeked = false
	r.peekTok = eng.Token{}
	r.peekErr = nil
}

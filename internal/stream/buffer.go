package stream

import (
	"errors"

	eng "github.com/reoring/skemajson/internal/engine"
)

var errUnbalanced = errors.New("stream: unbalanced container tokens")

// Buffer holds the subtrees of fields that arrived ahead of their schema
// position within one object. Each entry is a complete value and is taken
// at most once.
type Buffer struct {
	saved  map[string][]eng.Token
	tokens int
}

// Has reports whether a subtree is saved under name.
func (b *Buffer) Has(name string) bool {
	if b == nil {
		return false
	}
	_, ok := b.saved[name]
	return ok
}

// Put stores the subtree for name. Storing a name twice panics.
func (b *Buffer) Put(name string, toks []eng.Token) {
	if b.saved == nil {
		b.saved = make(map[string][]eng.Token)
	}
	if _, ok := b.saved[name]; ok {
		panic("stream: field " + name + " buffered twice")
	}
	b.saved[name] = toks
	b.tokens += len(toks)
}

// Take removes and returns the subtree saved under name. Taking a name that
// is not buffered panics.
func (b *Buffer) Take(name string) []eng.Token {
	toks, ok := b.saved[name]
	if !ok {
		panic("stream: field " + name + " is not buffered")
	}
	delete(b.saved, name)
	b.tokens -= len(toks)
	return toks
}

// Len returns the number of buffered fields.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.saved)
}

// Tokens returns the number of tokens currently held.
func (b *Buffer) Tokens() int {
	if b == nil {
		return 0
	}
	return b.tokens
}

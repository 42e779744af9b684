package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	// MaxBytes limits the size of each top-level value, measured from the
	// offset of its first token to the inner source's Location. Sources
	// without offsets are measured by the text of their tokens instead.
	MaxBytes int64
	// IssueSink receives non-fatal issues (duplicate keys under DupWarn).
	// Fatal issues are only returned, as IssueError.
	IssueSink func(SimpleIssue)
}

// Enabled reports whether wrapping a source with these options has any effect.
func (o EnforceOptions) Enabled() bool {
	return o.OnDuplicate != DupIgnore || o.MaxDepth > 0 || o.MaxBytes > 0
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type enforceFrame struct {
	kind      containerKind
	keys      map[string]struct{}
	path      string
	nextIndex int
	// pendingKey is set between a key and its value.
	pendingKey string
	hasKey     bool
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if !opt.Enabled() {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []enforceFrame

	docStart int64 // offset of the current top-level value, -1 if unknown
	docText  int64 // token text bytes of the current top-level value
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	if e.opt.MaxBytes > 0 {
		if len(e.stack) == 0 {
			e.docStart, e.docText = tok.Offset, 0
		}
		e.docText += int64(len(tok.Text()))
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		path := e.valuePath()
		fr := enforceFrame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			fr.kind = kindObject
			if e.opt.OnDuplicate != DupIgnore {
				fr.keys = make(map[string]struct{})
			}
		}
		e.stack = append(e.stack, fr)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fail(SimpleIssue{Code: "parse_error", Path: normalizeIssuePath(path), Message: "max depth exceeded", Offset: tok.Offset})
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.keys != nil {
				if _, dup := top.keys[tok.String]; dup {
					si := SimpleIssue{
						Code:    "duplicate_key",
						Path:    joinJSONPointer(top.path, tok.String),
						Message: "key '" + tok.String + "' duplicated",
						Offset:  tok.Offset,
					}
					if e.opt.OnDuplicate == DupError {
						return Token{}, e.fail(si)
					}
					if e.opt.IssueSink != nil {
						e.opt.IssueSink(si)
					}
				}
				top.keys[tok.String] = struct{}{}
			}
			top.pendingKey = tok.String
			top.hasKey = true
		}
	default:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 && e.docSize() > e.opt.MaxBytes {
		return Token{}, e.fail(SimpleIssue{Code: "truncated", Path: normalizeIssuePath(e.valuePath()), Message: "max bytes exceeded", Offset: tok.Offset})
	}
	return tok, nil
}

// docSize returns the bytes consumed by the current top-level value.
func (e *enforcingTokenSource) docSize() int64 {
	if off := e.inner.Location(); off >= 0 && e.docStart >= 0 {
		return off - e.docStart
	}
	return e.docText
}

func (e *enforcingTokenSource) fail(si SimpleIssue) error { return IssueError{si} }

// valuePath returns the JSON Pointer of the value about to start.
func (e *enforcingTokenSource) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.kind == kindArray {
		return joinJSONPointer(top.path, strconv.Itoa(top.nextIndex))
	}
	if top.hasKey {
		return joinJSONPointer(top.path, top.pendingKey)
	}
	return top.path
}

// valueDone advances the parent container after a complete value.
func (e *enforcingTokenSource) valueDone() {
	n := len(e.stack)
	if n == 0 {
		return
	}
	top := &e.stack[n-1]
	if top.kind == kindArray {
		top.nextIndex++
		return
	}
	top.pendingKey = ""
	top.hasKey = false
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends one reference token to a JSON Pointer.
func JoinPointer(base, token string) string { return joinJSONPointer(base, token) }

func joinJSONPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}

package engine

import (
	"errors"
	"io"
	"testing"
)

func obj(keys ...string) []Token {
	out := []Token{{Kind: KindBeginObject}}
	for i, k := range keys {
		out = append(out, Token{Kind: KindKey, String: k, Offset: int64(i)}, Token{Kind: KindNumber, Number: "1", Offset: int64(i)})
	}
	return append(out, Token{Kind: KindEndObject})
}

func drainAll(src TokenSource) ([]Token, error) {
	var out []Token
	for {
		t, err := src.NextToken()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
}

func TestWrapWithEnforcementDisabledIsIdentity(t *testing.T) {
	inner := NewSliceSource(obj("a"))
	if got := WrapWithEnforcement(inner, EnforceOptions{}); got != TokenSource(inner) {
		t.Fatalf("disabled enforcement should return the inner source")
	}
}

func TestDuplicateKeys(t *testing.T) {
	var warned []SimpleIssue
	src := WrapWithEnforcement(NewSliceSource(obj("a", "b/c", "b/c")), EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { warned = append(warned, si) },
	})
	if _, err := drainAll(src); err != nil {
		t.Fatalf("warn mode should not fail: %v", err)
	}
	if len(warned) != 1 || warned[0].Code != "duplicate_key" || warned[0].Path != "/b~1c" {
		t.Fatalf("warnings = %+v", warned)
	}

	src = WrapWithEnforcement(NewSliceSource(obj("a", "a")), EnforceOptions{OnDuplicate: DupError})
	_, err := drainAll(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "duplicate_key" || ie.Path != "/a" {
		t.Fatalf("want duplicate_key at /a, got %v", err)
	}
}

func TestDuplicateKeysAreScopedPerObject(t *testing.T) {
	// {"x":{"a":1},"y":{"a":1}}
	toks := []Token{
		{Kind: KindBeginObject},
		{Kind: KindKey, String: "x"}, {Kind: KindBeginObject}, {Kind: KindKey, String: "a"}, {Kind: KindNumber, Number: "1"}, {Kind: KindEndObject},
		{Kind: KindKey, String: "y"}, {Kind: KindBeginObject}, {Kind: KindKey, String: "a"}, {Kind: KindNumber, Number: "1"}, {Kind: KindEndObject},
		{Kind: KindEndObject},
	}
	src := WrapWithEnforcement(NewSliceSource(toks), EnforceOptions{OnDuplicate: DupError})
	if _, err := drainAll(src); err != nil {
		t.Fatalf("keys in sibling objects are not duplicates: %v", err)
	}
}

func TestMaxDepthPath(t *testing.T) {
	// {"a":[{"b":1}]}
	toks := []Token{
		{Kind: KindBeginObject}, {Kind: KindKey, String: "a"}, {Kind: KindBeginArray},
		{Kind: KindBeginObject}, {Kind: KindKey, String: "b"}, {Kind: KindNumber, Number: "1"}, {Kind: KindEndObject},
		{Kind: KindEndArray}, {Kind: KindEndObject},
	}
	src := WrapWithEnforcement(NewSliceSource(toks), EnforceOptions{MaxDepth: 2})
	_, err := drainAll(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "parse_error" || ie.Path != "/a/0" {
		t.Fatalf("want parse_error at /a/0, got %#v", err)
	}
}

func TestMaxBytes(t *testing.T) {
	toks := obj("a", "b", "c")
	for i := range toks {
		toks[i].Offset = int64(i * 10)
	}
	src := WrapWithEnforcement(NewSliceSource(toks), EnforceOptions{MaxBytes: 25})
	got, err := drainAll(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("want truncated, got %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("tokens before truncation = %d, want 3", len(got))
	}
}

func TestJoinPointerEscapes(t *testing.T) {
	if got := JoinPointer("/a", "x~y/z"); got != "/a/x~0y~1z" {
		t.Fatalf("JoinPointer = %q", got)
	}
}

func TestTokenText(t *testing.T) {
	cases := map[string]Token{
		"{":      {Kind: KindBeginObject},
		`"k"`:    {Kind: KindKey, String: "k"},
		"-1.5e3": {Kind: KindNumber, Number: "-1.5e3"},
		"true":   {Kind: KindBool, Bool: true},
		"null":   NullToken(),
		`"a\"b"`: {Kind: KindString, String: `a"b`},
	}
	for want, tok := range cases {
		if got := tok.Text(); got != want {
			t.Fatalf("%s: Text() = %q, want %q", tok.Kind, got, want)
		}
	}
	if !KindNull.IsScalar() || KindKey.IsScalar() || KindBeginArray.IsScalar() {
		t.Fatalf("IsScalar misclassifies kinds")
	}
	if NullToken().Offset != -1 {
		t.Fatalf("NullToken offset should be unknown")
	}
}

func TestSliceSourceLocation(t *testing.T) {
	src := NewSliceSource([]Token{{Kind: KindNull, Offset: 4}})
	if src.Location() != -1 {
		t.Fatalf("location before reading should be -1")
	}
	_, _ = src.NextToken()
	if src.Location() != 4 {
		t.Fatalf("location = %d", src.Location())
	}
	if _, err := src.NextToken(); err != io.EOF {
		t.Fatalf("want EOF, got %v", err)
	}
}

func TestMaxBytesResetsPerDocument(t *testing.T) {
	// {"a":1} {"a":1} with offsets 0..3 and 1000..1003
	toks := append(obj("a"), obj("a")...)
	for i := range toks {
		base := int64(0)
		if i >= 4 {
			base = 1000
		}
		toks[i].Offset = base + int64(i%4)
	}
	src := WrapWithEnforcement(NewSliceSource(toks), EnforceOptions{MaxBytes: 10})
	got, err := drainAll(src)
	if err != nil || len(got) != 8 {
		t.Fatalf("got %d tokens, err %v", len(got), err)
	}
}

func TestMaxBytesWithoutOffsetsUsesTokenText(t *testing.T) {
	toks := []Token{
		{Kind: KindBeginArray, Offset: -1},
		{Kind: KindString, String: "0123456789", Offset: -1},
		{Kind: KindString, String: "0123456789", Offset: -1},
		{Kind: KindEndArray, Offset: -1},
	}
	src := WrapWithEnforcement(NewSliceSource(toks), EnforceOptions{MaxBytes: 20})
	got, err := drainAll(src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("want truncated, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("tokens before truncation = %d, want 2", len(got))
	}
}

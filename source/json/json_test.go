package json

import (
	"io"
	"strings"
	"testing"

	eng "github.com/reoring/skemajson/internal/engine"
)

func collect(t *testing.T, src eng.TokenSource) []eng.Token {
	t.Helper()
	var out []eng.Token
	for {
		tok, err := src.NextToken()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("NextToken: %v", err)
		}
		out = append(out, tok)
	}
}

func TestTokensAndKeys(t *testing.T) {
	toks := collect(t, NewBytes([]byte(`{"k":"v","n":[1.5,-2,true,null],"o":{"k":"x"}} "tail" 7`)))
	want := []struct {
		kind eng.Kind
		text string
	}{
		{eng.KindBeginObject, "{"},
		{eng.KindKey, `"k"`}, {eng.KindString, `"v"`},
		{eng.KindKey, `"n"`}, {eng.KindBeginArray, "["},
		{eng.KindNumber, "1.5"}, {eng.KindNumber, "-2"}, {eng.KindBool, "true"}, {eng.KindNull, "null"},
		{eng.KindEndArray, "]"},
		{eng.KindKey, `"o"`}, {eng.KindBeginObject, "{"}, {eng.KindKey, `"k"`}, {eng.KindString, `"x"`}, {eng.KindEndObject, "}"},
		{eng.KindEndObject, "}"},
		{eng.KindString, `"tail"`},
		{eng.KindNumber, "7"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text() != w.text {
			t.Fatalf("token %d = %s %s, want %s %s", i, toks[i].Kind, toks[i].Text(), w.kind, w.text)
		}
	}
}

func TestReaderMatchesBytes(t *testing.T) {
	in := `[{"a":{"b":[]}}]{}`
	a := collect(t, NewBytes([]byte(in)))
	b := collect(t, NewReader(strings.NewReader(in)))
	if len(a) != len(b) || len(a) != 12 {
		t.Fatalf("reader and bytes disagree: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].String != b[i].String {
			t.Fatalf("token %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSyntaxError(t *testing.T) {
	src := NewBytes([]byte(`{"a":tru}`))
	for i := 0; i < 10; i++ {
		if _, err := src.NextToken(); err != nil {
			if err == io.EOF {
				t.Fatalf("syntax error reported as EOF")
			}
			return
		}
	}
	t.Fatalf("no error for invalid literal")
}

package skemajson_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/skemajson"
	"github.com/reoring/skemajson/generic"
	"github.com/reoring/skemajson/schema"
)

type countingSource struct {
	inner skemajson.Source
	reads int
}

func (c *countingSource) NextToken() (skemajson.Token, error) {
	t, err := c.inner.NextToken()
	if err == nil {
		c.reads++
	}
	return t, err
}

func (c *countingSource) Location() int64 { return c.inner.Location() }

func drain(t *testing.T, src skemajson.Source) []skemajson.Token {
	t.Helper()
	var out []skemajson.Token
	for {
		tok, err := src.NextToken()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, tok)
	}
}

func TestEveryTokenReadOnce(t *testing.T) {
	s := schema.Record("R",
		schema.NewField("a", schema.Long()),
		schema.NewField("b", schema.Array(schema.Record("B", schema.NewField("x", schema.Long()), nullableLong("y")))),
		schema.NewField("c", schema.Long(), schema.WithDefault(1)),
	)
	in := `{"zz":{"q":[1,2]},"b":[{"y":3,"x":1},{"x":2}],"a":4,"a":5}`
	total := len(drain(t, skemajson.JSONString(in)))

	src := &countingSource{inner: skemajson.JSONString(in)}
	d := skemajson.NewDecoder(s, src)
	_, err := generic.ReadDocument(d)
	require.NoError(t, err)
	require.Equal(t, total, src.reads)
}

func TestDriversAgree(t *testing.T) {
	in := `{"a":[1,2.5,-3],"b":{"c":null,"d":true,"e":"x\"y"}} [] "s" 12`
	var want []skemajson.Token
	for i, drv := range skemajson.JSONDrivers() {
		toks := drain(t, drv.NewReader(strings.NewReader(in)))
		for j := range toks {
			toks[j].Offset = 0
		}
		if i == 0 {
			want = toks
			continue
		}
		require.Equal(t, want, toks, drv.Name())
	}
	require.Equal(t, skemajson.TokenBeginObject, want[0].Kind)
	require.Equal(t, skemajson.TokenKey, want[1].Kind)
	require.Equal(t, "-3", want[5].Number)
}

func TestJSONDriverSelection(t *testing.T) {
	defer skemajson.UseDefaultJSONDriver()
	require.Equal(t, "go-json", skemajson.CurrentJSONDriver().Name())

	drv, err := skemajson.JSONDriverByName("fastjson")
	require.NoError(t, err)
	skemajson.SetJSONDriver(drv)
	skemajson.SetJSONDriver(nil)
	require.Equal(t, "fastjson", skemajson.CurrentJSONDriver().Name())

	s := schema.Record("R", schema.NewField("l", schema.Long(), schema.WithDefault(3)))
	v, err := generic.DecodeString(s, `{}`)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"l": int64(3)}, generic.Native(v))

	_, err = skemajson.JSONDriverByName("sonic")
	require.Error(t, err)
}

func TestDecodeFromTokenSlice(t *testing.T) {
	s := schema.Record("R", nullableLong("a"), schema.NewField("b", schema.String()))
	src := skemajson.TokenSlice([]skemajson.Token{
		{Kind: skemajson.TokenBeginObject},
		{Kind: skemajson.TokenKey, String: "b"},
		{Kind: skemajson.TokenString, String: "v"},
		{Kind: skemajson.TokenEndObject},
	})
	v, err := generic.ReadDocument(skemajson.NewDecoder(s, src))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": nil, "b": "v"}, generic.Native(v))
}

func TestIssuesError(t *testing.T) {
	iss := skemajson.Issues{
		{Code: skemajson.CodeRequired, Path: "/a"},
		{Code: skemajson.CodeInvalidType, Path: "/b", Hint: "expected long"},
		{Code: skemajson.CodeParseError, Path: "/c"},
		{Code: skemajson.CodeParseError, Path: "/d"},
	}
	require.Equal(t, "required at /a; invalid_type at /b (expected long); parse_error at /c; ... (total 4)", iss.Error())
	_, ok := skemajson.AsIssues(nil)
	require.False(t, ok)
}

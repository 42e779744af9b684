package skemajson

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	eng "github.com/reoring/skemajson/internal/engine"
	fjsrc "github.com/reoring/skemajson/source/fastjson"
	gjsrc "github.com/reoring/skemajson/source/gojson"
	jsonsrc "github.com/reoring/skemajson/source/json"
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token = eng.Token

// TokenKind enumerates JSON token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// NullToken returns a stateless null token.
func NullToken() Token { return eng.NullToken() }

// Source is a pull tokenizer over one or more concatenated JSON values.
// NextToken returns io.EOF once the input is exhausted.
type Source = eng.TokenSource

// TokenSlice serves the given tokens and then io.EOF.
func TokenSlice(toks []Token) Source { return eng.NewSliceSource(toks) }

// JSONDriver converts JSON input into a Source via a pluggable SPI. The default
// implementation is based on goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default goccy/go-json driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = goJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the driver used by JSONReader and JSONBytes.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// JSONDriverByName returns one of the built-in drivers: "go-json",
// "encoding/json" or "fastjson".
func JSONDriverByName(name string) (JSONDriver, error) {
	for _, d := range JSONDrivers() {
		if d.Name() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("skemajson: unknown JSON driver %q", name)
}

// JSONDrivers lists the built-in drivers, default first.
func JSONDrivers() []JSONDriver {
	return []JSONDriver{goJSONDriver{}, stdJSONDriver{}, fastJSONDriver{}}
}

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source { return gjsrc.NewReader(r) }
func (goJSONDriver) NewBytes(b []byte) Source     { return gjsrc.NewBytes(b) }
func (goJSONDriver) Name() string                 { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source { return jsonsrc.NewReader(r) }
func (stdJSONDriver) NewBytes(b []byte) Source     { return jsonsrc.NewBytes(b) }
func (stdJSONDriver) Name() string                 { return "encoding/json" }

// fastJSONDriver parses each value into a tree before emitting its tokens.
type fastJSONDriver struct{}

func (fastJSONDriver) NewReader(r io.Reader) Source { return fjsrc.NewReader(r) }
func (fastJSONDriver) NewBytes(b []byte) Source     { return fjsrc.NewBytes(b) }
func (fastJSONDriver) Name() string                 { return "fastjson" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// JSONString wraps a string as a JSON Source.
func JSONString(s string) Source { return CurrentJSONDriver().NewReader(strings.NewReader(s)) }

// EnforceSource wraps a Source with duplicate key, depth and size enforcement.
// Non-fatal issues (duplicate keys under Warn) are passed to sink when set.
// Violations are returned from NextToken as Issues wrapping ErrEnforcement.
func EnforceSource(s Source, opt DecodeOpt, sink func(Issue)) Source {
	var forward func(eng.SimpleIssue)
	if sink != nil {
		forward = func(si eng.SimpleIssue) { sink(issueFromEngine(si)) }
	}
	eo := eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   forward,
	}
	if !eo.Enabled() {
		return s
	}
	return issueSource{eng.WrapWithEnforcement(s, eo)}
}

type issueSource struct{ Source }

func (s issueSource) NextToken() (Token, error) {
	tok, err := s.Source.NextToken()
	var ie eng.IssueError
	if err != nil && errors.As(err, &ie) {
		return tok, Issues{issueFromEngine(ie.SimpleIssue)}
	}
	return tok, err
}

func issueFromEngine(si eng.SimpleIssue) Issue {
	it := newIssue(si.Code, si.Path, si.Offset, ErrEnforcement, nil, "")
	if si.Message != "" {
		it.Hint = si.Message
	}
	return it
}

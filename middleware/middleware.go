// Package middleware decodes HTTP request bodies against a schema.
package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/skemajson"
	"github.com/reoring/skemajson/generic"
	"github.com/reoring/skemajson/i18n"
	"github.com/reoring/skemajson/schema"
)

// Decoded is the result of decoding one request body.
type Decoded struct {
	Value    any
	Presence skemajson.PresenceMap
	Warnings skemajson.Issues
}

type ctxKeyDecoded struct{}

// ContextWithDecoded attaches a Decoded to the context.
func ContextWithDecoded(ctx context.Context, dm Decoded) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded{}, dm)
}

// DecodedFromContext retrieves a Decoded from context.
func DecodedFromContext(ctx context.Context) (Decoded, bool) {
	v, ok := ctx.Value(ctxKeyDecoded{}).(Decoded)
	return v, ok
}

// DefaultDecodeOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Presence is collected
func DefaultDecodeOpt() skemajson.DecodeOpt {
	return skemajson.DecodeOpt{
		Strictness: skemajson.Strictness{OnDuplicateKey: skemajson.Error},
		Presence:   skemajson.PresenceOpt{Collect: true},
	}
}

// withDefaults replaces a zero-valued opt with DefaultDecodeOpt.
func withDefaults(opt skemajson.DecodeOpt) skemajson.DecodeOpt {
	if opt.Strictness.OnDuplicateKey == skemajson.Ignore && !opt.Presence.Collect {
		d := DefaultDecodeOpt()
		d.MaxDepth, d.MaxBytes, d.Ambiguity, d.Logger = opt.MaxDepth, opt.MaxBytes, opt.Ambiguity, opt.Logger
		return d
	}
	return opt
}

func bodyIssue(hint string) skemajson.Issues {
	return skemajson.Issues{{
		Path:    "/",
		Code:    skemajson.CodeParseError,
		Message: i18n.T(skemajson.CodeParseError, nil),
		Hint:    hint,
		Cause:   skemajson.ErrMalformedInput,
		Offset:  -1,
	}}
}

// Decode reads exactly one document of schema s from body. A zero opt means
// DefaultDecodeOpt.
func Decode(body io.Reader, s *schema.Schema, opt skemajson.DecodeOpt) (Decoded, error) {
	d := skemajson.NewDecoder(s, skemajson.JSONReader(body), withDefaults(opt))
	v, err := generic.ReadDocument(d)
	if errors.Is(err, io.EOF) {
		return Decoded{}, bodyIssue("empty body")
	}
	if err != nil {
		return Decoded{}, err
	}
	dm := Decoded{Value: v, Presence: d.Presence(), Warnings: d.Warnings()}
	if d.More() {
		return Decoded{}, bodyIssue("trailing data after document")
	}
	if err := d.Err(); err != nil {
		return Decoded{}, err
	}
	return dm, nil
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []skemajson.Issue) map[string]any {
	type wireIssue struct {
		Path    string `json:"path"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Hint    string `json:"hint,omitempty"`
		Offset  int64  `json:"offset"`
	}
	out := make([]wireIssue, len(issues))
	for i, it := range issues {
		out[i] = wireIssue{Path: it.Path, Code: it.Code, Message: it.Message, Hint: it.Hint, Offset: it.Offset}
	}
	return map[string]any{"issues": out}
}

// FailurePayload shapes any decode error for a JSON response.
func FailurePayload(err error) map[string]any {
	if iss, ok := skemajson.AsIssues(err); ok {
		return ErrorPayload(iss)
	}
	return map[string]any{"error": err.Error()}
}

// DecodeJSON decodes the request body with schema s, stores the Decoded in
// the request context and calls next. Failures answer 400 with an issues payload.
func DecodeJSON(s *schema.Schema, opt skemajson.DecodeOpt) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dm, err := Decode(r.Body, s, opt)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(FailurePayload(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), dm)))
		})
	}
}

package skemajson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/skemajson/i18n"
)

// Issue codes
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeDuplicateKey   = "duplicate_key"
	CodeUnionAmbiguous = "union_ambiguous"
	CodeParseError     = "parse_error"
	CodeTruncated      = "truncated"
	CodeCallOrder      = "call_order"
)

var (
	// ErrMalformedInput reports input that is not well-formed JSON.
	ErrMalformedInput = errors.New("skemajson: malformed input")
	// ErrSchemaMismatch reports a JSON value whose shape does not fit the schema.
	ErrSchemaMismatch = errors.New("skemajson: value does not match schema")
	// ErrMissingRequiredField reports an absent field with no default that is not nullable.
	ErrMissingRequiredField = errors.New("skemajson: missing required field")
	// ErrAmbiguousUnion is returned under AmbiguityError when more than one
	// union branch fits an untagged value.
	ErrAmbiguousUnion = errors.New("skemajson: ambiguous union value")
	// ErrCallOrder reports a pull call that does not match the schema position.
	ErrCallOrder = errors.New("skemajson: read call does not match schema position")
	// ErrEnforcement reports a duplicate key, depth or size limit violation.
	ErrEnforcement = errors.New("skemajson: input limit violated")
)

// Issue represents a single decode problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected type, field name, etc.
	Cause   error  // Sentinel, possibly joined with the underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
}

// Issues is a collection of decode errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Hint != "" {
			fmt.Fprintf(b, " (%s)", it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is matches the sentinels.
func (iss Issues) Unwrap() []error {
	out := make([]error, 0, len(iss))
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func newIssue(code, path string, offset int64, sentinel, cause error, hint string) Issue {
	if path == "" {
		path = "/"
	}
	c := sentinel
	if cause != nil {
		c = fmt.Errorf("%w: %w", sentinel, cause)
	}
	return Issue{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint, Cause: c, Offset: offset}
}

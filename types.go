package skemajson

import (
	"log/slog"

	eng "github.com/reoring/skemajson/internal/engine"
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// AmbiguityStrategy selects what happens when an untagged value fits more
// than one union branch.
type AmbiguityStrategy int

const (
	// AmbiguityFirstMatch picks the first declared branch and logs a warning.
	AmbiguityFirstMatch AmbiguityStrategy = iota
	// AmbiguityError fails the document with ErrAmbiguousUnion.
	AmbiguityError
)

// PresenceOpt configures presence collection.
type PresenceOpt struct {
	Collect bool
	Include []string
	Exclude []string
}

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	Ambiguity  AmbiguityStrategy
	Presence   PresenceOpt
	// Logger receives debug traces and warnings. Nil discards them.
	Logger *slog.Logger
}

func mergeOpts(opts []DecodeOpt) DecodeOpt {
	var o DecodeOpt
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/reoring/skemajson"
)

func tokens(cfg *TokensConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Tokens.Parse(cc, args)
	if err != nil {
		return err
	}
	pal := cfg.palette(cc.Out)
	return eachInput(cc.In, args, func(name string, r io.Reader) error {
		if err := dumpTokens(cfg, cc.Out, r, pal); err != nil {
			return fmt.Errorf("error processing %s: %w", name, err)
		}
		return nil
	})
}

func dumpTokens(cfg *TokensConfig, w io.Writer, r io.Reader, pal palette) error {
	src := skemajson.EnforceSource(cfg.driver().NewReader(r), cfg.decodeOpt(), func(it skemajson.Issue) {
		cfg.Log.Warn(it.Message, "code", it.Code, "path", it.Path, "offset", it.Offset)
	})
	depth := 0
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if tok.Kind == skemajson.TokenEndObject || tok.Kind == skemajson.TokenEndArray {
			depth--
		}
		fmt.Fprintln(w, formatToken(tok, depth, cfg.Offsets, cfg.Kinds, pal))
		if tok.Kind == skemajson.TokenBeginObject || tok.Kind == skemajson.TokenBeginArray {
			depth++
		}
	}
}

func formatToken(tok skemajson.Token, depth int, offsets, kinds bool, pal palette) string {
	var b strings.Builder
	if offsets {
		fmt.Fprintf(&b, "%8d ", tok.Offset)
	}
	b.WriteString(strings.Repeat("  ", max(depth, 0)))
	if kinds {
		fmt.Fprintf(&b, "%s ", tok.Kind)
	}
	b.WriteString(pal.sprint(tok.Kind, tok.Text()))
	return b.String()
}

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/scott-cotton/cli"

	"github.com/reoring/skemajson"
)

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	pal := cfg.palette(cc.Out)
	failed, total := 0, 0
	err = eachInput(cc.In, args, func(name string, r io.Reader) error {
		total++
		res := checkReader(cfg.driver().NewReader(r), cfg.decodeOpt())
		for _, it := range res.warnings {
			fmt.Fprintf(cc.Out, "%s: warning: %s\n", name, describe(it))
		}
		if res.err != nil {
			failed++
			fmt.Fprintf(cc.Out, "%s: %s\n", name, pal.errorf("%s (after %d documents)", describeErr(res.err), res.docs))
			return nil
		}
		if !cfg.Quiet {
			fmt.Fprintf(cc.Out, "%s: %d documents ok\n", name, res.docs)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, total)
	}
	return nil
}

type checkResult struct {
	docs     int
	warnings []skemajson.Issue
	err      error
}

// checkReader reads every token of src under opt and counts top-level values.
func checkReader(src skemajson.Source, opt skemajson.DecodeOpt) checkResult {
	var res checkResult
	src = skemajson.EnforceSource(src, opt, func(it skemajson.Issue) {
		res.warnings = append(res.warnings, it)
	})
	depth := 0
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			if depth != 0 {
				res.err = io.ErrUnexpectedEOF
			}
			return res
		}
		if err != nil {
			res.err = err
			return res
		}
		switch tok.Kind {
		case skemajson.TokenBeginObject, skemajson.TokenBeginArray:
			depth++
			continue
		case skemajson.TokenEndObject, skemajson.TokenEndArray:
			depth--
		case skemajson.TokenKey:
			continue
		}
		if depth == 0 {
			res.docs++
		}
	}
}

func describe(it skemajson.Issue) string {
	s := fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
	if it.Hint != "" {
		s += " (" + it.Hint + ")"
	}
	return s
}

func describeErr(err error) string {
	if iss, ok := skemajson.AsIssues(err); ok && len(iss) > 0 {
		return describe(iss[0])
	}
	return err.Error()
}

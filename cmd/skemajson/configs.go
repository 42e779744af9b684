package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/reoring/skemajson"
	"github.com/reoring/skemajson/i18n"
	"github.com/reoring/skemajson/internal/config"
)

type MainConfig struct {
	ConfigFile string `cli:"name=config desc='YAML settings file'"`
	Driver     string `cli:"name=driver desc='JSON driver: go-json, encoding/json or fastjson'"`
	Color      bool   `cli:"name=color desc='colorize output'"`
	Verbose    bool   `cli:"name=v desc='log at debug level'"`

	Settings config.Config
	Log      *slog.Logger

	Main *cli.Command
}

// load resolves settings: defaults, then the config file, then flags.
func (cfg *MainConfig) load() error {
	s := config.Default()
	if cfg.ConfigFile != "" {
		var err error
		if s, err = config.Load(cfg.ConfigFile); err != nil {
			return err
		}
	}
	if cfg.Driver != "" {
		s.Driver = cfg.Driver
	}
	if cfg.Verbose {
		s.LogLevel = "debug"
	}
	if err := s.Validate(); err != nil {
		return err
	}
	i18n.SetLanguage(s.Language)
	cfg.Settings = s
	cfg.Log = newLogger(os.Stderr, s.Level())
	return nil
}

func (cfg *MainConfig) driver() skemajson.JSONDriver {
	d, err := cfg.Settings.JSONDriver()
	if err != nil {
		return skemajson.CurrentJSONDriver()
	}
	return d
}

func (cfg *MainConfig) decodeOpt() skemajson.DecodeOpt {
	return cfg.Settings.DecodeOpt(cfg.Log)
}

// useColor reports whether output to w is colorized. An explicit -color flag
// wins over the config file, which wins over terminal detection.
func (cfg *MainConfig) useColor(w io.Writer) bool {
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		if opt.Value != nil {
			return cfg.Color
		}
		break
	}
	switch cfg.Settings.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type palette map[skemajson.TokenKind]func(string, ...any) string

func (cfg *MainConfig) palette(w io.Writer) palette {
	if !cfg.useColor(w) {
		return nil
	}
	color.NoColor = false
	return palette{
		skemajson.TokenKey:    color.CyanString,
		skemajson.TokenString: color.RGB(196, 96, 16).SprintfFunc(),
		skemajson.TokenNumber: color.RGB(168, 0, 196).SprintfFunc(),
		skemajson.TokenBool:   color.BlueString,
		skemajson.TokenNull:   color.RGB(128, 168, 196).SprintfFunc(),
	}
}

func (p palette) sprint(k skemajson.TokenKind, s string) string {
	if f, ok := p[k]; ok {
		return f("%s", s)
	}
	return s
}

func (p palette) errorf(format string, args ...any) string {
	if p == nil {
		return fmt.Sprintf(format, args...)
	}
	return color.RedString(format, args...)
}

type TokensConfig struct {
	*MainConfig

	Offsets bool `cli:"name=offsets desc='prefix each token with its byte offset'"`
	Kinds   bool `cli:"name=kinds desc='print token kinds'"`

	Tokens *cli.Command
}

type CheckConfig struct {
	*MainConfig

	Quiet bool `cli:"name=q desc='only report failures'"`

	Check *cli.Command
}

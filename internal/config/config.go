// Package config loads CLI settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/skemajson"
)

// Config holds decoder and output settings. Zero values mean defaults.
type Config struct {
	Driver     string `yaml:"driver"`     // go-json, encoding/json or fastjson
	MaxDepth   int    `yaml:"maxDepth"`   // 0 disables the check
	MaxBytes   int64  `yaml:"maxBytes"`   // 0 disables the check
	Duplicates string `yaml:"duplicates"` // ignore, warn or error
	Ambiguity  string `yaml:"ambiguity"`  // first or error
	Color      string `yaml:"color"`      // auto, always or never
	LogLevel   string `yaml:"logLevel"`   // debug, info, warn or error
	Language   string `yaml:"language"`   // en or ja
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Driver:     "go-json",
		Duplicates: "ignore",
		Ambiguity:  "first",
		Color:      "auto",
		LogLevel:   "warn",
		Language:   "en",
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return c, c.Validate()
}

func oneOf(field, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s: %q is not one of %s", field, v, strings.Join(allowed, ", "))
}

// Validate checks enumerated settings and limits.
func (c Config) Validate() error {
	var errs []error
	if _, err := skemajson.JSONDriverByName(c.Driver); err != nil {
		errs = append(errs, fmt.Errorf("driver: %w", err))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, errors.New("maxDepth: must not be negative"))
	}
	if c.MaxBytes < 0 {
		errs = append(errs, errors.New("maxBytes: must not be negative"))
	}
	for _, err := range []error{
		oneOf("duplicates", c.Duplicates, "ignore", "warn", "error"),
		oneOf("ambiguity", c.Ambiguity, "first", "error"),
		oneOf("color", c.Color, "auto", "always", "never"),
		oneOf("logLevel", c.LogLevel, "debug", "info", "warn", "error"),
		oneOf("language", c.Language, "en", "ja"),
	} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// JSONDriver returns the configured driver.
func (c Config) JSONDriver() (skemajson.JSONDriver, error) {
	return skemajson.JSONDriverByName(c.Driver)
}

// Level maps LogLevel to a slog level.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// DecodeOpt projects the settings onto decoder options.
func (c Config) DecodeOpt(logger *slog.Logger) skemajson.DecodeOpt {
	o := skemajson.DecodeOpt{MaxDepth: c.MaxDepth, MaxBytes: c.MaxBytes, Logger: logger}
	switch c.Duplicates {
	case "warn":
		o.Strictness.OnDuplicateKey = skemajson.Warn
	case "error":
		o.Strictness.OnDuplicateKey = skemajson.Error
	}
	if c.Ambiguity == "error" {
		o.Ambiguity = skemajson.AmbiguityError
	}
	return o
}

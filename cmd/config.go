package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"unicode/utf8"

	"github.com/rodydavis/redirectgen/internal/redirect"
	"github.com/rodydavis/redirectgen/internal/source"
)

// Config defines the top-level configuration structure.
type Config struct {
	Input       string   `mapstructure:"input"`
	Old         string   `mapstructure:"old"`
	New         string   `mapstructure:"new"`
	Delimiter   string   `mapstructure:"delimiter"`
	QuoteChar   string   `mapstructure:"quote_char"`
	Depth       int      `mapstructure:"depth"`
	Server      string   `mapstructure:"server"`
	Redirect    string   `mapstructure:"redirect"`
	Indent      int      `mapstructure:"indent"`
	Header      string   `mapstructure:"header"`
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	Output      string   `mapstructure:"output"`
	Verbose     bool     `mapstructure:"verbose"`
	Base        string   `mapstructure:"base"`
	Parallelism int      `mapstructure:"parallelism"`
}

// resolved holds the validated values the pipeline runs on.
type resolved struct {
	source source.Options
	render redirect.Config
}

func (c Config) resolve(log *slog.Logger) (resolved, error) {
	if c.Input == "" {
		return resolved{}, errors.New("an input file is required (--input)")
	}
	if c.Old == "" || c.New == "" {
		return resolved{}, errors.New("both --old and --new columns are required")
	}
	server, err := redirect.ParseDialect(c.Server)
	if err != nil {
		return resolved{}, err
	}
	token, err := redirect.NormalizeToken(server, c.Redirect)
	if err != nil {
		return resolved{}, err
	}
	rc := redirect.Config{Server: server, Token: token, Depth: c.Depth, Indent: c.Indent}
	if err := rc.Validate(); err != nil {
		return resolved{}, err
	}
	delim, err := singleRune("delimiter", c.Delimiter)
	if err != nil {
		return resolved{}, err
	}
	quote, err := singleRune("quote character", c.QuoteChar)
	if err != nil {
		return resolved{}, err
	}
	header, err := source.ParseHeaderMode(c.Header)
	if err != nil {
		return resolved{}, err
	}
	filter, err := source.NewFilter(c.Include, c.Exclude)
	if err != nil {
		return resolved{}, err
	}
	return resolved{
		source: source.Options{
			Delimiter: delim,
			QuoteChar: quote,
			Old:       c.Old,
			New:       c.New,
			Depth:     c.Depth,
			Header:    header,
			Filter:    filter,
			Logger:    log,
		},
		render: rc,
	}, nil
}

func (c Config) baseURL() (*url.URL, error) {
	if c.Base == "" {
		return nil, errors.New("a base url is required (--base)")
	}
	u, err := url.Parse(c.Base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", c.Base)
	}
	return u, nil
}

func singleRune(name, s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", name, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

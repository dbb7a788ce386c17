package source

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

type globRule struct {
	pattern string
	g       glob.Glob
}

// Filter decides which old paths are turned into rules. Excludes win over
// includes; with no includes every path not excluded passes.
type Filter struct {
	include []globRule
	exclude []globRule
}

// NewFilter compiles include and exclude patterns. "*" stops at "/", "**"
// crosses it. A pattern prefixed with "!" in include is treated as an exclude.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	add := func(pattern string, ignore bool) error {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			return nil
		}
		if strings.HasPrefix(pattern, "!") {
			ignore = true
			pattern = strings.TrimPrefix(pattern, "!")
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		rule := globRule{pattern: pattern, g: g}
		if ignore {
			f.exclude = append(f.exclude, rule)
		} else {
			f.include = append(f.include, rule)
		}
		return nil
	}
	for _, p := range include {
		if err := add(p, false); err != nil {
			return nil, err
		}
	}
	for _, p := range exclude {
		if err := add(p, true); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Allow reports whether path should produce a rule.
func (f *Filter) Allow(path string) bool {
	if f == nil {
		return true
	}
	for _, rule := range f.exclude {
		if rule.g.Match(path) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, rule := range f.include {
		if rule.g.Match(path) {
			return true
		}
	}
	return false
}

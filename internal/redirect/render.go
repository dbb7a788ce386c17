package redirect

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dialect selects the server configuration grammar.
type Dialect string

const (
	Apache Dialect = "apache"
	Nginx  Dialect = "nginx"
)

// Dialects lists the supported servers in help order.
var Dialects = []Dialect{Apache, Nginx}

// ParseDialect maps a server name to its Dialect.
func ParseDialect(s string) (Dialect, error) {
	for _, d := range Dialects {
		if string(d) == strings.ToLower(strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q, must be one of: %s", ErrInvalidServer, s, DialectNames())
}

// DialectNames is the comma separated list of supported servers.
func DialectNames() string {
	names := make([]string, len(Dialects))
	for i, d := range Dialects {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// Config is everything the renderer needs besides the tree.
type Config struct {
	Server Dialect
	// Token is the already normalized redirect status placed into each rule.
	Token string
	Depth int
	// Indent is the number of spaces per nesting level.
	Indent int
}

// Validate reports whether cfg can be rendered.
func (c Config) Validate() error {
	if c.Server != Apache && c.Server != Nginx {
		return fmt.Errorf("%w: unknown server %q", ErrInvalidConfiguration, c.Server)
	}
	if c.Depth < 0 {
		return fmt.Errorf("%w: depth %d is negative", ErrInvalidConfiguration, c.Depth)
	}
	if c.Indent < 0 {
		return fmt.Errorf("%w: indent %d is negative", ErrInvalidConfiguration, c.Indent)
	}
	return nil
}

func (c Config) rule(from, to string) string {
	if c.Server == Apache {
		return fmt.Sprintf("Redirect %s %s %s", c.Token, from, to)
	}
	return fmt.Sprintf("rewrite ^%s$ %s %s;", from, to, c.Token)
}

func (c Config) open(path string) string {
	if c.Server == Apache {
		return fmt.Sprintf("<Location %s>", path)
	}
	return fmt.Sprintf("location ^~ %s {", path)
}

func (c Config) close() string {
	if c.Server == Apache {
		return "</Location>"
	}
	return "}"
}

// Lines renders root into configuration lines, one rule per leaf.
func Lines(root *Group, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var lines []string
	emit := func(level int, s string) {
		lines = append(lines, strings.Repeat(" ", level*cfg.Indent)+s)
	}
	var walk func(g *Group, level int, prefix string)
	walk = func(g *Group, level int, prefix string) {
		for _, e := range g.Entries {
			switch e := e.(type) {
			case Leaf:
				emit(level, cfg.rule(prefix+"/"+e.Segment, e.New))
			case *Group:
				path := prefix + "/" + e.Name
				emit(level, cfg.open(path))
				walk(e, level+1, path)
				emit(level, cfg.close())
			}
		}
	}
	walk(root, 0, "")
	return lines, nil
}

// Render writes the rendered configuration to w. Nothing is written when cfg
// is invalid.
func Render(w io.Writer, root *Group, cfg Config) error {
	lines, err := Lines(root, cfg)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

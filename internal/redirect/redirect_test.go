package redirect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(t *testing.T, depth int, pairs ...string) []Record {
	t.Helper()
	require.Zero(t, len(pairs)%2, "pairs must be old/new")
	var out []Record
	for i := 0; i < len(pairs); i += 2 {
		r, err := NewRecord(pairs[i], pairs[i+1], depth)
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func render(t *testing.T, cfg Config, pairs ...string) []string {
	t.Helper()
	root, err := Build(records(t, cfg.Depth, pairs...), cfg.Depth)
	require.NoError(t, err)
	lines, err := Lines(root, cfg)
	require.NoError(t, err)
	return lines
}

func nginx(depth int) Config {
	return Config{Server: Nginx, Token: "redirect", Depth: depth, Indent: 1}
}

func TestNewRecord_SplitsUpToDepth(t *testing.T) {
	r, err := NewRecord("/a/b/c/d/e", "/n", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a", "b", "c/d/e"}, r.Segments)
	assert.Equal(t, "/a/b/c/d/e", r.Old())

	_, err = NewRecord("/a", "/n", -1)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestLines_NestedNginx(t *testing.T) {
	lines := render(t, nginx(3),
		"/a/b/c", "/new1",
		"/a/b/d", "/new2",
		"/x", "/new3",
	)
	want := []string{
		"location ^~ /a {",
		" location ^~ /a/b {",
		"  rewrite ^/a/b/c$ /new1 redirect;",
		"  rewrite ^/a/b/d$ /new2 redirect;",
		" }",
		"}",
		"rewrite ^/x$ /new3 redirect;",
	}
	assert.Equal(t, want, lines)
}

func TestLines_Apache(t *testing.T) {
	cfg := Config{Server: Apache, Token: "301", Depth: 1, Indent: 2}
	lines := render(t, cfg,
		"/blog/one", "/posts/1",
		"/about", "/company",
		"/blog/two/deep", "/posts/2",
	)
	want := []string{
		"<Location /blog>",
		"  Redirect 301 /blog/one /posts/1",
		"  Redirect 301 /blog/two/deep /posts/2",
		"</Location>",
		"Redirect 301 /about /company",
	}
	assert.Equal(t, want, lines)
}

func TestLines_DuplicatesKept(t *testing.T) {
	lines := render(t, nginx(3), "/a", "/n1", "/a", "/n2")
	assert.Equal(t, []string{
		"rewrite ^/a$ /n1 redirect;",
		"rewrite ^/a$ /n2 redirect;",
	}, lines)
}

func TestLines_DepthZeroIsFlat(t *testing.T) {
	lines := render(t, nginx(0),
		"/a/b/c", "/1",
		"/a/b/d", "/2",
		"/x/y", "/3",
	)
	assert.Equal(t, []string{
		"rewrite ^/a/b/c$ /1 redirect;",
		"rewrite ^/a/b/d$ /2 redirect;",
		"rewrite ^/x/y$ /3 redirect;",
	}, lines)
}

func TestLines_RootAndTrailingSlash(t *testing.T) {
	lines := render(t, nginx(2), "/", "/home", "/docs/", "/documentation")
	assert.Equal(t, []string{
		"rewrite ^/$ /home redirect;",
		"location ^~ /docs {",
		" rewrite ^/docs/$ /documentation redirect;",
		"}",
	}, lines)
}

func TestLines_EmptyInput(t *testing.T) {
	root, err := Build(nil, 3)
	require.NoError(t, err)
	lines, err := Lines(root, nginx(3))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLines_Properties(t *testing.T) {
	pairs := []string{
		"/shop/shoes/red", "/s/1",
		"/shop/shoes/blue/x/y", "/s/2",
		"/shop/hats", "/s/3",
		"/blog", "/b",
		"/blog/2020/01/post", "/b/1",
		"/shop/shoes/red", "/s/4",
		"/", "/",
	}
	for _, server := range Dialects {
		for depth := 0; depth <= 5; depth++ {
			cfg := Config{Server: server, Token: "permanent", Depth: depth, Indent: 3}
			first := render(t, cfg, pairs...)
			second := render(t, cfg, pairs...)
			assert.Equal(t, first, second, "deterministic")

			opens, closes, rules := 0, 0, 0
			var stack []string
			for i, l := range first {
				body := strings.TrimLeft(l, " ")
				indent := l[:len(l)-len(body)]
				switch {
				case strings.HasPrefix(body, "<Location"), strings.HasPrefix(body, "location"):
					opens++
					stack = append(stack, indent)
					require.Less(t, i+1, len(first))
					assert.NotEqual(t, cfg.close(), strings.TrimSpace(first[i+1]), "empty block")
				case body == cfg.close():
					closes++
					require.NotEmpty(t, stack, "nesting went negative")
					assert.Equal(t, stack[len(stack)-1], indent, "close aligned with open")
					stack = stack[:len(stack)-1]
				default:
					rules++
				}
			}
			assert.Empty(t, stack)
			assert.Equal(t, opens, closes)
			assert.Equal(t, len(pairs)/2, rules)
			if depth == 0 {
				assert.Zero(t, opens)
			}
		}
	}
}

func TestBuild_InterleavesInFirstSeenOrder(t *testing.T) {
	root, err := Build(records(t, 3,
		"/z", "/1",
		"/m/a", "/2",
		"/b", "/3",
		"/m/c", "/4",
	), 3)
	require.NoError(t, err)
	require.Len(t, root.Entries, 3)
	assert.Equal(t, Leaf{Segment: "z", New: "/1"}, root.Entries[0])
	assert.Same(t, root.Child("m"), root.Entries[1])
	assert.Equal(t, Leaf{Segment: "b", New: "/3"}, root.Entries[2])
	assert.Equal(t, 2, root.Child("m").Leaves())
	assert.Equal(t, 4, root.Leaves())
}

func TestBuild_NegativeDepth(t *testing.T) {
	_, err := Build(nil, -1)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestPrune_RemovesEmptyChainsWithoutMutating(t *testing.T) {
	root := newGroup("")
	root.child("a").child("b").child("c")
	keep := root.child("k")
	keep.Entries = append(keep.Entries, Leaf{Segment: "x", New: "/x"})
	root.child("a").child("e")

	pruned := Prune(root)
	require.Len(t, pruned.Entries, 1)
	assert.Nil(t, pruned.Child("a"))
	require.NotNil(t, pruned.Child("k"))
	assert.Equal(t, 1, pruned.Leaves())

	assert.Len(t, root.Entries, 2, "input tree untouched")
	assert.NotNil(t, root.Child("a").Child("b").Child("c"))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, nginx(0).Validate())
	assert.ErrorIs(t, Config{Server: "iis"}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, Config{Server: Nginx, Depth: -2}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, Config{Server: Apache, Indent: -1}.Validate(), ErrInvalidConfiguration)

	_, err := Lines(newGroup(""), Config{Server: Nginx, Depth: -1})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestRender_WritesLines(t *testing.T) {
	root, err := Build(records(t, 1, "/a/b", "/c"), 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, root, Config{Server: Apache, Token: "temp", Depth: 1, Indent: 4}))
	assert.Equal(t, "<Location /a>\n    Redirect temp /a/b /c\n</Location>\n", buf.String())

	buf.Reset()
	assert.Error(t, Render(&buf, root, Config{Server: "caddy"}))
	assert.Zero(t, buf.Len())
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect(" Nginx ")
	require.NoError(t, err)
	assert.Equal(t, Nginx, d)

	_, err = ParseDialect("lighttpd")
	assert.ErrorIs(t, err, ErrInvalidServer)
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{Apache, "301", "301"},
		{Apache, "302", "302"},
		{Apache, "permanent", "permanent"},
		{Apache, "temporary", "temp"},
		{Apache, "redirect", "temp"},
		{Apache, "temp", "temp"},
		{Nginx, "301", "permanent"},
		{Nginx, "permanent", "permanent"},
		{Nginx, "302", "redirect"},
		{Nginx, "temporary", "redirect"},
		{Nginx, "temp", "redirect"},
		{Nginx, "redirect", "redirect"},
	}
	for _, tt := range tests {
		got, err := NormalizeToken(tt.dialect, tt.in)
		require.NoError(t, err, "%s %s", tt.dialect, tt.in)
		assert.Equal(t, tt.want, got, "%s %s", tt.dialect, tt.in)
	}

	_, err := NormalizeToken(Nginx, "410")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = NormalizeToken("caddy", "301")
	assert.ErrorIs(t, err, ErrInvalidServer)
}

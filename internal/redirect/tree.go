package redirect

import "fmt"

// Node is either a Leaf or a *Group.
type Node interface {
	node()
}

// Leaf is a rule terminating at its parent group.
type Leaf struct {
	Segment string
	New     string
}

// Group collects every record sharing the path prefix that ends in Name.
// Entries keep first-seen order; children indexes the Group entries by name.
type Group struct {
	Name     string
	Entries  []Node
	children map[string]*Group
}

func (Leaf) node()   {}
func (*Group) node() {}

func newGroup(name string) *Group {
	return &Group{Name: name, children: map[string]*Group{}}
}

// Child returns the child group keyed by name, or nil.
func (g *Group) Child(name string) *Group {
	return g.children[name]
}

func (g *Group) child(name string) *Group {
	if c, ok := g.children[name]; ok {
		return c
	}
	c := newGroup(name)
	g.children[name] = c
	g.Entries = append(g.Entries, c)
	return c
}

func (g *Group) empty() bool {
	return len(g.Entries) == 0
}

// Leaves counts the leaves in the subtree rooted at g.
func (g *Group) Leaves() int {
	n := 0
	for _, e := range g.Entries {
		switch e := e.(type) {
		case Leaf:
			n++
		case *Group:
			n += e.Leaves()
		}
	}
	return n
}

// Build groups records into a prefix tree and returns its pruned root.
func Build(records []Record, depth int) (*Group, error) {
	if depth < 0 {
		return nil, fmt.Errorf("%w: depth %d is negative", ErrInvalidConfiguration, depth)
	}
	root := newGroup("")
	for _, r := range records {
		segs := r.Segments
		// Drop the empty piece in front of the leading "/".
		if len(segs) > 1 {
			segs = segs[1:]
		}
		if len(segs) == 0 {
			segs = []string{""}
		}
		g := root
		for _, s := range segs[:len(segs)-1] {
			g = g.child(s)
		}
		g.Entries = append(g.Entries, Leaf{Segment: segs[len(segs)-1], New: r.New})
	}
	return Prune(root), nil
}

// Prune returns a copy of g without groups that hold no leaves anywhere below
// them. g itself is left untouched; the root is always returned even if empty.
func Prune(g *Group) *Group {
	out := newGroup(g.Name)
	for _, e := range g.Entries {
		switch e := e.(type) {
		case Leaf:
			out.Entries = append(out.Entries, e)
		case *Group:
			c := Prune(e)
			if c.empty() {
				continue
			}
			out.children[c.Name] = c
			out.Entries = append(out.Entries, c)
		}
	}
	return out
}

package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/canopy/pkg/vdom"
)

func keyed(tag string, keys ...string) []*vdom.VNode {
	out := make([]*vdom.VNode, len(keys))
	for i, k := range keys {
		out[i] = vdom.El(tag, vdom.Key(k))
	}
	return out
}

func wrappers(nodes []*vdom.VNode) []*wrapper {
	out := make([]*wrapper, len(nodes))
	for i, n := range nodes {
		out[i] = newWrapper(n)
	}
	return out
}

func label(n *vdom.VNode) string {
	if k := vdom.KeyOf(n); k != "" {
		return k
	}
	if n.Kind == vdom.KindText {
		return "#text"
	}
	return typeName(n)
}

// summarize renders instructions as "op label" strings.
func summarize(instrs []instruction) []string {
	out := make([]string, 0, len(instrs))
	for _, in := range instrs {
		switch {
		case in.isRemove():
			out = append(out, "remove "+label(in.current.node))
		case in.isCreate():
			out = append(out, "create "+label(in.next))
		case in.move:
			out = append(out, "move "+label(in.next))
		default:
			out = append(out, "update "+label(in.next))
		}
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name    string
		current []*vdom.VNode
		next    []*vdom.VNode
		want    []string
	}{
		{
			name:    "keyed reorder",
			current: keyed("li", "a", "b", "c"),
			next:    keyed("li", "c", "a", "b"),
			want:    []string{"move c", "update a", "update b"},
		},
		{
			name:    "keyed insert",
			current: keyed("li", "a", "c"),
			next:    keyed("li", "a", "b", "c"),
			want:    []string{"update a", "create b", "update c"},
		},
		{
			name:    "keyed remove",
			current: keyed("li", "a", "b", "c"),
			next:    keyed("li", "a", "c"),
			want:    []string{"update a", "remove b", "update c"},
		},
		{
			name:    "disjoint keys",
			current: keyed("li", "a", "b"),
			next:    keyed("li", "c", "d"),
			want:    []string{"remove a", "remove b", "create c", "create d"},
		},
		{
			name:    "unkeyed remove first",
			current: []*vdom.VNode{vdom.Div("x"), vdom.Div("y"), vdom.Div("z")},
			next:    []*vdom.VNode{vdom.Div("y"), vdom.Div("z")},
			want:    []string{"update div", "update div", "remove div"},
		},
		{
			name:    "unkeyed type change",
			current: []*vdom.VNode{vdom.Div(), vdom.Span()},
			next:    []*vdom.VNode{vdom.Span()},
			want:    []string{"remove div", "update span"},
		},
		{
			name:    "unkeyed swap",
			current: []*vdom.VNode{vdom.P(), vdom.Span()},
			next:    []*vdom.VNode{vdom.Span(), vdom.P()},
			want:    []string{"remove p", "create span", "create p", "remove span"},
		},
		{
			name:    "text always matches",
			current: []*vdom.VNode{vdom.Text("a")},
			next:    []*vdom.VNode{vdom.Text("b")},
			want:    []string{"update #text"},
		},
		{
			name: "from empty",
			next: keyed("li", "a"),
			want: []string{"create a"},
		},
		{
			name:    "to empty",
			current: keyed("li", "a"),
			want:    []string{"remove a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Renderer{}
			got := summarize(r.diff(wrappers(tt.current), tt.next))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("diff() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiffCoversEveryEntry(t *testing.T) {
	current := wrappers(keyed("li", "a", "b", "c", "d"))
	next := keyed("li", "d", "x", "b", "a")

	r := &Renderer{}
	instrs := r.diff(current, next)

	seenCurrent := make(map[*wrapper]int)
	seenNext := make(map[*vdom.VNode]int)
	for _, in := range instrs {
		if in.current != nil {
			seenCurrent[in.current]++
		}
		if in.next != nil {
			seenNext[in.next]++
		}
	}
	for _, w := range current {
		if seenCurrent[w] != 1 {
			t.Errorf("current %s appears %d times, want 1", w.key(), seenCurrent[w])
		}
	}
	for _, n := range next {
		if seenNext[n] != 1 {
			t.Errorf("next %s appears %d times, want 1", vdom.KeyOf(n), seenNext[n])
		}
	}
}

func TestSameComponentRef(t *testing.T) {
	f := Create(nil)
	a := f.Component("A", func(*Context) *vdom.VNode { return nil })
	b := f.Component("B", func(*Context) *vdom.VNode { return nil })

	reg := NewRegistry()
	if err := reg.Define("a", a); err != nil {
		t.Fatal(err)
	}
	r := &Renderer{opts: options{registry: reg}}

	tests := []struct {
		name string
		cur  *vdom.VNode
		next *vdom.VNode
		want bool
	}{
		{"same pointer", vdom.Comp(a, nil), vdom.Comp(a, nil), true},
		{"different pointer", vdom.Comp(a, nil), vdom.Comp(b, nil), false},
		{"label resolves to pointer", vdom.Comp(vdom.Registered("a"), nil), vdom.Comp(a, nil), true},
		{"same unknown label", vdom.Comp(vdom.Registered("x"), nil), vdom.Comp(vdom.Registered("x"), nil), true},
		{"different key", vdom.Comp(a, vdom.Props{"key": "1"}), vdom.Comp(a, vdom.Props{"key": "2"}), false},
		{"element against component", vdom.Div(), vdom.Comp(a, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.same(newWrapper(tt.cur), tt.next); got != tt.want {
				t.Errorf("same() = %v, want %v", got, tt.want)
			}
		})
	}
}

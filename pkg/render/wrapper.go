package render

import (
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/vdom"
)

type wrapperKind uint8

const (
	elementWrapper wrapperKind = iota + 1
	textWrapper
	componentWrapper
)

func (k wrapperKind) String() string {
	switch k {
	case elementWrapper:
		return "element"
	case textWrapper:
		return "text"
	case componentWrapper:
		return "component"
	default:
		return "unknown"
	}
}

func kindOf(n *vdom.VNode) wrapperKind {
	switch n.Kind {
	case vdom.KindElement:
		return elementWrapper
	case vdom.KindText:
		return textWrapper
	case vdom.KindComponent:
		return componentWrapper
	}
	panic("render: fragment descriptors are flattened before reconciliation")
}

// wrapper pairs one descriptor with its position in the tree and its DOM
// linkage. parent, depth and index are reassigned on every pass that
// reconciles the wrapper's sibling list.
type wrapper struct {
	kind  wrapperKind
	node  *vdom.VNode
	depth int
	order int
	index int // position in the sibling list

	parent   *wrapper
	children []*wrapper

	// owner is the component instance whose render produced this wrapper.
	// nil for the root component.
	owner *instance

	// element and text wrappers
	domNode   dom.Node
	namespace string
	applied   vdom.Props
	listeners map[string]*binding
	marker    string
	merged    bool

	// component wrappers
	inst    *instance
	pending string // unresolved registry label

	removed bool

	// unapplied is set when the pass that created w was abandoned before
	// its DOM work ran.
	unapplied bool
}

func newWrapper(n *vdom.VNode) *wrapper {
	return &wrapper{kind: kindOf(n), node: n}
}

func (w *wrapper) key() string {
	return vdom.KeyOf(w.node)
}

// siblings returns the list w belongs to.
func (r *Renderer) siblings(w *wrapper) []*wrapper {
	if w.parent == nil {
		return r.top
	}
	return w.parent.children
}

// elementParent returns the nearest ancestor element wrapper, or nil when w
// sits directly in the container.
func elementParent(w *wrapper) *wrapper {
	for p := w.parent; p != nil; p = p.parent {
		if p.kind == elementWrapper {
			return p
		}
	}
	return nil
}

func (r *Renderer) parentDOM(w *wrapper) dom.Node {
	if p := elementParent(w); p != nil {
		return p.domNode
	}
	return r.container
}

// domNodes appends the top level DOM nodes of w in document order. For a
// component these are the nodes of its nearest element and text
// descendants.
func domNodes(w *wrapper, out []dom.Node) []dom.Node {
	switch w.kind {
	case componentWrapper:
		for _, c := range w.children {
			out = domNodes(c, out)
		}
	default:
		if w.domNode != nil {
			out = append(out, w.domNode)
		}
	}
	return out
}

// firstDOM returns the first DOM node of w, which for a component is the
// node of its first DOM-bearing descendant.
func firstDOM(w *wrapper) dom.Node {
	if w.kind != componentWrapper {
		return w.domNode
	}
	for _, c := range w.children {
		if n := firstDOM(c); n != nil {
			return n
		}
	}
	return nil
}

// lastAttached returns the last DOM node of w that is currently a child of
// parent.
func lastAttached(w *wrapper, parent dom.Node) dom.Node {
	if w.kind != componentWrapper {
		if w.domNode != nil && w.domNode.Parent() == parent {
			return w.domNode
		}
		return nil
	}
	for i := len(w.children) - 1; i >= 0; i-- {
		if n := lastAttached(w.children[i], parent); n != nil {
			return n
		}
	}
	return nil
}

// walkWrappers visits w and its descendants depth first until fn returns
// false.
func walkWrappers(w *wrapper, fn func(*wrapper) bool) bool {
	if !fn(w) {
		return false
	}
	for _, c := range w.children {
		if !walkWrappers(c, fn) {
			return false
		}
	}
	return true
}

package render

import (
	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// instruction is one entry of a reconciled sibling list. current only means
// remove, next only means create, both means the wrapper is reused.
type instruction struct {
	current *wrapper
	next    *vdom.VNode

	// move marks an update whose wrapper was matched by key out of order
	// and must be repositioned.
	move bool

	// w is the wrapper that carries next: current for updates, a fresh
	// wrapper for creates.
	w *wrapper
}

func (in instruction) isCreate() bool { return in.current == nil }
func (in instruction) isRemove() bool { return in.next == nil }

// resolve returns the component a reference stands for, looking registry
// keys up in the registry. Unknown labels resolve to nil.
func (r *Renderer) resolve(ref vdom.ComponentRef) vdom.ComponentRef {
	key, ok := ref.(vdom.RegistryKey)
	if !ok {
		return ref
	}
	if r.opts.registry == nil {
		return nil
	}
	resolved, _ := r.opts.registry.Get(string(key))
	return resolved
}

func (r *Renderer) sameRef(a, b vdom.ComponentRef) bool {
	if a == b {
		return true
	}
	ra := r.resolve(a)
	return ra != nil && ra == r.resolve(b)
}

// same reports whether n describes the same logical node as w.
func (r *Renderer) same(w *wrapper, n *vdom.VNode) bool {
	if n.Kind == vdom.KindFragment || w.kind != kindOf(n) {
		return false
	}
	switch w.kind {
	case textWrapper:
		return true
	case elementWrapper:
		if n.DOMNode != nil && n.DOMNode != w.domNode {
			return false
		}
		return w.node.Tag == n.Tag && w.key() == vdom.KeyOf(n)
	default:
		return r.sameRef(w.node.Comp, n.Comp) && w.key() == vdom.KeyOf(n)
	}
}

// diff matches the current wrappers of one sibling list against the next
// descriptors. Every wrapper and every descriptor appears in exactly one
// instruction.
func (r *Renderer) diff(current []*wrapper, next []*vdom.VNode) []instruction {
	out := make([]instruction, 0, max(len(current), len(next)))

	if disjointKeys(current, next) {
		for _, w := range current {
			out = append(out, instruction{current: w})
		}
		for _, n := range next {
			out = append(out, instruction{next: n})
		}
		return out
	}

	consumed := make([]bool, len(current))
	laterCurrent := func(from int, n *vdom.VNode) int {
		for j := from; j < len(current); j++ {
			if !consumed[j] && r.same(current[j], n) {
				return j
			}
		}
		return -1
	}
	laterNext := func(from int, w *wrapper) bool {
		for j := from; j < len(next); j++ {
			if r.same(w, next[j]) {
				return true
			}
		}
		return false
	}

	oldIndex, newIndex := 0, 0
	for newIndex < len(next) {
		for oldIndex < len(current) && consumed[oldIndex] {
			oldIndex++
		}
		n := next[newIndex]
		if oldIndex >= len(current) {
			out = append(out, instruction{next: n})
			newIndex++
			continue
		}
		cur := current[oldIndex]

		if r.same(cur, n) {
			out = append(out, instruction{current: cur, next: n})
			consumed[oldIndex] = true
			oldIndex++
			newIndex++
			continue
		}

		j := laterCurrent(oldIndex+1, n)
		switch {
		case j < 0:
			out = append(out, instruction{next: n})
			newIndex++
		case !laterNext(newIndex+1, cur):
			out = append(out, instruction{current: cur})
			consumed[oldIndex] = true
			oldIndex++
		case vdom.KeyOf(n) != "":
			out = append(out, instruction{current: current[j], next: n, move: true})
			consumed[j] = true
			newIndex++
		default:
			out = append(out, instruction{current: cur}, instruction{next: n})
			consumed[oldIndex] = true
			oldIndex++
			newIndex++
		}
	}

	for i, w := range current {
		if !consumed[i] {
			out = append(out, instruction{current: w})
		}
	}
	return out
}

// disjointKeys reports whether both lists are non-empty, fully keyed and
// share no key.
func disjointKeys(current []*wrapper, next []*vdom.VNode) bool {
	if len(current) == 0 || len(next) == 0 {
		return false
	}
	keys := make(map[string]bool, len(current))
	for _, w := range current {
		k := w.key()
		if k == "" {
			return false
		}
		keys[k] = true
	}
	for _, n := range next {
		k := vdom.KeyOf(n)
		if k == "" || keys[k] {
			return false
		}
	}
	return true
}

// checkDistinguishable warns, in debug mode only, when a sibling list that
// changed shape contains unkeyed siblings of the same type. Positional
// matching may then reuse the wrong node.
func (r *Renderer) checkDistinguishable(parent *wrapper, instrs []instruction) {
	if !r.opts.debug {
		return
	}
	changed := false
	for _, in := range instrs {
		if in.isCreate() || in.isRemove() {
			changed = true
			break
		}
	}
	if !changed {
		return
	}

	seen := make(map[string]bool)
	for _, in := range instrs {
		if in.next == nil || vdom.KeyOf(in.next) != "" || in.next.Kind == vdom.KindText {
			continue
		}
		id := typeName(in.next)
		if seen[id] {
			err := errors.New(errors.ErrAmbiguousSiblings).
				WithDetail("unkeyed siblings of type " + id + " under " + describe(parent))
			r.logger().Warn(err.Message, "code", err.Code, "detail", err.Detail)
			return
		}
		seen[id] = true
	}
}

func typeName(n *vdom.VNode) string {
	if n.Kind == vdom.KindComponent {
		return n.Comp.ComponentName()
	}
	return n.Tag
}

func describe(w *wrapper) string {
	if w == nil {
		return "the container"
	}
	return typeName(w.node)
}

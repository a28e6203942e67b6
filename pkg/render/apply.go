package render

import (
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/vdom"
)

type opKind uint8

const (
	opCreate opKind = iota + 1
	opUpdate
	opMove
	opRemove
)

// applyOp is one DOM change produced by the process phase. Ops are applied
// in the order they were produced.
type applyOp struct {
	kind opKind
	w    *wrapper
	move bool
}

// runApply pops each op only after it ran, so a panicking op and everything
// behind it are still queued when the pass is abandoned.
func (r *Renderer) runApply() {
	for len(r.applyQ) > 0 {
		op := r.applyQ[0]
		switch op.kind {
		case opCreate:
			r.applyCreate(op.w)
		case opUpdate:
			r.applyUpdate(op.w, op.move)
		case opMove:
			r.place(op.w)
		case opRemove:
			r.applyRemove(op.w)
		}
		r.applyQ = r.applyQ[1:]
	}
	r.applyQ = nil
}

func (r *Renderer) applyCreate(w *wrapper) {
	if w.removed {
		return
	}
	switch w.kind {
	case textWrapper:
		if w.merged && w.domNode.Text() != w.node.Text {
			w.domNode.SetText(w.node.Text)
		}
		if !w.merged {
			r.place(w)
		}

	case elementWrapper:
		if isFormControl(w.node.Tag) {
			r.trackValue(w)
		}
		r.applyProps(w, true)
		if !w.merged {
			r.place(w)
			r.enter(w)
		}
		if owner := w.owner; owner != nil && owner.waiting[w.key()] {
			key := w.key()
			r.after = append(r.after, func() {
				delete(owner.waiting, key)
				r.invalidate(owner)
			})
		}
	}
}

func (r *Renderer) applyUpdate(w *wrapper, move bool) {
	if w.removed {
		return
	}
	switch w.kind {
	case textWrapper:
		if w.domNode.Text() != w.node.Text {
			w.domNode.SetText(w.node.Text)
		}
	case elementWrapper:
		r.applyProps(w, false)
	}
	if move {
		r.place(w)
	}
}

// place inserts the DOM nodes of w after the last attached node of its
// preceding siblings. Nodes of a component that have not been created yet
// are skipped; their own create ops place them.
func (r *Renderer) place(w *wrapper) {
	parent, before := r.insertionPoint(w)
	var nodes []dom.Node
	if w.kind == componentWrapper {
		for _, n := range domNodes(w, nil) {
			if n.Parent() == parent {
				nodes = append(nodes, n)
			}
		}
	} else {
		nodes = []dom.Node{w.domNode}
	}
	for _, n := range nodes {
		if n == before {
			before = n.NextSibling()
			continue
		}
		parent.InsertBefore(n, before)
	}
}

// insertionPoint returns the parent node and reference node w's DOM goes
// before. The search walks back through preceding siblings, climbing out of
// component wrappers, and falls back to the first child the renderer owns.
func (r *Renderer) insertionPoint(w *wrapper) (parent, before dom.Node) {
	parent = r.parentDOM(w)
	for cur := w; cur != nil; cur = cur.parent {
		sibs := r.siblings(cur)
		for i := cur.index - 1; i >= 0; i-- {
			if i >= len(sibs) {
				continue
			}
			if n := lastAttached(sibs[i], parent); n != nil {
				return parent, n.NextSibling()
			}
		}
		if cur.parent == nil || cur.parent.kind == elementWrapper {
			break
		}
	}
	return parent, r.firstOwnedChild(parent)
}

func (r *Renderer) firstOwnedChild(parent dom.Node) dom.Node {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := r.owned[c]; ok {
			return c
		}
	}
	return nil
}

// applyRemove detaches the DOM nodes of a removed wrapper, running exit
// animations first where the element declares one.
func (r *Renderer) applyRemove(w *wrapper) {
	var tops []*wrapper
	var collect func(*wrapper)
	collect = func(c *wrapper) {
		if c.kind != componentWrapper {
			tops = append(tops, c)
			return
		}
		for _, child := range c.children {
			collect(child)
		}
	}
	collect(w)

	for _, t := range tops {
		n := t.domNode
		if n == nil || n.Parent() == nil {
			continue
		}
		if t.kind == elementWrapper && r.exit(t, func() { detach(n) }) {
			continue
		}
		detach(n)
	}
}

func detach(n dom.Node) {
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
}

// enter starts the enter animation of a freshly inserted element.
func (r *Renderer) enter(w *wrapper) {
	switch anim := w.applied["enterAnimation"].(type) {
	case string:
		if anim != "" && r.opts.transitions != nil {
			r.opts.transitions.Enter(w.domNode, anim)
		}
	case func(dom.Node, vdom.Props):
		anim(w.domNode, w.applied)
	}
}

// exit starts the exit animation of a removed element and reports whether
// one was started. done detaches the node.
func (r *Renderer) exit(w *wrapper, done func()) bool {
	switch anim := w.applied["exitAnimation"].(type) {
	case string:
		if anim == "" || r.opts.transitions == nil {
			return false
		}
		r.opts.transitions.Exit(w.domNode, anim, done)
		return true
	case func(dom.Node, func(), vdom.Props):
		anim(w.domNode, done, w.applied)
		return true
	}
	return false
}

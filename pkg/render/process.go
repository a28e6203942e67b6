package render

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// processItem is a reconciled sibling list waiting to be processed. pos is
// the index of the first unprocessed instruction.
type processItem struct {
	parent *wrapper
	instrs []instruction
	pos    int
	merge  *mergeList
}

func ownerFor(parent *wrapper) *instance {
	switch {
	case parent == nil:
		return nil
	case parent.kind == componentWrapper:
		return parent.inst
	default:
		return parent.owner
	}
}

// reconcile diffs the children of parent (the top level list when parent is
// nil) against next, installs the new child list and queues the
// instructions for processing.
func (r *Renderer) reconcile(parent *wrapper, next []*vdom.VNode, merge *mergeList) {
	current := r.top
	depth := 0
	if parent != nil {
		current = parent.children
		depth = parent.depth + 1
	}
	next = vdom.Flatten(next)
	instrs := r.diff(current, next)
	r.checkDistinguishable(parent, instrs)

	owner := ownerFor(parent)
	children := make([]*wrapper, 0, len(next))
	for i := range instrs {
		in := &instrs[i]
		if in.next == nil {
			continue
		}
		if in.current != nil {
			in.w = in.current
		} else {
			in.w = newWrapper(in.next)
		}
		in.w.parent = parent
		in.w.owner = owner
		in.w.depth = depth
		in.w.index = len(children)
		children = append(children, in.w)
	}
	if parent == nil {
		r.top = children
	} else {
		parent.children = children
	}
	if len(instrs) > 0 {
		r.processQ = append(r.processQ, &processItem{parent: parent, instrs: instrs, merge: merge})
	}
}

// runProcess drains the process queue. The queue is a stack: after a batch
// the remainder of its list is pushed first and the lists produced by the
// batch on top, in reverse, so the first sibling's subtree is processed next.
func (r *Renderer) runProcess() {
	for len(r.processQ) > 0 {
		item := r.processQ[len(r.processQ)-1]
		r.processQ = r.processQ[:len(r.processQ)-1]

		size := r.opts.batchSize
		if item.merge != nil {
			// Adoption consumes existing markup in document order.
			size = 1
		}
		end := min(item.pos+size, len(item.instrs))
		batch := item.instrs[item.pos:end]
		item.pos = end
		if item.pos < len(item.instrs) {
			r.processQ = append(r.processQ, item)
		}

		mark := len(r.processQ)
		r.inflight = &processItem{parent: item.parent, instrs: batch}
		for _, in := range batch {
			switch {
			case in.isRemove():
				r.remove(in.current)
			case in.isCreate():
				r.create(in.w, item.merge)
			default:
				r.update(in.w, in.next, in.move)
			}
		}
		r.inflight = nil
		slices.Reverse(r.processQ[mark:])
	}
}

func (r *Renderer) nextOrder(w *wrapper) {
	r.order++
	w.order = r.order
}

func (r *Renderer) create(w *wrapper, merge *mergeList) {
	r.nextOrder(w)
	r.stats.Created++

	switch w.kind {
	case elementWrapper:
		w.namespace = r.namespaceFor(w)
		var childMerge *mergeList
		switch {
		case w.node.DOMNode != nil:
			w.domNode = w.node.DOMNode
		case merge != nil:
			if n := merge.adoptElement(w.node.Tag); n != nil {
				w.domNode = n
				w.merged = true
				childMerge = r.newMergeList(n)
			} else {
				r.mergeMismatch(w)
			}
		}
		if w.domNode == nil {
			if w.namespace == dom.NamespaceHTML {
				w.domNode = r.doc.CreateElement(w.node.Tag)
			} else {
				w.domNode = r.doc.CreateElementNS(w.namespace, w.node.Tag)
			}
		}
		r.own(w)
		r.applyQ = append(r.applyQ, applyOp{kind: opCreate, w: w})
		r.reconcile(w, w.node.Children, childMerge)

	case textWrapper:
		if merge != nil {
			if n := merge.adoptText(); n != nil {
				w.domNode = n
				w.merged = true
			}
		}
		if w.domNode == nil {
			w.domNode = r.doc.CreateTextNode(w.node.Text)
		}
		r.own(w)
		r.applyQ = append(r.applyQ, applyOp{kind: opCreate, w: w})

	case componentWrapper:
		r.createComponent(w, merge)
	}
}

// createComponent resolves and instantiates the component of w and renders
// it. An unresolved registry label leaves w without an instance; it is
// retried when its owner next updates it.
func (r *Renderer) createComponent(w *wrapper, merge *mergeList) {
	ref := r.resolve(w.node.Comp)
	if ref == nil {
		r.await(w)
		return
	}
	w.pending = ""
	inst := r.instantiate(w, ref)
	r.reconcile(w, []*vdom.VNode{r.renderInstance(inst)}, merge)
}

func (r *Renderer) instantiate(w *wrapper, ref vdom.ComponentRef) *instance {
	r.seq++
	inst := &instance{
		id:       strconv.Itoa(r.seq),
		r:        r,
		w:        w,
		props:    w.node.Props,
		children: w.node.Children,
		slots:    w.node.Slots,
		dirty:    true,
		updating: true,
	}
	inst.ctx = &Context{id: inst.id, inst: inst}
	w.inst = inst
	r.instances[inst.id] = inst

	switch c := ref.(type) {
	case *Component:
		inst.comp = c
		inst.ctx.deps = r.resolveMiddleware(inst, c.deps)
	case *Class:
		inst.widget = c.ctor()
		inst.widget.base().ctx = inst.ctx
		if _, ok := inst.widget.(Attacher); ok {
			r.attach = append(r.attach, inst)
		}
	default:
		panic(fmt.Sprintf("render: unsupported component reference %T", ref))
	}
	inst.updating = false
	return inst
}

// renderInstance clears the dirty mark and calls the component.
func (r *Renderer) renderInstance(inst *instance) *vdom.VNode {
	inst.dirty = false
	r.stats.Rendered++
	r.rendering = inst
	var out *vdom.VNode
	if inst.comp != nil {
		out = inst.comp.render(inst.ctx)
	} else {
		out = inst.widget.Render()
	}
	r.rendering = nil
	if inst.paused {
		return nil
	}
	return out
}

func (r *Renderer) update(w *wrapper, next *vdom.VNode, move bool) {
	if w.kind != componentWrapper && w.domNode == nil {
		// Linked into the tree by an abandoned pass that never created it.
		w.node = next
		r.create(w, nil)
		return
	}
	r.nextOrder(w)
	r.stats.Updated++
	if move {
		r.stats.Moved++
	}

	prev := w.node
	w.node = next
	op := opUpdate
	if w.unapplied {
		op, w.unapplied = opCreate, false
	}
	switch w.kind {
	case elementWrapper:
		r.applyQ = append(r.applyQ, applyOp{kind: op, w: w, move: move})
		r.reconcile(w, next.Children, nil)

	case textWrapper:
		if op == opCreate || move || prev.Text != next.Text {
			r.applyQ = append(r.applyQ, applyOp{kind: op, w: w, move: move})
		}

	case componentWrapper:
		if move {
			r.applyQ = append(r.applyQ, applyOp{kind: opMove, w: w})
		}
		if w.inst == nil {
			r.createComponent(w, nil)
			return
		}
		if r.updateInstance(w.inst, prev, next) {
			r.reconcile(w, []*vdom.VNode{r.renderInstance(w.inst)}, nil)
		}
	}
}

// updateInstance pushes the properties and children of next into inst and
// reports whether it must render.
func (r *Renderer) updateInstance(inst *instance, prev, next *vdom.VNode) bool {
	prevProps := inst.props
	inst.props = next.Props
	inst.children = next.Children
	inst.slots = next.Slots

	inst.updating = true
	if len(vdom.ChangedKeys(prevProps, next.Props, inst.customDiff)) > 0 ||
		!sameNodes(prev.Children, next.Children) ||
		!sameSlots(prev.Slots, next.Slots) {
		inst.dirty = true
	}
	for _, name := range inst.diffNames {
		inst.diffs[name](prevProps, next.Props)
	}
	inst.updating = false
	return inst.dirty
}

func sameNodes(a, b []*vdom.VNode) bool {
	return slices.Equal(a, b)
}

func sameSlots(a, b map[string][]*vdom.VNode) bool {
	if len(a) != len(b) {
		return false
	}
	for name, nodes := range a {
		other, ok := b[name]
		if !ok || !sameNodes(nodes, other) {
			return false
		}
	}
	return true
}

// remove queues the DOM removal of w and releases everything it owns.
func (r *Renderer) remove(w *wrapper) {
	r.stats.Removed++
	r.applyQ = append(r.applyQ, applyOp{kind: opRemove, w: w})
	r.release(w)
}

// release destroys the instances below w and forgets its DOM nodes.
func (r *Renderer) release(w *wrapper) {
	walkWrappers(w, func(c *wrapper) bool {
		c.removed = true
		switch c.kind {
		case componentWrapper:
			if c.inst != nil {
				r.destroyInstance(c.inst)
			}
		default:
			r.disown(c)
		}
		return true
	})
}

func (r *Renderer) destroyInstance(inst *instance) {
	if inst.destroyed {
		return
	}
	inst.destroyed = true
	delete(r.instances, inst.id)
	if d, ok := inst.widget.(Detacher); ok {
		d.OnDetach()
	}
	fns := inst.destroyFns
	inst.destroyFns = nil
	for _, fn := range fns {
		fn()
	}
	inst.scope.Clear()
}

func (r *Renderer) own(w *wrapper) {
	r.owned[w.domNode] = w
	if w.kind != elementWrapper || w.owner == nil {
		return
	}
	if key := w.key(); key != "" {
		if w.owner.nodes == nil {
			w.owner.nodes = make(map[string]*wrapper)
		}
		w.owner.nodes[key] = w
	}
}

func (r *Renderer) disown(w *wrapper) {
	if w.domNode != nil && r.owned[w.domNode] == w {
		delete(r.owned, w.domNode)
	}
	if w.owner != nil {
		if key := w.key(); key != "" && w.owner.nodes[key] == w {
			delete(w.owner.nodes, key)
		}
	}
}

// namespaceFor returns the namespace an element is created in: svg starts
// the SVG namespace, foreignObject switches its children back to HTML and
// everything else inherits from its parent element.
func (r *Renderer) namespaceFor(w *wrapper) string {
	if w.node.Tag == "svg" {
		return dom.NamespaceSVG
	}
	p := elementParent(w)
	if p == nil {
		if r.container.Namespace() == dom.NamespaceSVG && r.container.TagName() != "foreignObject" {
			return dom.NamespaceSVG
		}
		return dom.NamespaceHTML
	}
	if p.node.Tag == "foreignObject" {
		return dom.NamespaceHTML
	}
	if p.namespace == "" {
		return dom.NamespaceHTML
	}
	return p.namespace
}

// await records a component whose registry label is unknown.
func (r *Renderer) await(w *wrapper) {
	label := w.node.Comp.ComponentName()
	if w.pending == "" {
		w.pending = label
		r.pending[label] = append(r.pending[label], w)
	}
	if !r.opts.debug {
		return
	}
	err := errors.New(errors.ErrUnknownLabel).WithDetailf("label %q is not defined", label)
	if reg := r.opts.registry; reg != nil {
		if s := errors.Suggest(label, reg.Labels()); s != "" {
			err.WithSuggestion(fmt.Sprintf("did you mean %q?", s))
		}
	}
	r.logger().Warn(err.Message, "code", err.Code, "detail", err.Detail, "suggestion", err.Suggestion)
}

// labelDefined re-renders the owners of components waiting for label.
func (r *Renderer) labelDefined(label string) {
	waiting := r.pending[label]
	delete(r.pending, label)
	for _, w := range waiting {
		if w.removed || w.owner == nil {
			continue
		}
		w.pending = ""
		r.invalidate(w.owner)
	}
}

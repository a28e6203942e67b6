package render

import (
	"log/slog"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// Renderer mounts a descriptor tree into a document and keeps it in sync.
type Renderer struct {
	doc  dom.Document
	opts options

	root      *Component
	container dom.Node
	mounted   bool
	top       []*wrapper

	seq       int
	order     int
	instances map[string]*instance
	owned     map[dom.Node]*wrapper
	pending   map[string][]*wrapper

	queue        []queued
	batch        []*instance
	processQ     []*processItem
	inflight     *processItem
	rendering    *instance
	applyQ       []applyOp
	after        []func()
	attach       []*instance
	mergeLists   []*mergeList
	draining     bool
	framePending bool
	stats        DrainStats

	unsubscribe func()
}

// New creates a renderer for doc. root is called to produce the top level
// descriptor every time the renderer is invalidated.
func New(doc dom.Document, root func() *vdom.VNode, opts ...Option) *Renderer {
	r := &Renderer{
		doc:       doc,
		opts:      defaultOptions(),
		instances: make(map[string]*instance),
		owned:     make(map[dom.Node]*wrapper),
		pending:   make(map[string][]*wrapper),
	}
	for _, o := range opts {
		o(&r.opts)
	}
	r.root = &Component{
		name:   "Root",
		render: func(*Context) *vdom.VNode { return root() },
	}
	return r
}

// Mount renders the tree into the container and returns once the first
// drain, including DOM application, has completed. It fails when the
// renderer is already mounted or no container can be found; a failed Mount
// can be retried.
func (r *Renderer) Mount(opts ...Option) error {
	for _, o := range opts {
		o(&r.opts)
	}
	if r.mounted {
		return errors.New(errors.ErrAlreadyMounted).WithSuggestion("call Unmount before mounting again")
	}
	container := r.opts.container
	if container == nil {
		container = r.doc.Body()
	}
	if container == nil {
		return errors.New(errors.ErrMountTarget).
			WithSuggestion("pass render.WithContainer or use a document with a body")
	}

	r.container = container
	r.mounted = true
	if reg := r.opts.registry; reg != nil {
		r.unsubscribe = reg.OnDefine(r.labelDefined)
	}

	var merge *mergeList
	if r.opts.merge {
		merge = r.newMergeList(container)
	}
	r.reconcile(nil, []*vdom.VNode{vdom.Comp(r.root, nil)}, merge)
	r.drain()
	return nil
}

// Unmount removes everything the renderer inserted and runs every destroy
// callback. Exit animations are skipped.
func (r *Renderer) Unmount() {
	if !r.mounted {
		return
	}
	for _, w := range r.top {
		r.release(w)
		for _, n := range domNodes(w, nil) {
			if p := n.Parent(); p != nil {
				p.RemoveChild(n)
			}
		}
	}
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.top = nil
	r.queue = nil
	r.processQ = nil
	r.applyQ = nil
	r.after = nil
	r.attach = nil
	r.mergeLists = nil
	clear(r.pending)
	r.mounted = false
}

// Mounted reports whether the renderer is mounted.
func (r *Renderer) Mounted() bool { return r.mounted }

// Container returns the node the tree is mounted into.
func (r *Renderer) Container() dom.Node { return r.container }

// Instances returns the number of live component instances.
func (r *Renderer) Instances() int { return len(r.instances) }

// Invalidate schedules a re-render of the root.
func (r *Renderer) Invalidate() {
	if len(r.top) == 0 {
		return
	}
	r.invalidate(r.top[0].inst)
}

// Flush drains pending invalidations now instead of waiting for the next
// frame.
func (r *Renderer) Flush() {
	if r.mounted && len(r.queue) > 0 {
		r.drain()
	}
}

// Owner returns the id of the component instance that rendered node, or ""
// when node was not created by this renderer.
func (r *Renderer) Owner(node dom.Node) string {
	w := r.owned[node]
	if w == nil || w.owner == nil {
		return ""
	}
	return w.owner.id
}

// NodeInfo describes one wrapper for Walk.
type NodeInfo struct {
	Kind  string
	ID    string
	Name  string
	Key   string
	Text  string
	Depth int
	Node  dom.Node

	// Pending is set for components whose registry label is not defined.
	Pending bool
}

// Walk visits the live tree depth first in document order. Returning false
// from fn skips the children of the visited node.
func (r *Renderer) Walk(fn func(NodeInfo) bool) {
	var visit func(w *wrapper)
	visit = func(w *wrapper) {
		info := NodeInfo{
			Kind:  w.kind.String(),
			Key:   w.key(),
			Depth: w.depth,
			Node:  w.domNode,
		}
		switch w.kind {
		case elementWrapper:
			info.Name = w.node.Tag
		case textWrapper:
			info.Text = w.node.Text
		case componentWrapper:
			info.Name = w.node.Comp.ComponentName()
			info.Pending = w.pending != ""
			if w.inst != nil {
				info.ID = w.inst.id
			}
		}
		if !fn(info) {
			return
		}
		for _, c := range w.children {
			visit(c)
		}
	}
	for _, w := range r.top {
		visit(w)
	}
}

func (r *Renderer) logger() *slog.Logger {
	if r.opts.logger != nil {
		return r.opts.logger
	}
	return slog.Default()
}

func (r *Renderer) frames() FrameScheduler {
	if r.opts.frames != nil {
		return r.opts.frames
	}
	return immediateFrames{}
}

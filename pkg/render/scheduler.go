package render

import (
	"cmp"
	"slices"
	"time"

	"github.com/vango-dev/canopy/pkg/vdom"
)

// queued is one invalidation. depth and order are captured when the
// instance is invalidated.
type queued struct {
	inst  *instance
	depth int
	order int
}

// invalidate marks inst dirty and schedules a drain. Instances that are
// receiving new properties are only marked: their parent's pass renders
// them right after.
func (r *Renderer) invalidate(inst *instance) {
	if inst == nil || inst.destroyed {
		return
	}
	inst.dirty = true
	if inst.updating {
		return
	}
	r.queue = append(r.queue, queued{inst: inst, depth: inst.w.depth, order: inst.w.order})
	if r.mounted {
		r.schedule()
	}
}

func (r *Renderer) schedule() {
	if r.draining {
		return
	}
	if r.opts.sync {
		r.drain()
		return
	}
	if r.framePending {
		return
	}
	r.framePending = true
	r.frames().RequestFrame(r.frame)
}

func (r *Renderer) frame() {
	r.framePending = false
	// Flush may have drained the queue since the frame was requested.
	if r.mounted && len(r.queue) > 0 {
		r.drain()
	}
}

// drain renders every queued instance and applies the result. In sync mode
// invalidations raised while draining are drained in the same call; in async
// mode they wait for the next frame.
//
// A panic from a render or a DOM call propagates to the caller after the
// pass has been abandoned; the renderer keeps working for later calls.
func (r *Renderer) drain() {
	if r.draining {
		return
	}
	r.draining = true
	completed := false
	defer func() {
		r.draining = false
		if !completed {
			r.abort()
		}
	}()
	r.drainOnce()
	for r.opts.sync && r.mounted && len(r.queue) > 0 {
		r.drainOnce()
	}
	completed = true
	r.draining = false
	if r.mounted && len(r.queue) > 0 {
		r.schedule()
	}
}

// abort discards the work of a pass that panicked. Removals already
// decided are carried out so no detached wrapper keeps its DOM; wrappers
// whose creation was never applied are created again by their next update.
// The owners of dropped work and the batch entries that did not get to
// render are queued but not scheduled: the next Invalidate or Flush picks
// them up.
func (r *Renderer) abort() {
	requeue := func(inst *instance) {
		if inst == nil || inst.destroyed {
			return
		}
		inst.dirty = true
		r.queue = append(r.queue, queued{inst: inst, depth: inst.w.depth, order: inst.w.order})
	}

	lists := r.processQ
	if r.inflight != nil {
		lists = append(lists, r.inflight)
	}
	for _, item := range lists {
		for _, in := range item.instrs[item.pos:] {
			if in.isRemove() && !in.current.removed {
				r.remove(in.current)
			}
		}
		if owner := ownerFor(item.parent); owner != nil {
			requeue(owner)
		} else if len(r.top) > 0 {
			requeue(r.top[0].inst)
		}
	}
	requeue(r.rendering)

	ops := r.applyQ
	r.applyQ = nil
	for _, op := range ops {
		switch op.kind {
		case opRemove:
			r.applyRemove(op.w)
			continue
		case opCreate:
			if !op.w.removed {
				op.w.unapplied = true
			}
		}
		requeue(r.ownerOf(op.w))
	}
	for _, inst := range r.batch {
		if inst.dirty {
			requeue(inst)
		}
	}
	for _, inst := range r.instances {
		inst.updating = false
	}

	r.batch = nil
	r.processQ = nil
	r.inflight = nil
	r.rendering = nil
	r.after = nil
	r.attach = nil
	r.mergeLists = nil
}

// ownerOf returns the instance whose render produced w, the root instance
// for top level output.
func (r *Renderer) ownerOf(w *wrapper) *instance {
	if w.owner != nil {
		return w.owner
	}
	if len(r.top) > 0 {
		return r.top[0].inst
	}
	return nil
}

func (r *Renderer) drainOnce() {
	start := time.Now()
	for _, o := range r.opts.observers {
		o.DrainStarted()
	}
	r.stats = DrainStats{Sync: r.opts.sync}

	batch := r.takeQueue()
	r.batch = batch
	r.stats.Invalidations = len(batch)
	for _, inst := range batch {
		if inst.destroyed || !inst.dirty {
			continue
		}
		r.reconcile(inst.w, []*vdom.VNode{r.renderInstance(inst)}, nil)
		r.runProcess()
	}
	r.runProcess()
	r.runApply()
	r.finishMerge()
	r.runAfter()
	r.batch = nil

	r.stats.Instances = len(r.instances)
	r.stats.Duration = time.Since(start)
	for _, o := range r.opts.observers {
		o.DrainFinished(r.stats)
	}
}

// takeQueue empties the queue and returns its distinct instances, deepest
// first and, at equal depth, most recently ordered first.
func (r *Renderer) takeQueue() []*instance {
	q := r.queue
	r.queue = nil
	slices.SortStableFunc(q, func(a, b queued) int {
		if c := cmp.Compare(b.depth, a.depth); c != 0 {
			return c
		}
		return cmp.Compare(b.order, a.order)
	})
	seen := make(map[*instance]bool, len(q))
	out := make([]*instance, 0, len(q))
	for _, e := range q {
		if seen[e.inst] {
			continue
		}
		seen[e.inst] = true
		out = append(out, e.inst)
	}
	return out
}

// runAfter runs the work that needs the applied DOM: deferred properties,
// focus, select values and Node lookups first, then attach hooks.
func (r *Renderer) runAfter() {
	for len(r.after) > 0 {
		fns := r.after
		r.after = nil
		for _, fn := range fns {
			fn()
		}
	}
	attach := r.attach
	r.attach = nil
	for _, inst := range attach {
		if inst.destroyed {
			continue
		}
		if a, ok := inst.widget.(Attacher); ok {
			a.OnAttach()
		}
	}
}

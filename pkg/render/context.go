package render

import (
	"fmt"

	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// instance is a live component instance. Exactly one wrapper points at it
// and its id is the key in Renderer.instances for its whole lifetime.
type instance struct {
	id string
	r  *Renderer
	w  *wrapper

	comp   *Component
	widget Widget
	ctx    *Context

	props    vdom.Props
	children []*vdom.VNode
	slots    map[string][]*vdom.VNode

	dirty     bool
	updating  bool
	paused    bool
	destroyed bool

	destroyFns []func()
	diffNames  []string
	diffs      map[string]func(prev, next vdom.Props)
	scope      Scope

	middlewareSeq int

	// nodes maps the keys of elements rendered by this instance to their
	// wrappers; waiting holds keys requested through Node before they
	// existed.
	nodes   map[string]*wrapper
	waiting map[string]bool
}

func (inst *instance) customDiff(name string) bool {
	_, ok := inst.diffs[name]
	return ok
}

// Context is the view of an instance handed to a component or middleware.
// Components and each of their middleware get distinct Contexts that share
// the owning instance.
type Context struct {
	id   string
	inst *instance
	deps map[string]any
}

// ID returns the component instance id, or for middleware the composed id
// "<owner>-<sequence>".
func (c *Context) ID() string { return c.id }

// OwnerID returns the id of the owning component instance.
func (c *Context) OwnerID() string { return c.inst.id }

// Properties returns the owner's current properties.
func (c *Context) Properties() vdom.Props { return c.inst.props }

// Children returns the owner's current children.
func (c *Context) Children() []*vdom.VNode { return c.inst.children }

// Slot returns the named children passed with vdom.VNode.Slot.
func (c *Context) Slot(name string) []*vdom.VNode { return c.inst.slots[name] }

// Use returns the resolved middleware API declared under name.
func (c *Context) Use(name string) any {
	v, ok := c.deps[name]
	if !ok {
		panic(fmt.Sprintf("render: %s does not declare middleware %q", c.id, name))
	}
	return v
}

// Use returns the middleware API declared under name as a T.
func Use[T any](c *Context, name string) T {
	v, _ := c.Use(name).(T)
	return v
}

// Invalidate schedules a re-render of the owning instance. Calls made while
// the instance is receiving new properties only mark it dirty, since it is
// about to render anyway.
func (c *Context) Invalidate() {
	c.inst.r.invalidate(c.inst)
}

// Destroy registers fn to run exactly once when the owning instance is
// removed. Callbacks run in registration order.
func (c *Context) Destroy(fn func()) {
	if c.inst.destroyed {
		return
	}
	c.inst.destroyFns = append(c.inst.destroyFns, fn)
}

// DiffProperty takes over change detection for one property. The first
// registration for a name wins and is immediately called with an empty
// previous map and the current properties; afterwards fn is called on every
// update and may call Invalidate. The default comparison ignores the
// property from then on.
func (c *Context) DiffProperty(name string, fn func(prev, next vdom.Props)) {
	inst := c.inst
	if inst.customDiff(name) {
		return
	}
	if inst.diffs == nil {
		inst.diffs = make(map[string]func(prev, next vdom.Props))
	}
	inst.diffs[name] = fn
	inst.diffNames = append(inst.diffNames, name)
	fn(vdom.Props{}, inst.props)
}

// Node returns the DOM node of the element with the given key rendered by
// the owning instance. When it does not exist yet, Node returns nil and the
// instance is invalidated once the element has been inserted.
func (c *Context) Node(key string) dom.Node {
	inst := c.inst
	if w := inst.nodes[key]; w != nil && !w.removed && w.domNode != nil && w.domNode.Parent() != nil {
		return w.domNode
	}
	if inst.waiting == nil {
		inst.waiting = make(map[string]bool)
	}
	inst.waiting[key] = true
	return nil
}

// Scope returns the value store of the owning instance. Every middleware of
// the instance sees the same store; it is cleared after the Destroy
// callbacks have run.
func (c *Context) Scope() *Scope { return &c.inst.scope }

// Defer pauses the owning instance: until Resume is called it renders
// nothing.
func (c *Context) Defer() { c.inst.paused = true }

// Resume ends a Defer and schedules a re-render.
func (c *Context) Resume() {
	if !c.inst.paused {
		return
	}
	c.inst.paused = false
	c.Invalidate()
}

// Registry returns the renderer's registry, or nil.
func (c *Context) Registry() *Registry { return c.inst.r.opts.registry }

// Scope is a per-instance key/value store.
type Scope struct {
	values map[any]any
}

// Get returns the value stored under key.
func (s *Scope) Get(key any) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *Scope) Set(key, value any) {
	if s.values == nil {
		s.values = make(map[any]any)
	}
	s.values[key] = value
}

// Delete removes key.
func (s *Scope) Delete(key any) {
	delete(s.values, key)
}

// Range calls fn for every stored value in unspecified order. fn must not
// modify the scope.
func (s *Scope) Range(fn func(key, value any)) {
	for k, v := range s.values {
		fn(k, v)
	}
}

// Len returns the number of stored values.
func (s *Scope) Len() int { return len(s.values) }

// Clear removes every value.
func (s *Scope) Clear() {
	clear(s.values)
}

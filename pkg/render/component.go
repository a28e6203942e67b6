package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// Deps declares, by name, the middleware a component or middleware depends
// on.
type Deps map[string]*Middleware

// Factory builds components and middleware that share one dependency set.
type Factory struct {
	deps Deps
}

// Create validates deps and returns a factory for them. It panics when the
// dependency graph contains a nil middleware or a cycle; use Compose to get
// the error instead.
func Create(deps Deps) *Factory {
	f, err := Compose(deps)
	if err != nil {
		panic(err)
	}
	return f
}

// Compose validates deps and returns a factory for them.
func Compose(deps Deps) (*Factory, error) {
	copied := make(Deps, len(deps))
	for name, m := range deps {
		if m == nil {
			return nil, errors.New(errors.ErrMissingDependency).
				WithDetailf("dependency %q is nil", name)
		}
		copied[name] = m
	}
	if err := checkCycles(copied); err != nil {
		return nil, err
	}
	return &Factory{deps: copied}, nil
}

// Component builds a functional component. fn is called with a fresh view of
// the instance every time the instance is dirty.
func (f *Factory) Component(name string, fn func(c *Context) *vdom.VNode) *Component {
	return &Component{name: name, deps: f.deps, render: fn}
}

// Middleware builds a middleware. fn runs once per dependent instance and
// returns the API handed to the dependent.
func (f *Factory) Middleware(name string, fn func(c *Context) any) *Middleware {
	return &Middleware{name: name, deps: f.deps, fn: fn}
}

// Component is a functional component reference.
type Component struct {
	name   string
	deps   Deps
	render func(c *Context) *vdom.VNode
}

// ComponentName implements vdom.ComponentRef.
func (c *Component) ComponentName() string { return c.name }

// Middleware is a headless capability module. It is built like a component
// but returns an API value instead of a descriptor.
type Middleware struct {
	name string
	deps Deps
	fn   func(c *Context) any
}

// Name returns the middleware name.
func (m *Middleware) Name() string { return m.name }

// checkCycles walks the middleware graph depth first and reports the first
// cycle found.
func checkCycles(deps Deps) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Middleware]int)
	var path []string

	var visit func(m *Middleware) error
	visit = func(m *Middleware) error {
		switch state[m] {
		case visiting:
			cycle := append(slices.Clone(path), m.name)
			return errors.New(errors.ErrMiddlewareCycle).
				WithDetail(strings.Join(cycle, " -> "))
		case done:
			return nil
		}
		state[m] = visiting
		path = append(path, m.name)
		for _, name := range sortedDeps(m.deps) {
			dep := m.deps[name]
			if dep == nil {
				return errors.New(errors.ErrMissingDependency).
					WithDetailf("%s: dependency %q is nil", m.name, name)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[m] = done
		return nil
	}

	for _, name := range sortedDeps(deps) {
		if err := visit(deps[name]); err != nil {
			return err
		}
	}
	return nil
}

func sortedDeps(deps Deps) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// resolveMiddleware instantiates deps for inst. Every declared dependency
// gets its own middleware instance with a composed id, and its own
// dependencies are resolved before it.
func (r *Renderer) resolveMiddleware(inst *instance, deps Deps) map[string]any {
	out := make(map[string]any, len(deps))
	for _, name := range sortedDeps(deps) {
		m := deps[name]
		inst.middlewareSeq++
		ctx := &Context{
			id:   fmt.Sprintf("%s-%d", inst.id, inst.middlewareSeq),
			inst: inst,
		}
		ctx.deps = r.resolveMiddleware(inst, m.deps)
		out[name] = m.fn(ctx)
	}
	return out
}

// Widget is implemented by stateful components. Embed Base to satisfy it.
type Widget interface {
	Render() *vdom.VNode
	base() *Base
}

// Attacher is implemented by stateful components that need to run code once
// their DOM has been applied for the first time.
type Attacher interface {
	OnAttach()
}

// Detacher is implemented by stateful components that need to run code when
// they are removed. It runs before the Destroy callbacks.
type Detacher interface {
	OnDetach()
}

// Base is embedded by stateful components. Its methods are usable once the
// component has been instantiated by a renderer.
type Base struct {
	ctx *Context
}

func (b *Base) base() *Base { return b }

// Context returns the instance context.
func (b *Base) Context() *Context { return b.ctx }

// ID returns the instance id.
func (b *Base) ID() string {
	if b.ctx == nil {
		return ""
	}
	return b.ctx.ID()
}

// Properties returns the properties most recently pushed into the instance.
func (b *Base) Properties() vdom.Props {
	if b.ctx == nil {
		return nil
	}
	return b.ctx.Properties()
}

// Children returns the children most recently pushed into the instance.
func (b *Base) Children() []*vdom.VNode {
	if b.ctx == nil {
		return nil
	}
	return b.ctx.Children()
}

// Invalidate schedules a re-render.
func (b *Base) Invalidate() {
	if b.ctx != nil {
		b.ctx.Invalidate()
	}
}

// OnDestroy registers fn to run once when the instance is removed.
func (b *Base) OnDestroy(fn func()) {
	if b.ctx != nil {
		b.ctx.Destroy(fn)
	}
}

// Class is a stateful component reference.
type Class struct {
	name string
	ctor func() Widget
}

// Define returns a stateful component reference. ctor is called once per
// instance.
func Define(name string, ctor func() Widget) *Class {
	return &Class{name: name, ctor: ctor}
}

// ComponentName implements vdom.ComponentRef.
func (c *Class) ComponentName() string { return c.name }

package render

import (
	"slices"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// Registry maps labels to components so that descriptors can reference
// components defined later, for example by lazily loaded code.
//
// A vdom.RegistryKey whose label is not defined yet renders nothing. Once
// the label is defined, every renderer using the registry re-renders the
// instances that referenced it.
type Registry struct {
	entries   map[string]vdom.ComponentRef
	listeners map[int]func(label string)
	seq       int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:   make(map[string]vdom.ComponentRef),
		listeners: make(map[int]func(string)),
	}
}

// Define registers ref under label. ref must be a *Component or a *Class and
// a label can only be defined once.
func (g *Registry) Define(label string, ref vdom.ComponentRef) error {
	switch ref.(type) {
	case *Component, *Class:
	default:
		return errors.Newf(errors.CategoryRender, "registry: cannot define %q as %T", label, ref)
	}
	if _, ok := g.entries[label]; ok {
		return errors.New(errors.ErrDuplicateLabel).WithDetailf("label %q", label)
	}
	g.entries[label] = ref

	ids := make([]int, 0, len(g.listeners))
	for id := range g.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := g.listeners[id]; ok {
			fn(label)
		}
	}
	return nil
}

// Get returns the component registered under label.
func (g *Registry) Get(label string) (vdom.ComponentRef, bool) {
	ref, ok := g.entries[label]
	return ref, ok
}

// Has reports whether label is defined.
func (g *Registry) Has(label string) bool {
	_, ok := g.entries[label]
	return ok
}

// Labels returns the defined labels in sorted order.
func (g *Registry) Labels() []string {
	labels := make([]string, 0, len(g.entries))
	for l := range g.entries {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// OnDefine registers fn to be called after each Define. The returned
// function removes it.
func (g *Registry) OnDefine(fn func(label string)) func() {
	g.seq++
	id := g.seq
	g.listeners[id] = fn
	return func() { delete(g.listeners, id) }
}

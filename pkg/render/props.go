package render

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// reserved keys are interpreted by the renderer and never reach the DOM as
// attributes.
var reserved = map[string]bool{
	"key":            true,
	"class":          true,
	"classes":        true,
	"styles":         true,
	"focus":          true,
	"enterAnimation": true,
	"exitAnimation":  true,
}

// domProperties are written as DOM properties rather than attributes.
var domProperties = map[string]bool{
	"value":         true,
	"checked":       true,
	"selected":      true,
	"indeterminate": true,
	"innerHTML":     true,
	"textContent":   true,
	"scrollTop":     true,
	"scrollLeft":    true,
}

// binding is the listener installed for one event of one node. The listener
// calls fn, so a re-rendered closure of the same function replaces fn without
// touching the DOM.
type binding struct {
	handler  any
	fn       func(dom.Event)
	listener *dom.Listener
}

func isFormControl(tag string) bool {
	switch tag {
	case "input", "textarea", "select":
		return true
	}
	return false
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func isHandler(v any) bool {
	return vdom.HandlerFunc(v) != nil
}

// trackValue records the value the user last typed into a form control.
func (r *Renderer) trackValue(w *wrapper) {
	node := w.domNode
	l := dom.NewListener(func(dom.Event) {
		w.marker = toString(node.Property("value"))
	})
	node.AddEventListener("input", l)
	node.AddEventListener("change", l)
}

// applyProps brings the DOM node of w in line with its descriptor. Deferred
// properties are computed before insertion and again once the batch has
// been applied.
func (r *Renderer) applyProps(w *wrapper, creating bool) {
	next := w.node.Props
	if w.node.Deferred != nil {
		next = next.Merge(w.node.Deferred(false))
	}
	r.patch(w, w.applied, next, creating)
	w.applied = next

	if w.node.Deferred == nil {
		return
	}
	deferred := w.node.Deferred
	r.after = append(r.after, func() {
		if w.removed {
			return
		}
		merged := w.applied.Merge(deferred(true))
		r.patch(w, w.applied, merged, false)
		w.applied = merged
	})
}

// patch applies the difference between prev and next to the node of w.
func (r *Renderer) patch(w *wrapper, prev, next vdom.Props, creating bool) {
	node := w.domNode

	pc := vdom.FlattenClasses([]any{prev["class"], prev["classes"]})
	nc := vdom.FlattenClasses([]any{next["class"], next["classes"]})
	if creating && w.merged {
		pc = toString(node.Property("className"))
	}
	if nc != pc {
		node.SetProperty("className", nc)
	}

	patchStyles(node, styleMap(prev["styles"]), styleMap(next["styles"]))

	keys := make([]string, 0, len(prev)+len(next))
	for k := range prev {
		keys = append(keys, k)
	}
	for k := range next {
		if _, ok := prev[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		if reserved[k] {
			continue
		}
		pv, hadPrev := prev[k]
		nv, hasNext := next[k]
		if (hadPrev && isHandler(pv)) || (hasNext && isHandler(nv)) {
			r.bind(w, strings.TrimPrefix(k, "on"), nv)
			continue
		}
		if k == "value" && isFormControl(w.node.Tag) {
			r.patchValue(w, pv, hadPrev, nv)
			continue
		}
		if hadPrev && hasNext && vdom.Equal(pv, nv) && !(creating && w.merged) {
			continue
		}
		setAttr(node, w.node.Tag, k, nv)
	}

	r.patchFocus(w, prev["focus"], next["focus"], creating)
}

// patchValue writes the value of a form control unless doing so would
// clobber what the user is typing: the DOM is only overwritten when the
// rendered value changed, on first render, or when the DOM no longer holds
// the last typed value.
func (r *Renderer) patchValue(w *wrapper, pv any, hadPrev bool, nv any) {
	node := w.domNode
	want := toString(nv)
	write := func() {
		have := toString(node.Property("value"))
		if have != want && (want != toString(pv) || !hadPrev || have != w.marker) {
			node.SetProperty("value", want)
		}
	}
	if w.node.Tag == "select" {
		// Options are inserted after the select itself.
		r.after = append(r.after, func() {
			if !w.removed {
				write()
			}
		})
		return
	}
	write()
}

func (r *Renderer) patchFocus(w *wrapper, prev, next any, creating bool) {
	focus := false
	switch f := next.(type) {
	case bool:
		was, _ := prev.(bool)
		focus = f && (creating || !was)
	case func() bool:
		focus = f()
	}
	if !focus {
		return
	}
	node := w.domNode
	r.after = append(r.after, func() {
		if !w.removed {
			node.Focus()
		}
	})
}

// bind installs, replaces or removes the listener for event.
func (r *Renderer) bind(w *wrapper, event string, handler any) {
	node := w.domNode
	b := w.listeners[event]
	fn := vdom.HandlerFunc(handler)
	if fn == nil {
		if b != nil {
			node.RemoveEventListener(event, b.listener)
			delete(w.listeners, event)
		}
		return
	}
	if b != nil && sameFunc(b.handler, handler) {
		b.handler = handler
		b.fn = fn
		return
	}
	if b != nil {
		node.RemoveEventListener(event, b.listener)
	}
	b = &binding{handler: handler, fn: fn}
	b.listener = dom.NewListener(func(e dom.Event) { b.fn(e) })
	if w.listeners == nil {
		w.listeners = make(map[string]*binding)
	}
	w.listeners[event] = b
	node.AddEventListener(event, b.listener)
}

// sameFunc reports whether a and b are the same function code. Closures
// created by the same literal compare equal.
func sameFunc(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Func || vb.Kind() != reflect.Func || va.Type() != vb.Type() {
		return false
	}
	return va.Pointer() == vb.Pointer()
}

func setAttr(node dom.Node, tag, name string, v any) {
	switch {
	case domProperties[name] && !(name == "value" && !isFormControl(tag)):
		if v == nil {
			v = propertyZero(name)
		}
		node.SetProperty(name, v)
	case strings.HasPrefix(name, "xlink:"):
		if v == nil || v == false {
			node.RemoveAttribute(name)
			return
		}
		node.SetAttributeNS(dom.NamespaceXLink, name, attrString(v))
	default:
		if v == nil || v == false {
			node.RemoveAttribute(name)
			return
		}
		node.SetAttribute(name, attrString(v))
	}
}

func attrString(v any) string {
	if v == true {
		return ""
	}
	return toString(v)
}

func propertyZero(name string) any {
	switch name {
	case "checked", "selected", "indeterminate":
		return false
	case "scrollTop", "scrollLeft":
		return 0
	default:
		return ""
	}
}

func styleMap(v any) map[string]string {
	switch s := v.(type) {
	case map[string]string:
		return s
	case map[string]any:
		out := make(map[string]string, len(s))
		for k, val := range s {
			out[k] = toString(val)
		}
		return out
	}
	return nil
}

func patchStyles(node dom.Node, prev, next map[string]string) {
	names := make([]string, 0, len(prev)+len(next))
	for name := range prev {
		if _, ok := next[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		node.SetStyle(name, "")
	}

	names = names[:0]
	for name, v := range next {
		if pv, ok := prev[name]; !ok || pv != v {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		node.SetStyle(name, next[name])
	}
}

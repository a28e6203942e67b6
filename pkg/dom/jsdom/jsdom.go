//go:build js && wasm

// Package jsdom adapts the browser DOM to the dom interfaces via syscall/js.
package jsdom

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/vango-dev/canopy/pkg/dom"
)

// nodeKey is the expando property holding the Go-side id of a JS node.
const nodeKey = "__canopyNode"

// Document wraps window.document.
type Document struct {
	doc    js.Value
	nodes  map[int]*Node
	nextID int
}

// NewDocument wraps the global document.
func NewDocument() *Document {
	return &Document{
		doc:   js.Global().Get("document"),
		nodes: make(map[int]*Node),
	}
}

// Wrap returns the canonical Node for a JS node value.
func (d *Document) Wrap(v js.Value) *Node {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	if id := v.Get(nodeKey); id.Type() == js.TypeNumber {
		if n, ok := d.nodes[id.Int()]; ok {
			return n
		}
	}
	d.nextID++
	n := &Node{doc: d, v: v, funcs: make(map[*dom.Listener]js.Func)}
	v.Set(nodeKey, d.nextID)
	d.nodes[d.nextID] = n
	return n
}

func (d *Document) wrap(v js.Value) dom.Node {
	n := d.Wrap(v)
	if n == nil {
		return nil
	}
	return n
}

// CreateElement implements dom.Document.
func (d *Document) CreateElement(tag string) dom.Node {
	return d.wrap(d.doc.Call("createElement", tag))
}

// CreateElementNS implements dom.Document.
func (d *Document) CreateElementNS(namespace, tag string) dom.Node {
	return d.wrap(d.doc.Call("createElementNS", namespace, tag))
}

// CreateTextNode implements dom.Document.
func (d *Document) CreateTextNode(text string) dom.Node {
	return d.wrap(d.doc.Call("createTextNode", text))
}

// Body implements dom.Document.
func (d *Document) Body() dom.Node {
	return d.wrap(d.doc.Get("body"))
}

// QuerySelector returns the first element matching selector.
func (d *Document) QuerySelector(selector string) dom.Node {
	return d.wrap(d.doc.Call("querySelector", selector))
}

// Node wraps a JS DOM node.
type Node struct {
	doc   *Document
	v     js.Value
	funcs map[*dom.Listener]js.Func
}

// Value returns the underlying JS value.
func (n *Node) Value() js.Value { return n.v }

// Type implements dom.Node.
func (n *Node) Type() dom.NodeType { return dom.NodeType(n.v.Get("nodeType").Int()) }

// TagName implements dom.Node.
func (n *Node) TagName() string {
	t := n.v.Get("tagName")
	if t.IsUndefined() || t.IsNull() {
		return ""
	}
	if n.Namespace() == dom.NamespaceHTML {
		return strings.ToLower(t.String())
	}
	return t.String()
}

// Namespace implements dom.Node.
func (n *Node) Namespace() string {
	ns := n.v.Get("namespaceURI")
	if ns.IsNull() || ns.IsUndefined() {
		return ""
	}
	return ns.String()
}

// Parent implements dom.Node.
func (n *Node) Parent() dom.Node { return n.doc.wrap(n.v.Get("parentNode")) }

// FirstChild implements dom.Node.
func (n *Node) FirstChild() dom.Node { return n.doc.wrap(n.v.Get("firstChild")) }

// NextSibling implements dom.Node.
func (n *Node) NextSibling() dom.Node { return n.doc.wrap(n.v.Get("nextSibling")) }

// ChildNodes implements dom.Node.
func (n *Node) ChildNodes() []dom.Node {
	list := n.v.Get("childNodes")
	out := make([]dom.Node, list.Length())
	for i := range out {
		out[i] = n.doc.wrap(list.Index(i))
	}
	return out
}

func jsValue(n dom.Node) any {
	if n == nil {
		return nil
	}
	return n.(*Node).v
}

// InsertBefore implements dom.Node.
func (n *Node) InsertBefore(child, ref dom.Node) {
	n.v.Call("insertBefore", jsValue(child), jsValue(ref))
}

// AppendChild implements dom.Node.
func (n *Node) AppendChild(child dom.Node) { n.v.Call("appendChild", jsValue(child)) }

// RemoveChild implements dom.Node.
func (n *Node) RemoveChild(child dom.Node) { n.v.Call("removeChild", jsValue(child)) }

// Text implements dom.Node.
func (n *Node) Text() string { return n.v.Get("textContent").String() }

// SetText implements dom.Node.
func (n *Node) SetText(text string) {
	if n.Type() == dom.TextNode {
		n.v.Set("data", text)
		return
	}
	n.v.Set("textContent", text)
}

// Attribute implements dom.Node.
func (n *Node) Attribute(name string) (string, bool) {
	if !n.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return n.v.Call("getAttribute", name).String(), true
}

// SetAttribute implements dom.Node.
func (n *Node) SetAttribute(name, value string) { n.v.Call("setAttribute", name, value) }

// SetAttributeNS implements dom.Node.
func (n *Node) SetAttributeNS(namespace, name, value string) {
	n.v.Call("setAttributeNS", namespace, name, value)
}

// RemoveAttribute implements dom.Node.
func (n *Node) RemoveAttribute(name string) { n.v.Call("removeAttribute", name) }

// Property implements dom.Node.
func (n *Node) Property(name string) any {
	v := n.v.Get(name)
	switch v.Type() {
	case js.TypeString:
		return v.String()
	case js.TypeBoolean:
		return v.Bool()
	case js.TypeNumber:
		return v.Float()
	case js.TypeUndefined, js.TypeNull:
		return nil
	default:
		return v
	}
}

// SetProperty implements dom.Node.
func (n *Node) SetProperty(name string, value any) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64, js.Value:
		n.v.Set(name, v)
	default:
		n.v.Set(name, fmt.Sprint(v))
	}
}

// Style implements dom.Node.
func (n *Node) Style(name string) string {
	return n.v.Get("style").Call("getPropertyValue", name).String()
}

// SetStyle implements dom.Node.
func (n *Node) SetStyle(name, value string) {
	if value == "" {
		n.v.Get("style").Call("removeProperty", name)
		return
	}
	n.v.Get("style").Call("setProperty", name, value)
}

// AddEventListener implements dom.Node.
func (n *Node) AddEventListener(event string, l *dom.Listener) {
	if _, ok := n.funcs[l]; ok {
		return
	}
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := dom.Event{Type: event}
		if len(args) > 0 {
			ev.Target = n.doc.wrap(args[0].Get("target"))
			ev.Detail = args[0]
		}
		l.Handle(ev)
		return nil
	})
	n.funcs[l] = fn
	n.v.Call("addEventListener", event, fn)
}

// RemoveEventListener implements dom.Node.
func (n *Node) RemoveEventListener(event string, l *dom.Listener) {
	fn, ok := n.funcs[l]
	if !ok {
		return
	}
	n.v.Call("removeEventListener", event, fn)
	delete(n.funcs, l)
	fn.Release()
}

// Focus implements dom.Node.
func (n *Node) Focus() { n.v.Call("focus") }

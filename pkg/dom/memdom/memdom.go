// Package memdom is an in-memory implementation of the dom interfaces.
//
// It records every mutation it receives so that observers (tests, the remote
// preview server) can replay or count them, dispatches events with bubbling,
// serializes to HTML and parses existing markup for merge mounts.
//
// memdom is not safe for concurrent use. Like a browser document it belongs
// to the single goroutine that renders into it.
package memdom

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/canopy/pkg/dom"
)

// Document is an in-memory dom.Document.
type Document struct {
	body      *Node
	nextID    int
	observers map[int]func(Mutation)
	obsSeq    int
	focused   *Node
}

// NewDocument creates an empty document with a <body> element.
func NewDocument() *Document {
	d := &Document{observers: make(map[int]func(Mutation))}
	d.body = d.newNode(dom.ElementNode, "body", dom.NamespaceHTML)
	return d
}

func (d *Document) newNode(t dom.NodeType, tag, ns string) *Node {
	d.nextID++
	return &Node{
		doc:       d,
		id:        d.nextID,
		typ:       t,
		tag:       tag,
		ns:        ns,
		props:     make(map[string]any),
		listeners: make(map[string][]*dom.Listener),
	}
}

// CreateElement implements dom.Document.
func (d *Document) CreateElement(tag string) dom.Node {
	return d.newNode(dom.ElementNode, strings.ToLower(tag), dom.NamespaceHTML)
}

// CreateElementNS implements dom.Document.
func (d *Document) CreateElementNS(namespace, tag string) dom.Node {
	if namespace == dom.NamespaceHTML || namespace == "" {
		return d.CreateElement(tag)
	}
	return d.newNode(dom.ElementNode, tag, namespace)
}

// CreateTextNode implements dom.Document.
func (d *Document) CreateTextNode(text string) dom.Node {
	n := d.newNode(dom.TextNode, "", "")
	n.text = text
	return n
}

// Body implements dom.Document.
func (d *Document) Body() dom.Node {
	return d.body
}

// BodyNode returns the body as a concrete *Node.
func (d *Document) BodyNode() *Node {
	return d.body
}

// Focused returns the node that last received focus.
func (d *Document) Focused() *Node {
	return d.focused
}

// Observe registers fn for every mutation applied to nodes of this document.
// The returned function removes the observer.
func (d *Document) Observe(fn func(Mutation)) func() {
	d.obsSeq++
	id := d.obsSeq
	d.observers[id] = fn
	return func() { delete(d.observers, id) }
}

func (d *Document) record(m Mutation) {
	if len(d.observers) == 0 {
		return
	}
	ids := make([]int, 0, len(d.observers))
	for id := range d.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		d.observers[id](m)
	}
}

// NodeByID finds a node attached to the body by its numeric id.
func (d *Document) NodeByID(id int) *Node {
	var found *Node
	d.body.walk(func(n *Node) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}

type attribute struct {
	ns    string
	name  string
	value string
}

type style struct {
	name  string
	value string
}

// Node is an in-memory dom.Node.
type Node struct {
	doc       *Document
	id        int
	typ       dom.NodeType
	tag       string
	ns        string
	text      string
	attrs     []attribute
	styles    []style
	props     map[string]any
	parent    *Node
	children  []*Node
	listeners map[string][]*dom.Listener
}

func wrap(n *Node) dom.Node {
	if n == nil {
		return nil
	}
	return n
}

func unwrap(n dom.Node) *Node {
	if n == nil {
		return nil
	}
	m, ok := n.(*Node)
	if !ok {
		panic(fmt.Sprintf("memdom: foreign node %T", n))
	}
	return m
}

// ID returns the document-unique id of the node.
func (n *Node) ID() int { return n.id }

// Type implements dom.Node.
func (n *Node) Type() dom.NodeType { return n.typ }

// TagName implements dom.Node.
func (n *Node) TagName() string { return n.tag }

// Namespace implements dom.Node.
func (n *Node) Namespace() string { return n.ns }

// Parent implements dom.Node.
func (n *Node) Parent() dom.Node { return wrap(n.parent) }

// FirstChild implements dom.Node.
func (n *Node) FirstChild() dom.Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// NextSibling implements dom.Node.
func (n *Node) NextSibling() dom.Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// ChildNodes implements dom.Node.
func (n *Node) ChildNodes() []dom.Node {
	out := make([]dom.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Children returns the concrete children.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// InsertBefore implements dom.Node.
func (n *Node) InsertBefore(child, ref dom.Node) {
	c := unwrap(child)
	r := unwrap(ref)
	if c == r {
		return
	}
	if c.parent != nil {
		c.parent.detach(c)
	}
	idx := len(n.children)
	if r != nil {
		idx = n.indexOf(r)
		if idx < 0 {
			panic("memdom: reference node is not a child of this node")
		}
	}
	n.children = slices.Insert(n.children, idx, c)
	c.parent = n
	m := Mutation{Kind: MutationInsert, Target: c.id, Parent: n.id, HTML: c.OuterHTML()}
	if r != nil {
		m.Before = r.id
	}
	n.doc.record(m)
}

// AppendChild implements dom.Node.
func (n *Node) AppendChild(child dom.Node) {
	n.InsertBefore(child, nil)
}

// RemoveChild implements dom.Node.
func (n *Node) RemoveChild(child dom.Node) {
	c := unwrap(child)
	if c.parent != n {
		panic("memdom: node to remove is not a child of this node")
	}
	n.detach(c)
	n.doc.record(Mutation{Kind: MutationRemove, Target: c.id, Parent: n.id})
}

func (n *Node) detach(c *Node) {
	if i := n.indexOf(c); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	c.parent = nil
}

// Text implements dom.Node.
func (n *Node) Text() string {
	if n.typ == dom.TextNode {
		return n.text
	}
	var b strings.Builder
	n.walk(func(c *Node) bool {
		if c.typ == dom.TextNode {
			b.WriteString(c.text)
		}
		return true
	})
	return b.String()
}

// SetText implements dom.Node.
func (n *Node) SetText(text string) {
	if n.typ == dom.TextNode {
		n.text = text
		n.doc.record(Mutation{Kind: MutationText, Target: n.id, Value: text})
		return
	}
	for _, c := range slices.Clone(n.children) {
		n.RemoveChild(c)
	}
	if text != "" {
		n.AppendChild(n.doc.CreateTextNode(text))
	}
}

// Attribute implements dom.Node.
func (n *Node) Attribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// SetAttribute implements dom.Node.
func (n *Node) SetAttribute(name, value string) {
	n.SetAttributeNS("", name, value)
}

// SetAttributeNS implements dom.Node.
func (n *Node) SetAttributeNS(namespace, name, value string) {
	for i, a := range n.attrs {
		if a.name == name {
			n.attrs[i].value = value
			n.attrs[i].ns = namespace
			n.doc.record(Mutation{Kind: MutationAttr, Target: n.id, Name: name, Value: value})
			return
		}
	}
	n.attrs = append(n.attrs, attribute{ns: namespace, name: name, value: value})
	n.doc.record(Mutation{Kind: MutationAttr, Target: n.id, Name: name, Value: value})
}

// AttributeNamespace returns the namespace an attribute was set with.
func (n *Node) AttributeNamespace(name string) string {
	for _, a := range n.attrs {
		if a.name == name {
			return a.ns
		}
	}
	return ""
}

// RemoveAttribute implements dom.Node.
func (n *Node) RemoveAttribute(name string) {
	for i, a := range n.attrs {
		if a.name == name {
			n.attrs = slices.Delete(n.attrs, i, i+1)
			n.doc.record(Mutation{Kind: MutationRemoveAttr, Target: n.id, Name: name})
			return
		}
	}
}

// Property implements dom.Node. className, id and textContent reflect the
// corresponding attribute or content; value falls back to the value
// attribute until it is first written.
func (n *Node) Property(name string) any {
	switch name {
	case "className":
		v, _ := n.Attribute("class")
		return v
	case "id":
		v, _ := n.Attribute("id")
		return v
	case "textContent":
		return n.Text()
	case "innerHTML":
		return n.InnerHTML()
	}
	if v, ok := n.props[name]; ok {
		return v
	}
	if name == "value" {
		v, _ := n.Attribute("value")
		return v
	}
	return nil
}

// SetProperty implements dom.Node.
func (n *Node) SetProperty(name string, value any) {
	switch name {
	case "className":
		s := fmt.Sprint(value)
		if value == nil || s == "" {
			n.RemoveAttribute("class")
			return
		}
		n.SetAttribute("class", s)
		return
	case "id":
		n.SetAttribute("id", fmt.Sprint(value))
		return
	case "textContent":
		n.SetText(fmt.Sprint(value))
		return
	case "innerHTML":
		for _, c := range slices.Clone(n.children) {
			n.RemoveChild(c)
		}
		for _, c := range n.doc.ParseFragment(fmt.Sprint(value)) {
			n.AppendChild(c)
		}
		return
	}
	if value == nil {
		delete(n.props, name)
	} else {
		n.props[name] = value
	}
	n.doc.record(Mutation{Kind: MutationProp, Target: n.id, Name: name, Value: fmt.Sprint(value)})
}

// Style implements dom.Node.
func (n *Node) Style(name string) string {
	for _, s := range n.styles {
		if s.name == name {
			return s.value
		}
	}
	return ""
}

// SetStyle implements dom.Node. An empty value removes the declaration.
func (n *Node) SetStyle(name, value string) {
	for i, s := range n.styles {
		if s.name == name {
			if value == "" {
				n.styles = slices.Delete(n.styles, i, i+1)
			} else {
				n.styles[i].value = value
			}
			n.doc.record(Mutation{Kind: MutationStyle, Target: n.id, Name: name, Value: value})
			return
		}
	}
	if value == "" {
		return
	}
	n.styles = append(n.styles, style{name: name, value: value})
	n.doc.record(Mutation{Kind: MutationStyle, Target: n.id, Name: name, Value: value})
}

// AddEventListener implements dom.Node.
func (n *Node) AddEventListener(event string, l *dom.Listener) {
	if slices.Contains(n.listeners[event], l) {
		return
	}
	n.listeners[event] = append(n.listeners[event], l)
}

// RemoveEventListener implements dom.Node.
func (n *Node) RemoveEventListener(event string, l *dom.Listener) {
	ls := n.listeners[event]
	if i := slices.Index(ls, l); i >= 0 {
		n.listeners[event] = slices.Delete(ls, i, i+1)
	}
}

// ListenerCount returns the number of listeners registered for event.
func (n *Node) ListenerCount(event string) int {
	return len(n.listeners[event])
}

// Focus implements dom.Node.
func (n *Node) Focus() {
	n.doc.focused = n
}

// Dispatch delivers an event of the given type to n and bubbles it to the
// ancestors of n.
func (n *Node) Dispatch(eventType string) {
	ev := dom.Event{Type: eventType, Target: n}
	for cur := n; cur != nil; cur = cur.parent {
		for _, l := range slices.Clone(cur.listeners[eventType]) {
			l.Handle(ev)
		}
	}
}

// Input simulates a user typing value into a form control.
func (n *Node) Input(value string) {
	n.props["value"] = value
	n.Dispatch("input")
}

// Query returns the first descendant (or n itself) matching tag.
func (n *Node) Query(tag string) *Node {
	var found *Node
	n.walk(func(c *Node) bool {
		if c.typ == dom.ElementNode && c.tag == tag {
			found = c
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every descendant (and n itself) matching tag, in document order.
func (n *Node) QueryAll(tag string) []*Node {
	var out []*Node
	n.walk(func(c *Node) bool {
		if c.typ == dom.ElementNode && c.tag == tag {
			out = append(out, c)
		}
		return true
	})
	return out
}

// walk visits n and its descendants depth-first until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

package vdom

import (
	"fmt"

	"github.com/vango-dev/canopy/pkg/dom"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Component invocation
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// VNode is an immutable node descriptor.
type VNode struct {
	Kind     VKind         // Node type
	Tag      string        // Element tag name (e.g., "div")
	Props    Props         // Attributes, properties and event handlers
	Deferred DeferredProps // Properties computed around insertion
	Children []*VNode      // Child nodes
	Key      string        // Reconciliation key
	Text     string        // For KindText
	Comp     ComponentRef  // For KindComponent
	Slots    map[string][]*VNode

	// DOMNode is an existing node to adopt instead of creating one.
	DOMNode dom.Node
}

// Props holds attributes, properties and event handlers.
type Props map[string]any

// Clone returns a shallow copy of p. A nil map clones to an empty one.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p overlaid with other.
func (p Props) Merge(other Props) Props {
	out := p.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// DeferredProps computes properties twice: once before the element is
// inserted (afterInsert false) and once after the DOM batch that inserted or
// updated it has been applied (afterInsert true).
type DeferredProps func(afterInsert bool) Props

// ComponentRef identifies a component. Pointers returned by the render
// package and RegistryKey values implement it; references compare with ==.
type ComponentRef interface {
	ComponentName() string
}

// RegistryKey references a component registered under a label and resolved
// at render time.
type RegistryKey string

// ComponentName implements ComponentRef.
func (k RegistryKey) ComponentName() string { return string(k) }

// Registered returns a reference to the component registered as label.
func Registered(label string) RegistryKey { return RegistryKey(label) }

// Attr represents a single attribute or property.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // func(dom.Event) or func()
}

// KeyOf returns the reconciliation key of n, or "" when it has none.
func KeyOf(n *VNode) string {
	if n == nil {
		return ""
	}
	if n.Key != "" {
		return n.Key
	}
	if n.Props == nil {
		return ""
	}
	switch k := n.Props["key"].(type) {
	case nil:
		return ""
	case string:
		return k
	default:
		return fmt.Sprint(k)
	}
}

// Comp creates a component descriptor.
func Comp(ref ComponentRef, props Props, children ...*VNode) *VNode {
	if props == nil {
		props = Props{}
	}
	node := &VNode{
		Kind:  KindComponent,
		Comp:  ref,
		Props: props,
	}
	node.Key = KeyOf(node)
	for _, c := range children {
		if c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

// Slot returns a copy of a component descriptor carrying a named child list.
func (n *VNode) Slot(name string, children ...*VNode) *VNode {
	cp := *n
	cp.Slots = make(map[string][]*VNode, len(n.Slots)+1)
	for k, v := range n.Slots {
		cp.Slots[k] = v
	}
	cp.Slots[name] = children
	return &cp
}

// Adopt creates an element descriptor for an existing DOM node. The node is
// inserted as is and receives the given properties and children.
func Adopt(node dom.Node, args ...any) *VNode {
	v := createElement(node.TagName(), args)
	v.DOMNode = node
	return v
}

// Deferred creates an attribute carrying a deferred properties callback.
func Deferred(fn DeferredProps) Attr {
	return Attr{Key: deferredKey, Value: fn}
}

const deferredKey = "\x00deferred"

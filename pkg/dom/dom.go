// Package dom defines the document model the renderer reconciles against.
//
// The renderer never talks to a browser directly. It drives a Document and
// the Nodes it creates through the interfaces in this package, which keeps
// the reconciliation engine independent of the environment it runs in.
//
// Two implementations ship with canopy:
//
//   - memdom: a pure Go in-memory document, used by tests, the CLI and the
//     remote preview server.
//   - jsdom: a js/wasm adapter over the browser DOM via syscall/js.
//
// # Identity
//
// Node values are compared with ==. Implementations must hand out a single
// canonical Node value per underlying node.
package dom

// NodeType distinguishes element nodes from text nodes.
type NodeType uint8

const (
	ElementNode NodeType = 1
	TextNode    NodeType = 3
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	default:
		return "Unknown"
	}
}

// Well-known namespaces.
const (
	NamespaceHTML  = "http://www.w3.org/1999/xhtml"
	NamespaceSVG   = "http://www.w3.org/2000/svg"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
)

// Document creates nodes.
type Document interface {
	CreateElement(tag string) Node
	CreateElementNS(namespace, tag string) Node
	CreateTextNode(text string) Node

	// Body returns the default mount container, or nil if the document has none.
	Body() Node
}

// Node is a single element or text node.
type Node interface {
	Type() NodeType

	// TagName returns the lower-case tag name for elements and "" for text.
	TagName() string
	Namespace() string

	Parent() Node
	FirstChild() Node
	NextSibling() Node
	ChildNodes() []Node

	// InsertBefore inserts child before ref. A nil ref appends. Inserting a
	// node that already has a parent moves it.
	InsertBefore(child, ref Node)
	AppendChild(child Node)
	RemoveChild(child Node)

	// Text returns the data of a text node.
	Text() string
	SetText(text string)

	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
	SetAttributeNS(namespace, name, value string)
	RemoveAttribute(name string)

	// Property reads a DOM property (value, checked, className, ...).
	Property(name string) any
	SetProperty(name string, value any)

	Style(name string) string
	SetStyle(name, value string)

	AddEventListener(event string, l *Listener)
	RemoveEventListener(event string, l *Listener)

	Focus()
}

// Event is delivered to listeners.
type Event struct {
	Type   string
	Target Node

	// Detail carries implementation specific data (the js.Value of a browser
	// event, for example).
	Detail any
}

// Listener is the unit of event registration. Listeners are compared by
// pointer, so the same *Listener must be passed to RemoveEventListener.
type Listener struct {
	Handle func(Event)
}

// NewListener wraps fn in a Listener.
func NewListener(fn func(Event)) *Listener {
	return &Listener{Handle: fn}
}

// Contains reports whether node is root or a descendant of root.
func Contains(root, node Node) bool {
	for n := node; n != nil; n = n.Parent() {
		if n == root {
			return true
		}
	}
	return false
}

// IndexOf returns the position of child among parent's children, or -1.
func IndexOf(parent, child Node) int {
	for i, c := range parent.ChildNodes() {
		if c == child {
			return i
		}
	}
	return -1
}

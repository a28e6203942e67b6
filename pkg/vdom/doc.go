// Package vdom provides the node descriptors rendered by canopy.
//
// A descriptor is plain data: it describes either a DOM element or a
// component invocation and is never mutated by the renderer. Application
// code produces descriptors on every render and the renderer reconciles
// them against what is already on the page.
//
// # Core Types
//
// VNode is the fundamental building block. Its Kind discriminates elements,
// text, fragments (several nodes without a wrapper) and components. Props
// holds attributes, DOM properties, event handlers and the special keys
// "key", "classes" and "styles".
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	    OnClick(handler),
//	)
//
// Components are invoked with Comp:
//
//	Comp(TodoItem, Props{"key": id, "label": label})
//
// # Identity
//
// Siblings are matched by tag (or component reference) and key. Give a key
// to every item of a list whose order can change.
package vdom

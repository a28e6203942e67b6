package vdom

import (
	"fmt"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Classes sets the "classes" property. Values may be strings, []string,
// map[string]bool, []any, nil or bools; see FlattenClasses.
func Classes(classes ...any) Attr { return attr("classes", classes) }

// Styles sets the "styles" property, applied one CSS property at a time.
func Styles(styles map[string]string) Attr { return attr("styles", styles) }

// Key sets the reconciliation key.
// The key is converted to a string using fmt.Sprintf.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// XlinkHref sets xlink:href in the XLink namespace (SVG <use>).
func XlinkHref(url string) Attr { return attr("xlink:href", url) }

// Form input attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value property. The renderer avoids clobbering text the
// user is typing; see the render package.
func Value(value string) Attr { return attr("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Checked sets the checked property.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Focus focuses the element after it has been applied when cond is true.
func Focus(cond bool) Attr { return attr("focus", cond) }

// Media attributes

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Width sets the width attribute.
func Width(w int) Attr { return attr("width", w) }

// Height sets the height attribute.
func Height(h int) Attr { return attr("height", h) }

// SVG presentation attributes

// ViewBox sets the viewBox attribute.
func ViewBox(box string) Attr { return attr("viewBox", box) }

// D sets the d attribute of a path.
func D(path string) Attr { return attr("d", path) }

// Fill sets the fill attribute.
func Fill(color string) Attr { return attr("fill", color) }

// Animation attributes

// EnterAnimation names a CSS animation class (string) or supplies a
// func(dom.Node, Props) run when the element is inserted.
func EnterAnimation(anim any) Attr { return attr("enterAnimation", anim) }

// ExitAnimation names a CSS animation class (string) or supplies a
// func(dom.Node, func(), Props) that must call its callback to remove the node.
func ExitAnimation(anim any) Attr { return attr("exitAnimation", anim) }

// Conditional attributes

// ClassIf adds a class conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr("class", class)
	}
	return Attr{} // Empty attr, will be ignored
}

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// FlattenClasses joins a "classes" value into one class string. Strings are
// split on whitespace and deduplicated, map[string]bool contributes its true
// keys in sorted order, and nil, empty strings and bools are dropped.
func FlattenClasses(v any) string {
	var out []string
	seen := make(map[string]bool)
	var add func(any)
	add = func(v any) {
		switch c := v.(type) {
		case nil, bool:
		case string:
			for _, f := range strings.Fields(c) {
				if !seen[f] {
					seen[f] = true
					out = append(out, f)
				}
			}
		case []string:
			for _, s := range c {
				add(s)
			}
		case []any:
			for _, s := range c {
				add(s)
			}
		case map[string]bool:
			for _, k := range sortedKeys(c) {
				if c[k] {
					add(k)
				}
			}
		default:
			add(fmt.Sprint(c))
		}
	}
	add(v)
	return strings.Join(out, " ")
}

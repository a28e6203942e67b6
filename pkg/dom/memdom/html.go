package memdom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/canopy/pkg/dom"
)

// voidElements are elements serialized without a closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IDAttribute carries node ids in AnnotatedHTML output.
const IDAttribute = "data-cid"

// OuterHTML serializes n and its descendants.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.writeHTML(&b, false)
	return b.String()
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.children {
		c.writeHTML(&b, false)
	}
	return b.String()
}

// AnnotatedHTML is InnerHTML with the id of every element written to an
// IDAttribute attribute, so a remote copy can address nodes by id.
func (n *Node) AnnotatedHTML() string {
	var b strings.Builder
	for _, c := range n.children {
		c.writeHTML(&b, true)
	}
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder, ids bool) {
	if n.typ == dom.TextNode {
		b.WriteString(escapeHTML(n.text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.tag)
	if ids {
		b.WriteString(" " + IDAttribute + `="`)
		b.WriteString(strconv.Itoa(n.id))
		b.WriteByte('"')
	}
	for _, a := range n.attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.value))
		b.WriteByte('"')
	}
	if len(n.styles) > 0 {
		b.WriteString(` style="`)
		for i, s := range n.styles {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(escapeAttr(s.name + ": " + s.value + ";"))
		}
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[n.tag] && n.ns == dom.NamespaceHTML {
		return
	}
	for _, c := range n.children {
		c.writeHTML(b, ids)
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
}

// escapeHTML escapes text for inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for inclusion in a double-quoted attribute value.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// ParseFragment parses markup as the content of a <body> element and returns
// detached nodes owned by d. Whitespace-only text between elements is kept,
// the way a browser keeps it.
func (d *Document) ParseFragment(markup string) []*Node {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		// x/net/html only fails on reader errors, which a strings.Reader never returns.
		return nil
	}
	out := make([]*Node, 0, len(parsed))
	for _, p := range parsed {
		if n := d.convert(p, dom.NamespaceHTML); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// SetBodyHTML replaces the body content with parsed markup, as a server
// rendered page would arrive.
func (d *Document) SetBodyHTML(markup string) {
	d.body.children = nil
	for _, n := range d.ParseFragment(markup) {
		n.parent = d.body
		d.body.children = append(d.body.children, n)
	}
}

func (d *Document) convert(p *html.Node, parentNS string) *Node {
	switch p.Type {
	case html.TextNode:
		n := d.newNode(dom.TextNode, "", "")
		n.text = p.Data
		return n
	case html.ElementNode:
		ns := parentNS
		switch p.Namespace {
		case "svg":
			ns = dom.NamespaceSVG
		case "":
			ns = dom.NamespaceHTML
		}
		n := d.newNode(dom.ElementNode, p.Data, ns)
		for _, a := range p.Attr {
			name := a.Key
			attrNS := ""
			if a.Namespace == "xlink" {
				name = "xlink:" + a.Key
				attrNS = dom.NamespaceXLink
			}
			if name == "style" {
				n.parseStyle(a.Val)
				continue
			}
			n.attrs = append(n.attrs, attribute{ns: attrNS, name: name, value: a.Val})
		}
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if child := d.convert(c, ns); child != nil {
				child.parent = n
				n.children = append(n.children, child)
			}
		}
		return n
	default:
		return nil
	}
}

func (n *Node) parseStyle(decl string) {
	for _, part := range strings.Split(decl, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name != "" && value != "" {
			n.styles = append(n.styles, style{name: name, value: value})
		}
	}
}

package memdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/canopy/pkg/dom"
)

func TestInsertBefore(t *testing.T) {
	doc := NewDocument()
	body := doc.BodyNode()
	a := doc.CreateElement("a")
	b := doc.CreateElement("b")
	c := doc.CreateElement("c")

	body.AppendChild(a)
	body.AppendChild(c)
	body.InsertBefore(b, c)

	if got := body.InnerHTML(); got != "<a></a><b></b><c></c>" {
		t.Errorf("InnerHTML() = %q", got)
	}

	// Moving an attached node detaches it first.
	body.InsertBefore(c, a)
	if got := body.InnerHTML(); got != "<c></c><a></a><b></b>" {
		t.Errorf("after move InnerHTML() = %q", got)
	}
	if a.NextSibling() != b {
		t.Error("a.NextSibling() != b")
	}
	if b.NextSibling() != nil {
		t.Error("b.NextSibling() should be nil")
	}
}

func TestRemoveChildPanicsForStranger(t *testing.T) {
	doc := NewDocument()
	defer func() {
		if recover() == nil {
			t.Error("RemoveChild of a detached node did not panic")
		}
	}()
	doc.BodyNode().RemoveChild(doc.CreateElement("p"))
}

func TestAttributesAndProperties(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("INPUT").(*Node)

	if n.TagName() != "input" {
		t.Errorf("TagName() = %q, want input", n.TagName())
	}

	n.SetAttribute("value", "initial")
	if got := n.Property("value"); got != "initial" {
		t.Errorf("value before write = %v, want initial", got)
	}
	n.SetProperty("value", "typed")
	if got := n.Property("value"); got != "typed" {
		t.Errorf("value after write = %v, want typed", got)
	}

	n.SetProperty("className", "a b")
	if v, _ := n.Attribute("class"); v != "a b" {
		t.Errorf("class = %q, want 'a b'", v)
	}
	n.SetProperty("className", "")
	if _, ok := n.Attribute("class"); ok {
		t.Error("empty className should remove the class attribute")
	}

	n.SetAttributeNS(dom.NamespaceXLink, "xlink:href", "#i")
	if ns := n.AttributeNamespace("xlink:href"); ns != dom.NamespaceXLink {
		t.Errorf("namespace = %q, want xlink", ns)
	}
	n.RemoveAttribute("xlink:href")
	if _, ok := n.Attribute("xlink:href"); ok {
		t.Error("attribute still present after RemoveAttribute")
	}
}

func TestStyles(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("div").(*Node)
	n.SetStyle("color", "red")
	n.SetStyle("margin", "0")
	n.SetStyle("color", "")

	if n.Style("color") != "" {
		t.Errorf("color = %q, want removed", n.Style("color"))
	}
	if got := n.OuterHTML(); got != `<div style="margin: 0;"></div>` {
		t.Errorf("OuterHTML() = %q", got)
	}
}

func TestDispatchBubbles(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("div").(*Node)
	inner := doc.CreateElement("button").(*Node)
	outer.AppendChild(inner)

	var order []string
	outer.AddEventListener("click", dom.NewListener(func(e dom.Event) {
		order = append(order, "outer")
		if e.Target != dom.Node(inner) {
			t.Error("Target should be the dispatching node")
		}
	}))
	l := dom.NewListener(func(dom.Event) { order = append(order, "inner") })
	inner.AddEventListener("click", l)
	inner.AddEventListener("click", l)

	inner.Dispatch("click")
	if diff := cmp.Diff([]string{"inner", "outer"}, order); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}
	if inner.ListenerCount("click") != 1 {
		t.Errorf("ListenerCount = %d, want 1", inner.ListenerCount("click"))
	}

	inner.RemoveEventListener("click", l)
	if inner.ListenerCount("click") != 0 {
		t.Errorf("ListenerCount after remove = %d, want 0", inner.ListenerCount("click"))
	}
}

func TestRecorder(t *testing.T) {
	doc := NewDocument()
	rec := Record(doc)
	defer rec.Stop()

	p := doc.CreateElement("p")
	doc.Body().AppendChild(p)
	p.SetAttribute("id", "x")
	p.SetText("hello")
	doc.Body().RemoveChild(p)

	if got := rec.Count(MutationInsert); got != 2 {
		t.Errorf("inserts = %d, want 2", got)
	}
	if got := rec.Count(MutationRemove); got != 1 {
		t.Errorf("removes = %d, want 1", got)
	}
	if got := rec.Count(MutationAttr); got != 1 {
		t.Errorf("attrs = %d, want 1", got)
	}

	rec.Reset()
	rec.Stop()
	doc.Body().AppendChild(p)
	if len(rec.Mutations) != 0 {
		t.Errorf("recorded %d mutations after Stop", len(rec.Mutations))
	}
}

func TestTextAndQuery(t *testing.T) {
	doc := NewDocument()
	doc.SetBodyHTML(`<ul><li>one</li><li>two</li></ul>`)
	body := doc.BodyNode()

	if got := body.Text(); got != "onetwo" {
		t.Errorf("Text() = %q, want onetwo", got)
	}
	if got := len(body.QueryAll("li")); got != 2 {
		t.Errorf("QueryAll(li) = %d, want 2", got)
	}
	li := body.Query("li")
	if doc.NodeByID(li.ID()) != li {
		t.Error("NodeByID did not find the node")
	}
	li.Input("x")
	if li.Property("value") != "x" {
		t.Errorf("value = %v, want x", li.Property("value"))
	}
}

func TestFocus(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("input")
	n.Focus()
	if doc.Focused() != n {
		t.Error("Focused() did not return the focused node")
	}
}

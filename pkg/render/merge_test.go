package render

import (
	"strings"
	"testing"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/vdom"
)

func TestMergeAdoptsExistingMarkup(t *testing.T) {
	doc := memdom.NewDocument()
	doc.SetBodyHTML(`<div id="app"><P>hello</P><span>stale</span></div>`)
	app := doc.BodyNode().Query("div")
	p := doc.BodyNode().Query("p")
	text := p.Children()[0]

	clicks := 0
	item := Create(nil).Component("Item", func(*Context) *vdom.VNode {
		return vdom.P(vdom.OnClick(func() { clicks++ }), "hello")
	})
	r := New(doc, func() *vdom.VNode {
		return vdom.Div(vdom.ID("app"), vdom.Comp(item, nil), vdom.Em("new"))
	}, WithSync(true), WithMerge(true))
	if err := r.Mount(); err != nil {
		t.Fatal(err)
	}

	if got, want := doc.BodyNode().InnerHTML(), `<div id="app"><p>hello</p><em>new</em></div>`; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if doc.BodyNode().Query("div") != app || doc.BodyNode().Query("p") != p || p.Children()[0] != text {
		t.Error("existing nodes were not adopted")
	}
	p.Dispatch("click")
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1 (listener bound to adopted node)", clicks)
	}
}

func TestMergeFixesText(t *testing.T) {
	doc := memdom.NewDocument()
	doc.SetBodyHTML(`<h1>Old title</h1>`)
	h1 := doc.BodyNode().Query("h1")

	r := New(doc, func() *vdom.VNode { return vdom.H1("New title") }, WithSync(true), WithMerge(true))
	if err := r.Mount(); err != nil {
		t.Fatal(err)
	}
	if doc.BodyNode().Query("h1") != h1 {
		t.Error("h1 was not adopted")
	}
	if got := h1.Text(); got != "New title" {
		t.Errorf("text = %q, want %q", got, "New title")
	}
}

func TestMergeMismatchLogged(t *testing.T) {
	var buf strings.Builder
	doc := memdom.NewDocument()
	doc.SetBodyHTML(`<section></section>`)

	r := New(doc, func() *vdom.VNode { return vdom.Article() },
		WithSync(true), WithMerge(true), WithDebug(true), WithLogger(newTestLogger(&buf)))
	if err := r.Mount(); err != nil {
		t.Fatal(err)
	}
	if got := doc.BodyNode().InnerHTML(); got != "<article></article>" {
		t.Errorf("html = %q", got)
	}
	if !strings.Contains(buf.String(), errors.ErrMergeMismatch) {
		t.Errorf("log = %q, want %s", buf.String(), errors.ErrMergeMismatch)
	}
}

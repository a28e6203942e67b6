// Package demo is a small todo app used by the canopy CLI and the dev
// server.
package demo

import (
	"fmt"

	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/middleware"
	"github.com/vango-dev/canopy/pkg/render"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// Todo is one list entry.
type Todo struct {
	ID    int
	Title string
	Done  bool
}

// Seed is the list every new app starts with.
var Seed = []Todo{
	{ID: 1, Title: "Write the diff engine", Done: true},
	{ID: 2, Title: "Wire the scheduler"},
	{ID: 3, Title: "Ship canopy"},
}

// App holds the registry of one app. Component state lives in the
// component instances, so two Apps never share it.
type App struct {
	Title    string
	registry *render.Registry
}

// New returns an app with its footer registered under "footer".
func New() *App {
	reg := render.NewRegistry()
	if err := reg.Define("footer", Footer); err != nil {
		panic(err)
	}
	return &App{Title: "canopy todos", registry: reg}
}

// Root renders the whole app.
func (a *App) Root() *vdom.VNode {
	return vdom.Main(vdom.Class("app"),
		vdom.Comp(Header, vdom.Props{"title": a.Title}),
		vdom.Comp(TodoList, vdom.Props{"seed": Seed}),
		vdom.Comp(vdom.Registered("footer"), nil),
	)
}

// RenderOptions returns the options a renderer of this app needs.
func (a *App) RenderOptions() []render.Option {
	return []render.Option{render.WithRegistry(a.registry)}
}

// Registry returns the app registry.
func (a *App) Registry() *render.Registry { return a.registry }

type header struct {
	render.Base
	dark bool
}

func (h *header) Render() *vdom.VNode {
	title, _ := h.Properties()["title"].(string)
	return vdom.Header(
		vdom.Classes("header", map[string]bool{"dark": h.dark}),
		vdom.H1(title),
		vdom.Button(vdom.Key("theme"), vdom.OnClick(func() {
			h.dark = !h.dark
			h.Invalidate()
		}), vdom.Text(themeLabel(h.dark))),
	)
}

func themeLabel(dark bool) string {
	if dark {
		return "Light"
	}
	return "Dark"
}

// Header is the stateful title bar with a theme toggle.
var Header = render.Define("Header", func() render.Widget { return &header{} })

// Footer is resolved through the registry.
var Footer = render.Create(nil).Component("Footer", func(*render.Context) *vdom.VNode {
	return vdom.Footer(vdom.Small("Rendered by canopy"))
})

// TodoList keeps its entries in the cache middleware. The "seed" property
// is read once, on the first render.
var TodoList = render.Create(render.Deps{"cache": middleware.Cache}).
	Component("TodoList", func(c *render.Context) *vdom.VNode {
		cache := render.Use[*middleware.CacheAPI](c, "cache")
		todos := cache.GetOrSet("todos", func() any {
			seed, _ := c.Properties()["seed"].([]Todo)
			return append([]Todo(nil), seed...)
		}).([]Todo)
		draft, _ := cache.Get("draft").(string)

		update := func(next []Todo) {
			cache.Set("todos", next)
			c.Invalidate()
		}
		add := func() {
			if draft == "" {
				return
			}
			next := 1
			for _, t := range todos {
				next = max(next, t.ID+1)
			}
			cache.Set("draft", "")
			update(append(todos, Todo{ID: next, Title: draft}))
		}

		remaining := 0
		for _, t := range todos {
			if !t.Done {
				remaining++
			}
		}

		return vdom.Section(vdom.Class("todos"),
			vdom.Div(vdom.Class("new"),
				vdom.Input(vdom.Key("draft"), vdom.Placeholder("What next?"), vdom.Value(draft),
					vdom.OnInput(func(e dom.Event) {
						v, _ := e.Target.Property("value").(string)
						cache.Set("draft", v)
						c.Invalidate()
					})),
				vdom.Button(vdom.Key("add"), vdom.Disabled(draft == ""), vdom.OnClick(add), "Add"),
			),
			vdom.Ul(vdom.Range(todos, func(t Todo, i int) *vdom.VNode {
				return vdom.Li(vdom.Key(t.ID), vdom.Classes(map[string]bool{"done": t.Done}),
					vdom.If(t.Done, checkIcon()),
					vdom.Span(vdom.OnClick(func() {
						next := append([]Todo(nil), todos...)
						next[i].Done = !next[i].Done
						update(next)
					}), t.Title),
					vdom.Button(vdom.Class("remove"), vdom.OnClick(func() {
						next := append([]Todo(nil), todos[:i]...)
						update(append(next, todos[i+1:]...))
					}), "x"),
				)
			})),
			vdom.P(vdom.Class("count"), vdom.Text(fmt.Sprintf("%d of %d left", remaining, len(todos)))),
		)
	})

func checkIcon() *vdom.VNode {
	return vdom.Svg(vdom.Class("check"), vdom.ViewBox("0 0 16 16"), vdom.Width(16), vdom.Height(16),
		vdom.Path(vdom.D("M2 8l4 4 8-8"), vdom.Fill("none")),
	)
}

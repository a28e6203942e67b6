package middleware

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/render"
	"github.com/vango-dev/canopy/pkg/vdom"
)

func mount(t *testing.T, root func() *vdom.VNode) (*memdom.Document, *render.Renderer) {
	t.Helper()
	doc := memdom.NewDocument()
	r := render.New(doc, root, render.WithSync(true))
	if err := r.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return doc, r
}

func TestCacheSharedBetweenMiddleware(t *testing.T) {
	deps := render.Deps{"cache": Cache}
	writer := render.Create(deps).Middleware("writer", func(c *render.Context) any {
		cache := render.Use[*CacheAPI](c, "cache")
		return func(k string, v any) { cache.Set(k, v) }
	})
	reader := render.Create(deps).Middleware("reader", func(c *render.Context) any {
		cache := render.Use[*CacheAPI](c, "cache")
		return func(k string) any { return cache.Get(k) }
	})

	renders := 0
	var got any
	comp := render.Create(render.Deps{"writer": writer, "reader": reader}).
		Component("Widget", func(c *render.Context) *vdom.VNode {
			renders++
			set := render.Use[func(string, any)](c, "writer")
			get := render.Use[func(string) any](c, "reader")
			set("greeting", "hello")
			got = get("greeting")
			return vdom.Textf("%v", got)
		})

	doc, _ := mount(t, func() *vdom.VNode { return vdom.Comp(comp, nil) })
	if got != "hello" {
		t.Errorf("reader got %v, want hello", got)
	}
	if renders != 1 {
		t.Errorf("renders = %d, want 1 (Set must not invalidate)", renders)
	}
	if html := doc.BodyNode().InnerHTML(); html != "hello" {
		t.Errorf("html = %q, want hello", html)
	}
}

func TestCacheSurvivesRenders(t *testing.T) {
	var ctx *render.Context
	comp := render.Create(render.Deps{"cache": Cache}).
		Component("Counter", func(c *render.Context) *vdom.VNode {
			ctx = c
			cache := render.Use[*CacheAPI](c, "cache")
			n := cache.GetOrSet("n", func() any { return 0 }).(int)
			cache.Set("n", n+1)
			return vdom.Textf("%d", n)
		})

	doc, _ := mount(t, func() *vdom.VNode { return vdom.Comp(comp, nil) })
	ctx.Invalidate()
	ctx.Invalidate()
	if got := doc.BodyNode().InnerHTML(); got != "2" {
		t.Errorf("html = %q, want 2", got)
	}
}

func TestCacheDroppedOnDestroy(t *testing.T) {
	var api *CacheAPI
	comp := render.Create(render.Deps{"cache": Cache}).
		Component("Holder", func(c *render.Context) *vdom.VNode {
			api = render.Use[*CacheAPI](c, "cache")
			api.Set("k", 1)
			return vdom.Span()
		})

	show := true
	_, r := mount(t, func() *vdom.VNode { return vdom.Div(vdom.If(show, vdom.Comp(comp, nil))) })
	if !api.Has("k") {
		t.Fatal("value missing after render")
	}
	show = false
	r.Invalidate()
	if _, ok := api.Lookup("k"); ok {
		t.Error("cache still holds values after the instance was destroyed")
	}
}

func TestCacheKeysAndClear(t *testing.T) {
	var api *CacheAPI
	var scope *render.Scope
	comp := render.Create(render.Deps{"cache": Cache}).
		Component("Keys", func(c *render.Context) *vdom.VNode {
			api = render.Use[*CacheAPI](c, "cache")
			scope = c.Scope()
			return nil
		})
	mount(t, func() *vdom.VNode { return vdom.Comp(comp, nil) })

	api.Set("b", 2)
	api.Set("a", 1)
	scope.Set("other", true)
	if diff := cmp.Diff([]string{"a", "b"}, api.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	api.Delete("b")
	if api.Has("b") {
		t.Error("Delete did not remove b")
	}
	api.Clear()
	if len(api.Keys()) != 0 {
		t.Errorf("Keys() after Clear = %v", api.Keys())
	}
	if _, ok := scope.Get("other"); !ok {
		t.Error("Clear removed a value the cache does not own")
	}
}

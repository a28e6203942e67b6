// Package middleware provides capability modules for render components.
//
// A middleware is a render.Middleware: it is built with render.Create like a
// component, runs once per dependent instance and hands an API value to
// that instance. Middleware from this package only uses the public context
// contract (Scope, Invalidate, Destroy and DiffProperty), so applications can
// write their own the same way.
//
// # Cache
//
// Cache stores values on the owning instance. Every middleware and the
// component itself share the store, so a value set by one is visible to the
// others immediately, without an invalidation:
//
//	var Counter = render.Create(render.Deps{"cache": middleware.Cache}).
//	    Component("Counter", func(c *render.Context) *vdom.VNode {
//	        cache := render.Use[*middleware.CacheAPI](c, "cache")
//	        n, _ := cache.Get("n").(int)
//	        return vdom.Button(
//	            vdom.OnClick(func() { cache.Set("n", n+1); c.Invalidate() }),
//	            vdom.Textf("%d", n),
//	        )
//	    })
//
// The store is dropped when the instance is destroyed.
package middleware

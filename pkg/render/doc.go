// Package render reconciles vdom descriptor trees against a live dom.Document.
//
// A Renderer owns every piece of reconciliation state for one mount: the
// wrapper tree that pairs descriptors with DOM nodes, the component instance
// map, the invalidation queue and the DOM application queue. Nothing is kept
// in package level variables, so independent renderers can share a process.
//
// # Mounting
//
//	r := render.New(doc, func() *vdom.VNode {
//	    return vdom.Comp(App, nil)
//	})
//	if err := r.Mount(render.WithSync(true)); err != nil {
//	    return err
//	}
//
// Mount renders synchronously. Later updates are driven by invalidation: a
// component calls Invalidate on its Context and the renderer drains the
// queue either immediately (sync mode) or on the next animation frame.
//
// # Components
//
// Functional components are built with Create, which declares the
// middleware a component depends on:
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
// Middleware is built the same way and returns an arbitrary API value to the
// component that depends on it. Stateful components embed Base and are
// registered with Define.
//
// # Pipeline
//
// Every drain runs in three phases:
//
//  1. Invalidated instances are sorted deepest first and re-rendered.
//  2. Each rendered child list is diffed against the previous wrappers,
//     producing create, update and remove instructions. DOM nodes are
//     allocated here and removed instances are destroyed here.
//  3. Queued DOM operations are applied in order, so a parent is always in
//     the document before its children, followed by deferred properties,
//     focus requests and attach hooks.
//
// # Threading
//
// A Renderer is single threaded. All calls, including Invalidate from event
// handlers, must happen on the goroutine that drives the document.
package render

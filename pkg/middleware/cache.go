package middleware

import (
	"sort"

	"github.com/vango-dev/canopy/pkg/render"
)

// cacheKey namespaces cache entries inside the instance scope.
type cacheKey struct{ key string }

// CacheAPI reads and writes the instance cache.
type CacheAPI struct {
	scope *render.Scope
}

// Cache is the cache middleware. Depend on it under any name and retrieve
// the *CacheAPI with render.Use.
var Cache = render.Create(nil).Middleware("cache", func(c *render.Context) any {
	return &CacheAPI{scope: c.Scope()}
})

// Get returns the value stored under key, or nil.
func (a *CacheAPI) Get(key string) any {
	v, _ := a.scope.Get(cacheKey{key})
	return v
}

// Lookup is Get with a presence flag.
func (a *CacheAPI) Lookup(key string) (any, bool) {
	return a.scope.Get(cacheKey{key})
}

// Has reports whether key is set.
func (a *CacheAPI) Has(key string) bool {
	_, ok := a.scope.Get(cacheKey{key})
	return ok
}

// Set stores value under key. It does not invalidate the instance.
func (a *CacheAPI) Set(key string, value any) {
	a.scope.Set(cacheKey{key}, value)
}

// Delete removes key.
func (a *CacheAPI) Delete(key string) {
	a.scope.Delete(cacheKey{key})
}

// GetOrSet returns the value under key, computing and storing it with fn
// when it is missing.
func (a *CacheAPI) GetOrSet(key string, fn func() any) any {
	if v, ok := a.scope.Get(cacheKey{key}); ok {
		return v
	}
	v := fn()
	a.scope.Set(cacheKey{key}, v)
	return v
}

// Keys returns the cached keys in sorted order.
func (a *CacheAPI) Keys() []string {
	var keys []string
	a.scope.Range(func(k, _ any) {
		if ck, ok := k.(cacheKey); ok {
			keys = append(keys, ck.key)
		}
	})
	sort.Strings(keys)
	return keys
}

// Clear removes every cache entry and leaves other scope values alone.
func (a *CacheAPI) Clear() {
	for _, k := range a.Keys() {
		a.scope.Delete(cacheKey{k})
	}
}

// Package cache caches per-user GET responses and drops them when the
// underlying view changes
package cache

import (
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
)

// Views tracks a generation per view path. Cache keys embed the generations
// that apply to a view, so invalidating is a counter bump and stale entries
// simply age out of the store.
type Views struct {
	store persist.CacheStore
	ttl   time.Duration

	mu   sync.RWMutex
	tree map[string]uint64 // Bumped for the path and everything below it
	self map[string]uint64 // Bumped for the path only
}

func NewViews(store persist.CacheStore, ttl time.Duration) *Views {
	return &Views{
		store: store,
		ttl:   ttl,
		tree:  map[string]uint64{},
		self:  map[string]uint64{},
	}
}

func clean(p string) string {
	if p == "" {
		return "/"
	}

	return path.Clean("/" + p)
}

// ancestors returns "/", "/a", "/a/b" for "/a/b"
func ancestors(p string) []string {
	out := []string{"/"}
	if p == "/" {
		return out
	}

	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i := range parts {
		out = append(out, "/"+strings.Join(parts[:i+1], "/"))
	}

	return out
}

// Invalidate drops the cached views at p, below p and the overviews above it.
// An empty path or "/" drops everything.
func (v *Views) Invalidate(p string) {
	p = clean(p)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.tree[p]++

	for _, a := range ancestors(p) {
		if a != p {
			v.self[a]++
		}
	}
}

func (v *Views) generation(p string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var b strings.Builder
	b.WriteString(strconv.FormatUint(v.self[p], 10))

	for _, a := range ancestors(p) {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(v.tree[a], 10))
	}

	return b.String()
}

// Key returns the cache key of a response for userID at view p
func (v *Views) Key(userID, p, requestURI string) string {
	p = clean(p)
	return "view:" + userID + ":" + p + ":" + v.generation(p) + ":" + requestURI
}

// Middleware caches responses of the routes it guards. view maps a request
// to the view path it belongs to. Requests without a user in the context are
// never cached.
func (v *Views) Middleware(view func(c *gin.Context) string) gin.HandlerFunc {
	return cache.Cache(v.store, v.ttl, cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
		userID := c.GetString("userID")
		if userID == "" {
			return false, cache.Strategy{}
		}

		return true, cache.Strategy{
			CacheKey: v.Key(userID, view(c), c.Request.URL.RequestURI()),
		}
	}))
}

// Static is a view function for routes that always belong to p
func Static(p string) func(c *gin.Context) string {
	return func(*gin.Context) string { return p }
}

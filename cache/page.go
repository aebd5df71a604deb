// Package cache keeps rendered views in memory until a mutation marks them stale.
package cache

import (
	"encoding/hex"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"
)

// Page is a rendered view together with its entity tag.
type Page struct {
	Body []byte
	ETag string
}

// PageCache is an LRU cache of rendered pages keyed by request path.
// Keys may carry a query suffix ("/profile/alice?viewer=..."), they are matched
// against invalidated paths by their path part.
// It is safe for concurrent use.
//
// Every Invalidate bumps the cache generation. A page rendered while an
// invalidation ran may already be stale, so renderers take the generation
// before reading and store with PutIfCurrent.
type PageCache struct {
	mu    sync.Mutex
	gen   uint64
	pages *lru.Cache[string, Page]
}

// New returns a PageCache holding at most size pages.
func New(size int) (*PageCache, error) {
	pages, err := lru.New[string, Page](size)
	if err != nil {
		return nil, err
	}
	return &PageCache{pages: pages}, nil
}

// Get returns the cached page for key.
func (c *PageCache) Get(key string) (Page, bool) {
	return c.pages.Get(key)
}

// Put caches body under key and returns the stored page.
func (c *PageCache) Put(key string, body []byte) Page {
	p := Page{Body: body, ETag: ETag(body)}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages.Add(key, p)
	return p
}

// Generation returns the current cache generation.
func (c *PageCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// PutIfCurrent caches body under key only if no invalidation happened since gen
// was taken. It returns the page either way, and whether it was stored.
func (c *PageCache) PutIfCurrent(key string, body []byte, gen uint64) (Page, bool) {
	p := Page{Body: body, ETag: ETag(body)}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return p, false
	}
	c.pages.Add(key, p)
	return p, true
}

// Invalidate drops every page under the given paths: the page at the path itself
// and, for paths other than "/", everything below it. So "/" drops the feed only
// and "/profile" drops every profile page.
func (c *PageCache) Invalidate(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, key := range c.pages.Keys() {
		for _, p := range paths {
			if covers(p, key) {
				c.pages.Remove(key)
				break
			}
		}
	}
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	return c.pages.Len()
}

func covers(path, key string) bool {
	if i := strings.IndexByte(key, '?'); i >= 0 {
		key = key[:i]
	}
	if key == path {
		return true
	}
	return path != "/" && strings.HasPrefix(key, strings.TrimSuffix(path, "/")+"/")
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

package glyph

import (
	"sync"

	"github.com/phanxgames/quill"
)

type cacheKey struct {
	font string
	r    rune
	size float64
}

// Cache memoizes glyph outlines from another source by (font, rune, size).
// Returned paths are copies, so callers may mutate them freely. Errors are
// not cached.
type Cache struct {
	src quill.GlyphSource

	mu      sync.Mutex
	entries map[cacheKey]quill.GlyphOutline
	hits    int
	misses  int
}

// NewCache wraps src.
func NewCache(src quill.GlyphSource) *Cache {
	return &Cache{src: src, entries: make(map[cacheKey]quill.GlyphOutline)}
}

// Glyph returns the cached outline, asking the wrapped source on a miss.
func (c *Cache) Glyph(font string, r rune, size float64) (quill.GlyphOutline, error) {
	k := cacheKey{font, r, size}
	c.mu.Lock()
	g, ok := c.entries[k]
	if ok {
		c.hits++
	}
	c.mu.Unlock()
	if ok {
		return quill.GlyphOutline{Path: g.Path.Clone(), Advance: g.Advance}, nil
	}

	g, err := c.src.Glyph(font, r, size)
	if err != nil {
		return quill.GlyphOutline{}, err
	}
	c.mu.Lock()
	c.entries[k] = quill.GlyphOutline{Path: g.Path.Clone(), Advance: g.Advance}
	c.misses++
	c.mu.Unlock()
	return g, nil
}

// Len returns the number of cached outlines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Reset drops every cached outline and zeroes the counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	clear(c.entries)
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
}

package frame

import (
	"fmt"
	"sync"

	"github.com/disintegration/imaging"
)

// Cache provides thread-safe caching of still images loaded as frames.
//
// The MCP server calls its tools repeatedly on the same files; the cache keeps
// the decoded frame keyed by path so subsequent calls skip disk I/O. Cached
// frames stay in memory until Evict or Clear is called.
type Cache struct {
	mu     sync.RWMutex
	frames map[string]*Frame
	seq    uint64
}

// NewCache creates an empty cache, safe for concurrent use.
func NewCache() *Cache {
	return &Cache{
		frames: make(map[string]*Frame),
	}
}

// Load returns the frame for path, decoding it from disk on first use.
//
// The path string is the cache key: a relative and an absolute path to the
// same file occupy separate entries.
func (c *Cache) Load(path string) (*Frame, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.frames[path]; ok {
		return f, nil
	}
	c.seq++
	f := New(img, c.seq, clock())
	c.frames[path] = f
	return f, nil
}

// Evict removes a single path from the cache. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Clear drops every cached frame.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*Frame)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

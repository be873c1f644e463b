package email

import (
	"sync"
	"time"
)

// SocialLinks are the footer links rendered into every voucher email.
type SocialLinks struct {
	Facebook  string
	Instagram string
	Twitter   string
	YouTube   string
}

// LinkLoader fetches the current footer links, typically from the
// platform settings store.
type LinkLoader func() (SocialLinks, error)

// LinkCache caches footer links with a TTL. It is injected into the
// mailer rather than living as package state, so tests can substitute
// a loader and settings changes show up after Invalidate or expiry.
type LinkCache struct {
	loader LinkLoader
	ttl    time.Duration

	mu        sync.Mutex
	links     SocialLinks
	refreshed time.Time
	valid     bool
}

// NewLinkCache creates a cache refreshing through loader every ttl.
func NewLinkCache(loader LinkLoader, ttl time.Duration) *LinkCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LinkCache{loader: loader, ttl: ttl}
}

// Get returns the cached links, refreshing them when stale. A failed
// refresh falls back to the previous value so email sending never
// blocks on the settings store.
func (c *LinkCache) Get() SocialLinks {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && time.Since(c.refreshed) < c.ttl {
		return c.links
	}

	links, err := c.loader()
	if err != nil {
		return c.links
	}

	c.links = links
	c.refreshed = time.Now()
	c.valid = true
	return c.links
}

// Invalidate drops the cached value so the next Get reloads.
func (c *LinkCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

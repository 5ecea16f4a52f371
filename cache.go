package pubtheme

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/eringen/pubtheme/content"
	"github.com/eringen/pubtheme/widget"
)

// ErrNotFound is returned when a requested post, term or widget does not exist.
var ErrNotFound = sql.ErrNoRows

// ContentCache is an in-memory cache of the data every page needs: the
// published post listing, the widget instances and the author count.
type ContentCache struct {
	mu      sync.RWMutex
	posts   []content.Post
	widgets []widget.Instance
	authors int
	loaded  bool
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewContentCache creates a ContentCache backed by the given Store.
func NewContentCache(s *Store, ttl time.Duration) *ContentCache {
	return &ContentCache{store: s, ttl: ttl}
}

func (c *ContentCache) valid() bool {
	return c.loaded && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.widgets = nil
	c.loaded = false
	c.mu.Unlock()
}

func (c *ContentCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.Published(ctx, content.TypePost)
	if err != nil {
		return err
	}
	widgets, err := c.store.Widgets(ctx)
	if err != nil {
		return err
	}
	authors, err := c.store.AuthorCount(ctx)
	if err != nil {
		return err
	}
	c.posts = posts
	c.widgets = widgets
	c.authors = authors
	c.loaded = true
	c.fetched = time.Now()
	return nil
}

// ensureLoaded tries a read lock first and only takes the write lock when
// a reload is needed.
func (c *ContentCache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	ok := c.valid()
	c.mu.RUnlock()
	if ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Posts returns the published posts, newest first.
func (c *ContentCache) Posts(ctx context.Context) ([]content.Post, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.posts, nil
}

// Widgets returns every widget instance.
func (c *ContentCache) Widgets(ctx context.Context) ([]widget.Instance, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.widgets, nil
}

// MultiAuthor reports whether more than one author has published posts.
func (c *ContentCache) MultiAuthor(ctx context.Context) (bool, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authors > 1, nil
}

// AreaActive reports whether any widget is placed in area.
func (c *ContentCache) AreaActive(ctx context.Context, area string) (bool, error) {
	ws, err := c.Widgets(ctx)
	if err != nil {
		return false, err
	}
	for _, w := range ws {
		if w.Area == area {
			return true, nil
		}
	}
	return false, nil
}

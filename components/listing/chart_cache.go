package listing

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart HTML per screen.
type RenderCache interface {
	GetOrRender(screen, key string, render func() (string, error)) (string, error)
}

// ChartCache keeps rendered breakdown charts for a TTL. It is also a
// RefreshHook: a screen event drops that screen's charts.
type ChartCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	screens map[string]map[string]chartEntry
}

type chartEntry struct {
	html    string
	expires time.Time
}

var _ RefreshHook = (*ChartCache)(nil)

// NewChartCache builds a cache. A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{ttl: ttl, now: time.Now, screens: map[string]map[string]chartEntry{}}
}

// GetOrRender returns the cached chart for (screen, key) or renders it.
// Render errors are returned and never cached.
func (c *ChartCache) GetOrRender(screen, key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	now := c.now()
	c.mu.Lock()
	entry, ok := c.screens[screen][key]
	c.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.html, nil
	}

	html, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	charts := c.screens[screen]
	if charts == nil {
		charts = map[string]chartEntry{}
		c.screens[screen] = charts
	}
	for k, e := range charts {
		if !now.Before(e.expires) {
			delete(charts, k)
		}
	}
	charts[key] = chartEntry{html: html, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return html, nil
}

// Forget drops the charts of one screen, or of every screen when screen is
// empty.
func (c *ChartCache) Forget(screen string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if screen == "" {
		c.screens = map[string]map[string]chartEntry{}
		return
	}
	delete(c.screens, screen)
}

// ScreenUpdated implements RefreshHook.
func (c *ChartCache) ScreenUpdated(_ context.Context, event ScreenEvent) error {
	c.Forget(event.Screen)
	return nil
}

func bucketsHash(buckets []Bucket) string {
	b, err := json.Marshal(buckets)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:8])
}

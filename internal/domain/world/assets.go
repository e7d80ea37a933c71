package world

import (
	"context"
	"fmt"
)

// AssetLoader fetches one named asset
type AssetLoader func(ctx context.Context, name string) ([]byte, error)

// AssetCache keeps preloaded assets in memory.
// Evicted entries are fetched again by the next Warm.
type AssetCache struct {
	load    AssetLoader
	entries map[string][]byte
	loads   int
}

// NewAssetCache creates an empty cache backed by load
func NewAssetCache(load AssetLoader) *AssetCache {
	return &AssetCache{load: load, entries: make(map[string][]byte)}
}

// Warm loads every named asset that is not already cached
func (c *AssetCache) Warm(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, ok := c.entries[name]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := c.load(ctx, name)
		if err != nil {
			return fmt.Errorf("load asset %s: %w", name, err)
		}
		c.entries[name] = data
		c.loads++
	}
	return nil
}

// Get returns a cached asset
func (c *AssetCache) Get(name string) ([]byte, bool) {
	data, ok := c.entries[name]
	return data, ok
}

// Evict drops an asset so the next Warm fetches it again
func (c *AssetCache) Evict(name string) {
	delete(c.entries, name)
}

// EvictAll empties the cache
func (c *AssetCache) EvictAll() {
	c.entries = make(map[string][]byte)
}

// Loads returns how many times the loader was called
func (c *AssetCache) Loads() int {
	return c.loads
}

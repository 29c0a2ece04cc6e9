// Package settings supplies detection thresholds to the processor.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// Static always returns the same settings
type Static models.DetectionSettings

// GetSettings implements detection.SettingsProvider
func (s Static) GetSettings(context.Context) (models.DetectionSettings, error) {
	return models.DetectionSettings(s), nil
}

// Store loads and saves setting overrides
type Store interface {
	Load(ctx context.Context, defaults models.DetectionSettings) (models.DetectionSettings, error)
	Save(ctx context.Context, s models.DetectionSettings) error
}

const cacheKey = "detection"

// Cached serves settings from a TTL cache in front of a Store. Values loaded
// from the store are defaults overlaid with stored overrides.
type Cached struct {
	store    Store
	defaults models.DetectionSettings
	cache    *cache.Cache
}

// NewCached creates a cached provider. ttl <= 0 disables caching.
func NewCached(store Store, defaults models.DetectionSettings, ttl time.Duration) *Cached {
	c := &Cached{store: store, defaults: defaults}
	if ttl > 0 {
		c.cache = cache.New(ttl, time.Minute)
	}
	return c
}

// GetSettings implements detection.SettingsProvider
func (c *Cached) GetSettings(ctx context.Context) (models.DetectionSettings, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(cacheKey); ok {
			return v.(models.DetectionSettings), nil
		}
	}

	s, err := c.store.Load(ctx, c.defaults)
	if err != nil {
		return models.DetectionSettings{}, fmt.Errorf("failed to load detection settings: %w", err)
	}
	if c.cache != nil {
		c.cache.SetDefault(cacheKey, s)
	}
	return s, nil
}

// Update validates and persists s, then drops the cached value
func (c *Cached) Update(ctx context.Context, s models.DetectionSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := c.store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save detection settings: %w", err)
	}
	c.Invalidate()
	return nil
}

// Invalidate forces the next GetSettings to reload
func (c *Cached) Invalidate() {
	if c.cache != nil {
		c.cache.Delete(cacheKey)
	}
}

package service

import (
	"context"
	"fmt"
	"sync"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Catalog serves menu queries through a per-(shop, category) cache. Results
// come from the local map first, then the shared Redis cache, then the
// store; a store failure degrades to the built-in sample dataset without
// populating either cache layer.
type Catalog struct {
	menu   MenuStore
	shops  ShopStore
	cache  MenuCache
	logger *zap.Logger

	mu    sync.Mutex
	local map[string][]models.MenuItem
}

// NewCatalog creates a new catalog. cache may be nil when no shared cache
// is configured.
func NewCatalog(menu MenuStore, shops ShopStore, cache MenuCache) *Catalog {
	return &Catalog{
		menu:   menu,
		shops:  shops,
		cache:  cache,
		logger: util.GetLogger(),
		local:  make(map[string][]models.MenuItem),
	}
}

func cacheKey(shop, category string) string {
	return fmt.Sprintf("%s:%s", shop, category)
}

// copyItems shields cached slices from caller mutation
func copyItems(items []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, len(items))
	copy(out, items)
	return out
}

// GetShops lists active shops, falling back to the sample dataset when the
// store is unreachable
func (c *Catalog) GetShops(ctx context.Context) []models.Shop {
	shops, err := c.shops.ListShops(ctx)
	if err != nil {
		c.logger.Warn("Failed to load shops, using sample data", zap.Error(err))
		return sampleShops()
	}
	return shops
}

// GetByCategory returns the shop's available menu items for a category
// ("all" for every category), ordered by name
func (c *Catalog) GetByCategory(ctx context.Context, shop, category string) []models.MenuItem {
	key := cacheKey(shop, category)

	c.mu.Lock()
	if items, ok := c.local[key]; ok {
		c.mu.Unlock()
		util.MenuCacheHitsTotal.Inc()
		return copyItems(items)
	}
	c.mu.Unlock()

	if c.cache != nil {
		items, ok, err := c.cache.GetMenu(ctx, shop, category)
		if err != nil {
			c.logger.Warn("Menu cache read failed", zap.Error(err))
		} else if ok {
			util.MenuCacheHitsTotal.Inc()
			c.mu.Lock()
			c.local[key] = items
			c.mu.Unlock()
			return copyItems(items)
		}
	}

	util.MenuCacheMissesTotal.Inc()

	items, err := c.menu.ListMenuItems(ctx, shop, category)
	if err != nil {
		c.logger.Warn("Failed to load menu, using sample data",
			zap.String("shop", shop),
			zap.String("category", category),
			zap.Error(err))
		util.MenuFallbackTotal.Inc()
		return filterByCategory(sampleMenuItems(shop), category)
	}

	c.mu.Lock()
	c.local[key] = items
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.SetMenu(ctx, shop, category, items); err != nil {
			c.logger.Warn("Menu cache write failed", zap.Error(err))
		}
	}

	return copyItems(items)
}

// Invalidate clears every cached entry. Shop switches are the only
// invalidation trigger in practice, so a full clear is the simplest
// correct behavior.
func (c *Catalog) Invalidate(ctx context.Context, shops ...string) {
	c.mu.Lock()
	c.local = make(map[string][]models.MenuItem)
	c.mu.Unlock()

	if c.cache == nil {
		return
	}
	for _, shop := range shops {
		if err := c.cache.InvalidateMenu(ctx, shop); err != nil {
			c.logger.Warn("Menu cache invalidation failed",
				zap.String("shop", shop), zap.Error(err))
		}
	}
}

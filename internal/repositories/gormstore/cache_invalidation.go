package gormstore

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/learning-content-service/internal/cache"
)

// cacheInvalidator drops cache entries after a write. Inside a transaction the
// drops are queued and only run once the transaction has committed, so a read
// racing the write cannot cache the pre-commit row for the whole TTL.
type cacheInvalidator struct {
	cm       *cache.CacheManager
	deferred bool

	mu          sync.Mutex
	materialIDs []uint
	categories  bool
}

func newCacheInvalidator(cm *cache.CacheManager, deferred bool) *cacheInvalidator {
	return &cacheInvalidator{cm: cm, deferred: deferred}
}

func (ci *cacheInvalidator) materialChanged(ctx context.Context, id uint) {
	if !ci.deferred {
		cache.InvalidateMaterialCache(ctx, ci.cm, id)
		return
	}

	ci.mu.Lock()
	ci.materialIDs = append(ci.materialIDs, id)
	ci.mu.Unlock()
}

func (ci *cacheInvalidator) categoriesChanged(ctx context.Context) {
	if !ci.deferred {
		cache.SafeDelete(ctx, ci.cm.Category, cache.CategoryListKey)
		return
	}

	ci.mu.Lock()
	ci.categories = true
	ci.mu.Unlock()
}

// flush runs the queued drops; called after commit only
func (ci *cacheInvalidator) flush(ctx context.Context) {
	ci.mu.Lock()
	ids, categories := ci.materialIDs, ci.categories
	ci.materialIDs, ci.categories = nil, false
	ci.mu.Unlock()

	for _, id := range ids {
		cache.InvalidateMaterialCache(ctx, ci.cm, id)
	}
	if categories {
		cache.SafeDelete(ctx, ci.cm.Category, cache.CategoryListKey)
	}
}

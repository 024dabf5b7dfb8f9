package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// Material cache keys
func MaterialIDKey(id uint) string {
	return fmt.Sprintf("id:%d", id)
}

func MaterialListKey(category string) string {
	if category == "" {
		category = "all"
	}
	return "list:" + category
}

// CategoryListKey holds the full category listing.
const CategoryListKey = "list"

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateMaterialCache drops the cached material and every cached listing.
// Listings are keyed by category name, which a material change can move between.
func InvalidateMaterialCache(ctx context.Context, cm *CacheManager, materialID uint) {
	SafeDelete(ctx, cm.Material, MaterialIDKey(materialID))
	SafeInvalidatePattern(ctx, cm.Material, "list:*")
}

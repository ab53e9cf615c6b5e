package api

import (
	"context"                           // Context for Redis operations
	"jacket_marketplace/internal/utils" // Utility functions

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Cache key prefixes of the admin listings
const (
	usersCachePrefix        = "admin:users:"
	transactionsCachePrefix = "admin:txs:"
)

// invalidateJackets drops the cached catalog
func invalidateJackets(ctx context.Context, rdb *redis.Client) {
	if err := utils.DeleteCache(ctx, rdb, utils.JacketsCacheKey); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to invalidate jacket cache")
	}
}

// invalidateUsers drops every cached page of the admin user listing
func invalidateUsers(ctx context.Context, rdb *redis.Client) {
	if err := utils.DeleteCachePrefix(ctx, rdb, usersCachePrefix); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to invalidate user cache")
	}
}

// invalidateTransactions drops every cached page of the admin transaction listing
func invalidateTransactions(ctx context.Context, rdb *redis.Client) {
	if err := utils.DeleteCachePrefix(ctx, rdb, transactionsCachePrefix); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to invalidate transaction cache")
	}
}

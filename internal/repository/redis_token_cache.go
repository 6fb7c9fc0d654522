package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tracker-server/internal/models"
)

// Compile-time check to ensure redisTokenCache implements TokenCache.
var _ TokenCache = (*redisTokenCache)(nil)

type redisTokenCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenCache creates the Redis-backed token cache. Entries are
// JSON-encoded API tokens keyed by token value with a short TTL, so a
// revoked token stops working once the cache entry expires or is purged.
func NewRedisTokenCache(client *redis.Client, logger *zap.Logger) TokenCache {
	return &redisTokenCache{
		client: client,
		logger: logger.Named("RedisTokenCache"),
	}
}

func tokenCacheKey(tokenValue string) string {
	return fmt.Sprintf("apitoken:%s", tokenValue)
}

func (c *redisTokenCache) Get(ctx context.Context, tokenValue string) (*models.APIToken, error) {
	raw, err := c.client.Get(ctx, tokenCacheKey(tokenValue)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrTokenNotFound
		}
		c.logger.Error("Failed to read token from cache", zap.Error(err))
		return nil, err
	}

	token := &models.APIToken{}
	if err := json.Unmarshal(raw, token); err != nil {
		// Битую запись убираем, чтобы не отдавать её снова.
		c.logger.Error("Failed to decode cached token, purging entry", zap.Error(err))
		if delErr := c.client.Del(ctx, tokenCacheKey(tokenValue)).Err(); delErr != nil {
			c.logger.Warn("Failed to purge malformed cache entry", zap.Error(delErr))
		}
		return nil, models.ErrTokenNotFound
	}
	return token, nil
}

func (c *redisTokenCache) Set(ctx context.Context, token *models.APIToken, ttl time.Duration) error {
	raw, err := json.Marshal(token)
	if err != nil {
		c.logger.Error("Failed to encode token for cache", zap.Error(err))
		return err
	}
	if err := c.client.Set(ctx, tokenCacheKey(token.Token), raw, ttl).Err(); err != nil {
		c.logger.Error("Failed to write token to cache", zap.Error(err))
		return err
	}
	c.logger.Debug("Cached token", zap.String("userId", token.UserID), zap.Duration("ttl", ttl))
	return nil
}

func (c *redisTokenCache) Delete(ctx context.Context, tokenValue string) error {
	if err := c.client.Del(ctx, tokenCacheKey(tokenValue)).Err(); err != nil {
		c.logger.Error("Failed to delete token from cache", zap.Error(err))
		return err
	}
	return nil
}

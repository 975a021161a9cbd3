package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CachedRepository serves FindMenuByID from redis and falls back to the
// wrapped repository on a miss or a redis failure.
type CachedRepository struct {
	Repository
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewCachedRepository wraps next with a redis read-through cache
func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *CachedRepository {
	return &CachedRepository{
		Repository: next,
		client:     client,
		ttl:        ttl,
		logger:     logger,
	}
}

func (r *CachedRepository) FindMenuByID(ctx context.Context, id uint) (*Menu, error) {
	key := menuCacheKey(id)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var menu Menu
		if jsonErr := json.Unmarshal(data, &menu); jsonErr == nil {
			return &menu, nil
		}
		r.logger.WithField("key", key).Warn("Discarding unreadable cached menu")
	case !errors.Is(err, redis.Nil):
		r.logger.WithError(err).WithField("key", key).Warn("Menu cache read failed")
	}

	menu, err := r.Repository.FindMenuByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.store(ctx, key, menu); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("Menu cache write failed")
	}
	return menu, nil
}

// Purge drops every cached menu and reports how many entries were removed.
// The service never writes the catalog, so this runs at startup after
// migrations and seeding have touched the tables.
func (r *CachedRepository) Purge(ctx context.Context) (int64, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, menuCacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan failed: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis delete failed: %w", err)
	}
	return removed, nil
}

func (r *CachedRepository) store(ctx context.Context, key string, menu *Menu) error {
	payload, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

const menuCacheKeyPrefix = "catalog:menu:"

func menuCacheKey(id uint) string {
	return fmt.Sprintf("%s%d", menuCacheKeyPrefix, id)
}

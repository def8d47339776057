package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"social-app/internal/domain"
)

// FeedCache guarda páginas del feed global por un TTL corto. Solo el feed
// global se cachea: las páginas no dependen del llamador más allá del perfil,
// que se une después de leer la página.
type FeedCache interface {
	GetGlobalPage(ctx context.Context, page, pageSize int) ([]domain.Post, int, bool)
	SetGlobalPage(ctx context.Context, page, pageSize int, posts []domain.Post, total int) error
	InvalidateGlobal(ctx context.Context) error
}

type cachedFeedPage struct {
	Posts []domain.Post `json:"posts"`
	Total int           `json:"total"`
}

type redisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFeedCache crea un cache de feed respaldado por Redis.
func NewRedisFeedCache(client *redis.Client, ttl time.Duration) FeedCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisFeedCache{client: client, ttl: ttl}
}

func feedPageKey(page, pageSize int) string {
	return fmt.Sprintf("feed:global:%d:%d", page, pageSize)
}

const feedVersionKey = "feed:global:version"

// Las claves incluyen una versión que se incrementa al invalidar, así no hay
// que enumerar páginas para borrarlas.
func (c *redisFeedCache) versionedKey(ctx context.Context, page, pageSize int) string {
	version, err := c.client.Get(ctx, feedVersionKey).Result()
	if err != nil {
		version = "0"
	}
	return feedPageKey(page, pageSize) + ":v" + version
}

func (c *redisFeedCache) GetGlobalPage(ctx context.Context, page, pageSize int) ([]domain.Post, int, bool) {
	raw, err := c.client.Get(ctx, c.versionedKey(ctx, page, pageSize)).Bytes()
	if err != nil {
		return nil, 0, false
	}
	var cached cachedFeedPage
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, 0, false
	}
	return cached.Posts, cached.Total, true
}

func (c *redisFeedCache) SetGlobalPage(ctx context.Context, page, pageSize int, posts []domain.Post, total int) error {
	raw, err := json.Marshal(cachedFeedPage{Posts: posts, Total: total})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.versionedKey(ctx, page, pageSize), raw, c.ttl).Err()
}

func (c *redisFeedCache) InvalidateGlobal(ctx context.Context) error {
	return c.client.Incr(ctx, feedVersionKey).Err()
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

const listCacheKey = "catalog:services"

// CachedRepository fronts the DynamoDB repository with a Redis read-through
// cache for the service list. Writes invalidate the cached list so reads after
// a change always see fresh data.
type CachedRepository struct {
	repo   *Repository
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewCachedRepository(repo *Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRepository {
	if repo == nil {
		panic("catalog: repository cannot be nil")
	}
	if client == nil {
		panic("catalog: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedRepository{repo: repo, client: client, ttl: ttl, logger: logger}
}

func (c *CachedRepository) List(ctx context.Context) ([]Service, error) {
	cached, err := c.client.Get(ctx, listCacheKey).Result()
	if err == nil {
		var services []Service
		if jsonErr := json.Unmarshal([]byte(cached), &services); jsonErr == nil {
			return services, nil
		}
		// Corrupt entry, fall through to the store and rewrite it.
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("catalog cache read failed", "error", err)
	}

	services, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if payload, jsonErr := json.Marshal(services); jsonErr == nil {
		if setErr := c.client.Set(ctx, listCacheKey, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("catalog cache write failed", "error", setErr)
		}
	}
	return services, nil
}

func (c *CachedRepository) Get(ctx context.Context, id string) (*Service, error) {
	return c.repo.Get(ctx, id)
}

func (c *CachedRepository) Create(ctx context.Context, svc *Service) (*Service, error) {
	created, err := c.repo.Create(ctx, svc)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return created, nil
}

func (c *CachedRepository) Update(ctx context.Context, svc *Service) (*Service, error) {
	updated, err := c.repo.Update(ctx, svc)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return updated, nil
}

func (c *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedRepository) invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, listCacheKey).Err(); err != nil {
		c.logger.Warn("catalog cache invalidation failed", "key", listCacheKey, "error", err)
	}
}

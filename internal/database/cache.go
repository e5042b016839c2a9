package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/healthbite/backend/internal/foodid"
	"github.com/healthbite/backend/internal/models"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Cache key constants
const (
	NutritionKey    = "nutrition:lookup:%s"
	SystemHealthKey = "system:health"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache implementation
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

func nutritionKey(term string) string {
	return fmt.Sprintf(NutritionKey, utils.CacheKey(term))
}

// CacheNutrition stores the records returned for a lookup term.
func (c *Cache) CacheNutrition(ctx context.Context, term string, records []foodid.FoodRecord, expiration time.Duration) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal nutrition records: %w", err)
	}
	return c.client.Set(ctx, nutritionKey(term), data, expiration).Err()
}

// GetCachedNutrition retrieves cached records for a lookup term.
func (c *Cache) GetCachedNutrition(ctx context.Context, term string) ([]foodid.FoodRecord, error) {
	var records []foodid.FoodRecord
	if err := c.getJSON(ctx, nutritionKey(term), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CacheSystemHealth caches system health status
func (c *Cache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	data, err := json.Marshal(health)
	if err != nil {
		return fmt.Errorf("failed to marshal system health: %w", err)
	}
	return c.client.Set(ctx, SystemHealthKey, data, expiration).Err()
}

// GetCachedSystemHealth retrieves cached system health
func (c *Cache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	if err := c.getJSON(ctx, SystemHealthKey, &health); err != nil {
		return nil, err
	}
	return health, nil
}

// InvalidateNutrition removes the cached records for a term.
func (c *Cache) InvalidateNutrition(ctx context.Context, term string) error {
	return c.client.Del(ctx, nutritionKey(term)).Err()
}

func (c *Cache) getJSON(ctx context.Context, key string, out interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding corrupt cache entry")
		return ErrCacheMiss
	}
	return nil
}

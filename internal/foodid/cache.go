package foodid

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// NutritionCache stores lookup results by search term.
type NutritionCache interface {
	GetCachedNutrition(ctx context.Context, term string) ([]FoodRecord, error)
	CacheNutrition(ctx context.Context, term string, records []FoodRecord, expiration time.Duration) error
}

// CachingLookup serves repeated terms from the cache. Cache errors never fail
// a lookup; empty results are not cached.
type CachingLookup struct {
	next   NutritionLookup
	cache  NutritionCache
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCachingLookup(next NutritionLookup, cache NutritionCache, ttl time.Duration, logger *logrus.Logger) *CachingLookup {
	return &CachingLookup{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (l *CachingLookup) Lookup(ctx context.Context, term string) ([]FoodRecord, error) {
	if cached, err := l.cache.GetCachedNutrition(ctx, term); err == nil && len(cached) > 0 {
		l.logger.WithField("term", term).Debug("Nutrition served from cache")
		return cached, nil
	}

	records, err := l.next.Lookup(ctx, term)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		if err := l.cache.CacheNutrition(ctx, term, records, l.ttl); err != nil {
			l.logger.WithError(err).WithField("term", term).Warn("Failed to cache nutrition lookup")
		}
	}
	return records, nil
}

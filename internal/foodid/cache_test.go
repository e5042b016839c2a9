package foodid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	entries map[string][]FoodRecord
	setErr  error
	sets    int
}

func (m *memoryCache) GetCachedNutrition(ctx context.Context, term string) ([]FoodRecord, error) {
	records, ok := m.entries[term]
	if !ok {
		return nil, errors.New("miss")
	}
	return records, nil
}

func (m *memoryCache) CacheNutrition(ctx context.Context, term string, records []FoodRecord, expiration time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[term] = records
	return nil
}

func TestCachingLookup_MissThenHit(t *testing.T) {
	next := &fakeLookup{records: []FoodRecord{{Description: "Apples, raw"}}}
	cache := &memoryCache{entries: map[string][]FoodRecord{}}
	lookup := NewCachingLookup(next, cache, time.Hour, logrus.New())

	first, err := lookup.Lookup(context.Background(), "apple")
	require.NoError(t, err)
	second, err := lookup.Lookup(context.Background(), "apple")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, next.terms, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestCachingLookup_EmptyResultsNotCached(t *testing.T) {
	next := &fakeLookup{records: []FoodRecord{}}
	cache := &memoryCache{entries: map[string][]FoodRecord{}}
	lookup := NewCachingLookup(next, cache, time.Hour, logrus.New())

	records, err := lookup.Lookup(context.Background(), "unobtainium")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, cache.sets)
}

func TestCachingLookup_CacheWriteFailureIgnored(t *testing.T) {
	next := &fakeLookup{records: []FoodRecord{{Description: "Bread"}}}
	cache := &memoryCache{entries: map[string][]FoodRecord{}, setErr: errors.New("redis down")}
	lookup := NewCachingLookup(next, cache, time.Hour, logrus.New())

	records, err := lookup.Lookup(context.Background(), "bread")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCachingLookup_PropagatesLookupError(t *testing.T) {
	next := &fakeLookup{err: errors.New("boom")}
	cache := &memoryCache{entries: map[string][]FoodRecord{}}
	lookup := NewCachingLookup(next, cache, time.Hour, logrus.New())

	_, err := lookup.Lookup(context.Background(), "bread")
	assert.Error(t, err)
}

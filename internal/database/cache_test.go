package database

import (
	"context"
	"testing"

	"github.com/healthbite/backend/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestNutritionKey_NormalizesTerm(t *testing.T) {
	assert.Equal(t, nutritionKey("Pizza  Margherita"), nutritionKey(" pizza margherita "))
	assert.Equal(t, "nutrition:lookup:"+utils.CacheKey("apple"), nutritionKey("apple"))
	assert.NotEqual(t, nutritionKey("apple"), nutritionKey("banana"))
}

func TestManager_UnconfiguredPings(t *testing.T) {
	m := &Manager{}

	assert.Error(t, m.PingDatabase(context.Background()))
	assert.Error(t, m.PingRedis(context.Background()))
	assert.NoError(t, m.Migrate())
	assert.NoError(t, m.Close())
}

package recommender

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableJSON = `{
  "vegan": {
    "foods": ["Lentils", "Tofu"],
    "recipes": [{"name": "Tofu Stir Fry", "description": "Quick stir fry"}]
  },
  "headache": {
    "foods": ["Water"],
    "avoid": ["Caffeine"],
    "recipes": []
  }
}`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(tableJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"Lentils", "Tofu"}, table["vegan"].Foods)
	assert.Equal(t, []string{"Caffeine"}, table["headache"].Avoid)

	_, err = ParseTable([]byte("null"))
	assert.Error(t, err)

	_, err = ParseTable([]byte("{not json"))
	assert.Error(t, err)
}

func TestLoadTable_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.json")
	require.NoError(t, os.WriteFile(path, []byte(tableJSON), 0o644))

	table, err := LoadTable(context.Background(), path, time.Second, quietLogger())
	require.NoError(t, err)
	assert.Len(t, table, 2)
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(context.Background(), filepath.Join(t.TempDir(), "nope.json"), time.Second, quietLogger())

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Error(), "nope.json")
}

func TestLoadTable_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(tableJSON))
	}))
	defer server.Close()

	table, err := LoadTable(context.Background(), server.URL+"/food_recommendations.json", time.Second, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "Tofu Stir Fry", table["vegan"].Recipes[0].Name)
}

func TestLoadTable_URLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := LoadTable(context.Background(), server.URL+"/missing.json", time.Second, quietLogger())

	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestLoadTable_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadTable(ctx, "data/food_recommendations.json", time.Second, quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProvider_ResolvesOnce(t *testing.T) {
	p := NewProvider(nil, quietLogger())
	assert.Equal(t, StatusUninitialized, p.Current().State().Status())

	done := p.LoadAsync(context.Background(), func(ctx context.Context) (Table, error) {
		return ParseTable([]byte(tableJSON))
	})
	<-done

	assert.Equal(t, StatusLoaded, p.Current().State().Status())
	assert.False(t, p.Resolve(Failed(assert.AnError)))
	assert.Equal(t, StatusLoaded, p.Current().State().Status())
}

func TestProvider_Failure(t *testing.T) {
	p := NewProvider(nil, quietLogger())

	p.Load(context.Background(), func(ctx context.Context) (Table, error) {
		return nil, &LoadError{Source: "x", Err: assert.AnError}
	})

	state := p.Current().State()
	assert.Equal(t, StatusFailed, state.Status())
	assert.ErrorIs(t, state.Err(), assert.AnError)
	assert.Equal(t, LoadFailureNotice, p.Current().BuildResponse([]string{"vegan"}).Notice)
}

func TestProvider_ConcurrentReaders(t *testing.T) {
	p := NewProvider(nil, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Current().Respond("vegan")
			}
		}()
	}
	p.Resolve(Loaded(Table{"vegan": {Foods: []string{"Tofu"}}}))
	wg.Wait()

	assert.Equal(t, ReplyRecommendations, p.Current().Respond("vegan").Kind)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "uninitialized", StatusUninitialized.String())
	assert.Equal(t, "loaded", StatusLoaded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}

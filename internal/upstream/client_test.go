package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoPayload struct {
	Text string `json:"text"`
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/echo", r.URL.Path)
		assert.Equal(t, "Key test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in echoPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(echoPayload{Text: in.Text + "!"})
	}))
	defer server.Close()

	client := NewClient("echo", server.URL, func(req *http.Request) {
		req.Header.Set("Authorization", "Key test-key")
	}, logrus.New())

	var out echoPayload
	err := client.Post(context.Background(), "/echo", echoPayload{Text: "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi!", out.Text)
}

func TestClient_GetQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "fried rice", r.URL.Query().Get("query"))
		w.Write([]byte(`{"text":"ok"}`))
	}))
	defer server.Close()

	client := NewClient("lookup", server.URL, nil, logrus.New())

	var out echoPayload
	err := client.Get(context.Background(), "/search", url.Values{"query": {"fried rice"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
}

func TestClient_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid request"))
	}))
	defer server.Close()

	client := NewClient("echo", server.URL, nil, logrus.New())

	err := client.Post(context.Background(), "/echo", echoPayload{}, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "400")
	assert.False(t, IsTransient(err))
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient("echo", server.URL, nil, logrus.New())

	var out echoPayload
	err := client.Get(context.Background(), "/", nil, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.False(t, IsTransient(err))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(&StatusError{StatusCode: 503}))
	assert.True(t, IsTransient(&StatusError{StatusCode: 429}))
	assert.False(t, IsTransient(&StatusError{StatusCode: 404}))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("boom")))
	assert.True(t, IsTransient(fmt.Errorf("detect labels: %w: %w", ErrTransient, errors.New("throttled"))))
}

func TestDo_RetriesTransientOnce(t *testing.T) {
	var calls int32
	err := Do(context.Background(), RetryConfig{MaxRetries: 1, Delay: time.Millisecond}, logrus.New(), "stage",
		func(ctx context.Context) error {
			if atomic.AddInt32(&calls, 1) == 1 {
				return &StatusError{Service: "x", StatusCode: 502}
			}
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls)
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	err := Do(context.Background(), RetryConfig{MaxRetries: 1, Delay: time.Millisecond}, logrus.New(), "stage",
		func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return &StatusError{Service: "x", StatusCode: 500}
		})
	require.Error(t, err)
	assert.Equal(t, int32(2), calls)

	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestDo_DoesNotRetryPermanentErrors(t *testing.T) {
	var calls int32
	err := Do(context.Background(), RetryConfig{MaxRetries: 1, Delay: time.Millisecond}, logrus.New(), "stage",
		func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return &StatusError{Service: "x", StatusCode: 401}
		})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls)
}

func TestDo_PerAttemptTimeout(t *testing.T) {
	var calls int32
	err := Do(context.Background(), RetryConfig{Timeout: 20 * time.Millisecond, MaxRetries: 1, Delay: time.Millisecond}, logrus.New(), "stage",
		func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			<-ctx.Done()
			return ctx.Err()
		})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, int32(2), calls)
}

func TestDo_StopsWhenParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	err := Do(ctx, DefaultRetryConfig(), logrus.New(), "stage", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls)
}

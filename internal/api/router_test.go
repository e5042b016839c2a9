package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/healthbite/backend/internal/foodid"
	"github.com/healthbite/backend/internal/health"
	"github.com/healthbite/backend/internal/middleware"
	"github.com/healthbite/backend/internal/recommender"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIdentifier struct{}

func (stubIdentifier) Identify(ctx context.Context, image []byte) (*foodid.NutritionResult, error) {
	return nil, foodid.ErrNoFoodDetected
}

func testRouter(t *testing.T, origins []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewRouter(Dependencies{
		Logger:          logger,
		AllowedOrigins:  origins,
		MaxBodyBytes:    1 << 20,
		JWTSecret:       []byte("secret"),
		Food:            stubIdentifier{},
		Recommendations: recommender.NewProvider(nil, logger),
		Health:          health.NewHealthChecker(nil, nil, nil, logger),
	})
}

func bearer(t *testing.T) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func rateLimitedRouter(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	limiter := middleware.NewRateLimiter(2)
	t.Cleanup(limiter.Stop)

	return NewRouter(Dependencies{
		Logger:          logger,
		TrustedProxies:  trusted,
		MaxBodyBytes:    1 << 20,
		RateLimiter:     limiter,
		JWTSecret:       []byte("secret"),
		Food:            stubIdentifier{},
		Recommendations: recommender.NewProvider(nil, logger),
		Health:          health.NewHealthChecker(nil, nil, nil, logger),
	})
}

func chatFrom(r *gin.Engine, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"hi"}`))
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	r := rateLimitedRouter(t, nil)

	var codes []int
	for i := 0; i < 4; i++ {
		codes = append(codes, chatFrom(r, "203.0.113.7:40000", fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRouter_RateLimitUsesTrustedProxyHeader(t *testing.T) {
	r := rateLimitedRouter(t, []string{"192.0.2.1"})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, chatFrom(r, "192.0.2.1:40000", fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, http.StatusOK, chatFrom(r, "192.0.2.1:40000", "10.0.0.9"))
	assert.Equal(t, http.StatusOK, chatFrom(r, "192.0.2.1:40000", "10.0.0.9"))
	assert.Equal(t, http.StatusTooManyRequests, chatFrom(r, "192.0.2.1:40000", "10.0.0.9"))
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recommendations":"uninitialized"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := testRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"vegan"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), recommender.LoadingMessage)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyze-food", strings.NewReader(`{"image":"aGVsbG8="}`)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "No food items detected")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/assistant", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouter_UserRoutesWithoutStorage(t *testing.T) {
	r := testRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", bearer(t))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	r := testRouter(t, []string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)
	assert.True(t, corsConfig(nil).AllowAllOrigins)

	cfg := corsConfig([]string{"https://a.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example"}, cfg.AllowOrigins)
}

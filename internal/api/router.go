// Package api wires handlers and middleware into the HTTP router.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/internal/api/handlers"
	"github.com/healthbite/backend/internal/health"
	"github.com/healthbite/backend/internal/middleware"
	"github.com/healthbite/backend/internal/recommender"
	"github.com/healthbite/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

type Dependencies struct {
	Logger          *logrus.Logger
	AllowedOrigins  []string
	TrustedProxies  []string // empty: X-Forwarded-For is ignored
	MaxBodyBytes    int64
	RateLimiter     *middleware.RateLimiter
	JWTSecret       []byte
	Food            handlers.FoodIdentifier
	Recommendations *recommender.Provider
	Assistant       handlers.Assistant
	Repositories    *repository.RepositoryManager // nil when Postgres is disabled
	Health          *health.HealthChecker
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		deps.Logger.WithError(err).Error("Invalid trusted proxies, client IPs taken from the connection")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	router.Use(middleware.BodyLimit(deps.MaxBodyBytes))

	healthHandler := handlers.NewHealthHandler(deps.Health, deps.Recommendations)
	router.GET("/health", healthHandler.HandleHealth)

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.RateLimit())
	}

	foodHandler := handlers.NewFoodHandler(deps.Food, deps.Logger)
	chatHandler := handlers.NewChatHandler(deps.Recommendations, deps.Logger)
	assistantHandler := handlers.NewAssistantHandler(deps.Assistant, deps.Logger)

	v1.POST("/analyze-food", foodHandler.HandleAnalyzeFood)
	v1.POST("/chat", chatHandler.HandleChat)
	v1.GET("/recommendations/status", chatHandler.HandleStatus)
	v1.POST("/assistant", assistantHandler.HandleAssistant)

	user := v1.Group("")
	user.Use(middleware.RequireUser(deps.JWTSecret))

	if deps.Repositories == nil {
		for _, path := range []string{"/checkins", "/checkins/:id", "/analytics/summary", "/profile"} {
			user.GET(path, handlers.StorageUnavailable)
		}
		user.POST("/checkins", handlers.StorageUnavailable)
		user.PUT("/profile", handlers.StorageUnavailable)
		return router
	}

	checkInHandler := handlers.NewCheckInHandler(deps.Repositories.CheckIn, deps.Logger)
	profileHandler := handlers.NewProfileHandler(deps.Repositories.Profile, deps.Logger)

	user.POST("/checkins", checkInHandler.HandleCreate)
	user.GET("/checkins", checkInHandler.HandleList)
	user.GET("/checkins/:id", checkInHandler.HandleGet)
	user.GET("/analytics/summary", checkInHandler.HandleSummary)
	user.GET("/profile", profileHandler.HandleGet)
	user.PUT("/profile", profileHandler.HandlePut)

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	return config
}

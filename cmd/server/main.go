package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/internal/api"
	"github.com/healthbite/backend/internal/api/handlers"
	"github.com/healthbite/backend/internal/assistant"
	"github.com/healthbite/backend/internal/clarifai"
	"github.com/healthbite/backend/internal/config"
	"github.com/healthbite/backend/internal/database"
	"github.com/healthbite/backend/internal/foodid"
	"github.com/healthbite/backend/internal/health"
	"github.com/healthbite/backend/internal/middleware"
	"github.com/healthbite/backend/internal/migration"
	"github.com/healthbite/backend/internal/models"
	"github.com/healthbite/backend/internal/recommender"
	"github.com/healthbite/backend/internal/rekognition"
	"github.com/healthbite/backend/internal/repository"
	"github.com/healthbite/backend/internal/upstream"
	"github.com/healthbite/backend/internal/usda"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment")
	}

	utils.InitLogger()
	logger := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	dbManager, err := database.NewManager(&database.Config{
		DatabaseEnabled: cfg.Database.Enabled,
		DatabaseURL:     cfg.Database.URL,
		RedisURL:        cfg.Redis.URL,
		LogLevel:        cfg.Database.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Database unavailable, user data routes disabled")
		dbManager, _ = database.NewManager(&database.Config{RedisURL: cfg.Redis.URL}, logger)
	}
	defer dbManager.Close()

	var repos *repository.RepositoryManager
	if dbManager.DB != nil {
		if err := migration.NewRunner(dbManager, logger).RunMigrations(cfg.Database.MigrationsPath); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		repos = repository.NewRepositoryManager(dbManager.DB)
	}

	var cache *database.Cache
	if dbManager.Redis != nil {
		cache = database.NewCache(dbManager.Redis, logger)
	}

	// Recommendations load in the background; chat answers with a
	// placeholder until they are ready.
	recommendations := recommender.NewProvider(nil, logger)
	recommendations.LoadAsync(ctx, func(ctx context.Context) (recommender.Table, error) {
		return recommender.LoadTable(ctx, cfg.Recommendations.Source, cfg.Recommendations.LoadTimeout, logger)
	})

	pipeline := buildPipeline(ctx, cfg, cache, logger)

	var assistantSvc handlers.Assistant
	if cfg.Gemini.APIKey != "" {
		svc, err := assistant.NewService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize assistant")
		} else {
			defer svc.Close()
			assistantSvc = svc
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, assistant disabled")
	}

	if err := cfg.ValidateAuth(); err != nil {
		logger.WithError(err).Warn("User routes will reject every request")
	}

	checker := buildHealthChecker(cfg, dbManager, repos, cache, logger)
	go checker.PeriodicHealthCheck(ctx, time.Minute)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimit)
	defer rateLimiter.Stop()

	router := api.NewRouter(api.Dependencies{
		Logger:          logger,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		TrustedProxies:  cfg.Server.TrustedProxies,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		RateLimiter:     rateLimiter,
		JWTSecret:       []byte(cfg.Auth.JWTSecret),
		Food:            pipeline,
		Recommendations: recommendations,
		Assistant:       assistantSvc,
		Repositories:    repos,
		Health:          checker,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Info("Server exited")
}

func buildPipeline(ctx context.Context, cfg *config.Config, cache *database.Cache, logger *logrus.Logger) *foodid.Pipeline {
	pipelineConfig := foodid.Config{
		ConfidenceThreshold: cfg.Pipeline.ConfidenceThreshold,
		Stage: upstream.RetryConfig{
			Timeout:    cfg.Pipeline.StageTimeout,
			MaxRetries: cfg.Pipeline.MaxRetries,
			Delay:      cfg.Pipeline.RetryDelay,
		},
	}

	if err := cfg.ValidatePipeline(); err != nil {
		logger.WithError(err).Warn("Food identification disabled")
		return foodid.NewPipeline(unavailable{err}, unavailable{err}, pipelineConfig, logger)
	}

	var classifier foodid.Classifier
	switch cfg.Classifier.Provider {
	case "rekognition":
		c, err := rekognition.NewFromRegion(ctx, cfg.AWS.Region, logger)
		if err != nil {
			logger.WithError(err).Warn("Food identification disabled")
			return foodid.NewPipeline(unavailable{err}, unavailable{err}, pipelineConfig, logger)
		}
		classifier = c
	default:
		classifier = clarifai.NewClient(cfg.Clarifai.BaseURL, cfg.Clarifai.APIKey, cfg.Clarifai.Model, logger)
	}

	var lookup foodid.NutritionLookup = usda.NewClient(cfg.USDA.BaseURL, cfg.USDA.APIKey, logger)
	if cache != nil {
		lookup = foodid.NewCachingLookup(lookup, cache, cfg.Pipeline.CacheTTL, logger)
	}

	logger.WithFields(logrus.Fields{
		"classifier": cfg.Classifier.Provider,
		"threshold":  cfg.Pipeline.ConfidenceThreshold,
		"cached":     cache != nil,
	}).Info("Food identification pipeline ready")

	return foodid.NewPipeline(classifier, lookup, pipelineConfig, logger)
}

func buildHealthChecker(cfg *config.Config, dbManager *database.Manager, repos *repository.RepositoryManager, cache *database.Cache, logger *logrus.Logger) *health.HealthChecker {
	var probes []health.Probe
	if dbManager.DB != nil {
		probes = append(probes, health.Probe{Name: "postgresql", Critical: true, Check: dbManager.PingDatabase})
	}
	if dbManager.Redis != nil {
		probes = append(probes, health.Probe{Name: "redis", Check: dbManager.PingRedis})
	}
	if cfg.Classifier.Provider == "clarifai" {
		probes = append(probes, health.HTTPProbe("clarifai", cfg.Clarifai.BaseURL, false))
	}
	probes = append(probes, health.HTTPProbe("usda", cfg.USDA.BaseURL, false))

	var healthRepo models.SystemHealthRepository
	if repos != nil {
		healthRepo = repos.SystemHealth
	}
	var healthCache health.Cache
	if cache != nil {
		healthCache = cache
	}
	return health.NewHealthChecker(probes, healthRepo, healthCache, logger)
}

// unavailable stands in for providers that could not be configured, so the
// endpoint still answers with the usual failure message.
type unavailable struct{ err error }

func (u unavailable) Classify(ctx context.Context, image []byte) ([]foodid.Candidate, error) {
	return nil, u.err
}

func (u unavailable) Lookup(ctx context.Context, term string) ([]foodid.FoodRecord, error) {
	return nil, u.err
}

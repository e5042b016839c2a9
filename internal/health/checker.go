package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/healthbite/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Probe checks one dependency. A failing critical probe marks the whole
// service unhealthy; any other failure only degrades it.
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// Cache is the subset of database.Cache used for health snapshots.
type Cache interface {
	CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error
	GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error)
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	probes     []Probe
	healthRepo models.SystemHealthRepository
	cache      Cache
	logger     *logrus.Logger
	timeout    time.Duration
	startTime  time.Time
}

// NewHealthChecker builds a checker. healthRepo and cache may be nil.
func NewHealthChecker(probes []Probe, healthRepo models.SystemHealthRepository, cache Cache, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		probes:     probes,
		healthRepo: healthRepo,
		cache:      cache,
		logger:     logger,
		timeout:    5 * time.Second,
		startTime:  time.Now(),
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// HTTPProbe reports an upstream API as reachable when it answers below 500.
// Auth failures still count as reachable.
func HTTPProbe(name, url string, critical bool) Probe {
	client := &http.Client{Timeout: 10 * time.Second}
	return Probe{
		Name:     name,
		Critical: critical,
		Check: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 500 {
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			}
			return nil
		},
	}
}

func (h *HealthChecker) run(ctx context.Context, probe Probe) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := probe.Check(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	if err != nil {
		status = StatusDegraded
		if probe.Critical {
			status = StatusUnhealthy
		}
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", probe.Name).Error("Health check failed")
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(probe.Name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", probe.Name).Warn("Failed to record health status")
		}
	}

	return ServiceHealth{
		Name:         probe.Name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll runs every probe concurrently; results keep probe order.
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := make([]ServiceHealth, len(h.probes))

	var wg sync.WaitGroup
	for i, probe := range h.probes {
		wg.Add(1)
		go func(i int, probe Probe) {
			defer wg.Done()
			services[i] = h.run(ctx, probe)
		}(i, probe)
	}
	wg.Wait()

	return OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.getUptime(),
	}
}

func overallStatus(services []ServiceHealth) string {
	status := StatusHealthy
	for _, service := range services {
		if service.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if service.Status == StatusDegraded {
			status = StatusDegraded
		}
	}
	return status
}

// CheckCached returns cached health status if available
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	if h.cache == nil {
		return nil, fmt.Errorf("health cache not configured")
	}
	cachedHealth, err := h.cache.GetCachedSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	services := make([]ServiceHealth, len(cachedHealth))
	for i, health := range cachedHealth {
		services[i] = ServiceHealth{
			Name:         health.ServiceName,
			Status:       health.Status,
			ResponseTime: health.ResponseTimeMs,
			Error:        health.ErrorMessage,
			LastChecked:  health.CheckedAt.Format(time.RFC3339),
		}
	}

	return &OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.getUptime(),
	}, nil
}

func (h *HealthChecker) getUptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll(ctx)
			h.store(ctx, health, 2*interval)
			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}

func (h *HealthChecker) store(ctx context.Context, health OverallHealth, ttl time.Duration) {
	if h.cache == nil {
		return
	}

	cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows := make([]models.SystemHealth, len(health.Services))
	for i, service := range health.Services {
		checkedAt, _ := time.Parse(time.RFC3339, service.LastChecked)
		rows[i] = models.SystemHealth{
			ServiceName:    service.Name,
			Status:         service.Status,
			ResponseTimeMs: service.ResponseTime,
			ErrorMessage:   service.Error,
			CheckedAt:      checkedAt,
		}
	}

	if err := h.cache.CacheSystemHealth(cacheCtx, rows, ttl); err != nil {
		h.logger.WithError(err).Error("Failed to cache health status")
	}
}

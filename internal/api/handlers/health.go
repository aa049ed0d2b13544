package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/golf-scoreboard/internal/services"
)

// CacheStatus is implemented by the leaderboard cache
type CacheStatus interface {
	Status() services.LeaderboardStatus
}

// BreakerReporter is implemented by the tournament API client
type BreakerReporter interface {
	BreakerState() gobreaker.State
	BreakerCounts() gobreaker.Counts
	BaseURL() string
}

type HealthHandler struct {
	session   Session
	cache     CacheStatus
	api       BreakerReporter
	startedAt time.Time
}

func NewHealthHandler(session Session, cache CacheStatus, api BreakerReporter) *HealthHandler {
	return &HealthHandler{
		session:   session,
		cache:     cache,
		api:       api,
		startedAt: time.Now(),
	}
}

// GetHealth always returns 200 while the process is serving
// GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	counts := h.api.BreakerCounts()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     "golf-scoreboard",
		"timestamp":   time.Now().UTC(),
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"session":     h.session.State().String(),
		"leaderboard": h.cache.Status(),
		"tournament_api": gin.H{
			"base_url":        h.api.BaseURL(),
			"circuit_breaker": h.api.BreakerState().String(),
			"breaker_counts": gin.H{
				"requests":              counts.Requests,
				"total_failures":        counts.TotalFailures,
				"consecutive_failures":  counts.ConsecutiveFailures,
				"consecutive_successes": counts.ConsecutiveSuccesses,
			},
		},
	})
}

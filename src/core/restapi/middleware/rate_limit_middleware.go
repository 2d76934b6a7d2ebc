/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/restapi/models"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	WindowSize        time.Duration `yaml:"window_size"`
	SkipPaths         []string      `yaml:"skip_paths"`
}

// DefaultRateLimitConfig returns default rate limiting configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 100,
		WindowSize:        time.Minute,
		SkipPaths:         []string{"/health", "/metrics"},
	}
}

// clientInfo holds information about client requests
type clientInfo struct {
	requests []time.Time
	mutex    sync.Mutex
}

// RateLimitMiddleware provides an in-process sliding-window HTTP rate
// limiter, keyed by bearer token or client IP.
type RateLimitMiddleware struct {
	config       *RateLimitConfig
	clients      map[string]*clientInfo
	clientsMutex sync.RWMutex
}

// NewRateLimitMiddleware creates new rate limit middleware.
func NewRateLimitMiddleware(config *RateLimitConfig) *RateLimitMiddleware {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	return &RateLimitMiddleware{
		config:  config,
		clients: make(map[string]*clientInfo),
	}
}

// Handler provides Gin middleware for rate limiting
func (rlm *RateLimitMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rlm.config.Enabled {
			c.Next()
			return
		}

		if rlm.shouldSkipPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		clientID := rlm.getClientIdentifier(c)

		if !rlm.checkLimit(c, clientID) {
			apiErr := models.RateLimitedError("rate limit exceeded")
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse(apiErr, getRequestID(c)))
			c.Abort()
			return
		}

		rlm.addRateLimitHeaders(c, clientID)
		c.Next()
	}
}

// checkLimit checks and records the request against the sliding window.
func (rlm *RateLimitMiddleware) checkLimit(c *gin.Context, clientID string) bool {
	now := time.Now()

	rlm.clientsMutex.RLock()
	client, exists := rlm.clients[clientID]
	rlm.clientsMutex.RUnlock()

	if !exists {
		client = &clientInfo{requests: make([]time.Time, 0)}
		rlm.clientsMutex.Lock()
		rlm.clients[clientID] = client
		rlm.clientsMutex.Unlock()
	}

	client.mutex.Lock()
	defer client.mutex.Unlock()

	cutoff := now.Add(-rlm.config.WindowSize)
	validRequests := client.requests[:0]
	for _, reqTime := range client.requests {
		if reqTime.After(cutoff) {
			validRequests = append(validRequests, reqTime)
		}
	}
	client.requests = validRequests

	if len(client.requests) >= rlm.config.RequestsPerMinute {
		logger.Warn("rate limit exceeded",
			logger.String("client_id", clientID),
			logger.String("path", c.Request.URL.Path),
			logger.Int("requests_count", len(client.requests)),
			logger.Int("limit", rlm.config.RequestsPerMinute))
		return false
	}

	client.requests = append(client.requests, now)
	return true
}

// addRateLimitHeaders adds rate limit information to response headers
func (rlm *RateLimitMiddleware) addRateLimitHeaders(c *gin.Context, clientID string) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(rlm.config.RequestsPerMinute))

	remaining := rlm.config.RequestsPerMinute
	rlm.clientsMutex.RLock()
	if client, exists := rlm.clients[clientID]; exists {
		client.mutex.Lock()
		remaining -= len(client.requests)
		client.mutex.Unlock()
	}
	rlm.clientsMutex.RUnlock()
	if remaining < 0 {
		remaining = 0
	}

	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(rlm.config.WindowSize).Unix(), 10))
}

// getClientIdentifier extracts client identifier for rate limiting
func (rlm *RateLimitMiddleware) getClientIdentifier(c *gin.Context) string {
	if apiKey := rlm.extractBearerToken(c); apiKey != "" {
		return "token:" + apiKey
	}
	return "ip:" + c.ClientIP()
}

// extractBearerToken extracts the bearer token from the Authorization header.
func (rlm *RateLimitMiddleware) extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	const bearerPrefix = "Bearer "
	if len(authHeader) > len(bearerPrefix) && authHeader[:len(bearerPrefix)] == bearerPrefix {
		return authHeader[len(bearerPrefix):]
	}
	return ""
}

// shouldSkipPath checks if path should be skipped from rate limiting
func (rlm *RateLimitMiddleware) shouldSkipPath(path string) bool {
	for _, skipPath := range rlm.config.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	return false
}

// CleanupOldClients removes inactive clients to prevent memory leaks
func (rlm *RateLimitMiddleware) CleanupOldClients() {
	now := time.Now()
	cleanupCutoff := now.Add(-rlm.config.WindowSize * 2)

	rlm.clientsMutex.Lock()
	defer rlm.clientsMutex.Unlock()

	for clientID, client := range rlm.clients {
		client.mutex.Lock()
		hasRecentActivity := false
		for _, reqTime := range client.requests {
			if reqTime.After(cleanupCutoff) {
				hasRecentActivity = true
				break
			}
		}
		client.mutex.Unlock()

		if !hasRecentActivity {
			delete(rlm.clients, clientID)
		}
	}
}

// StartCleanupWorker starts a background worker to clean up old clients
func (rlm *RateLimitMiddleware) StartCleanupWorker() {
	go func() {
		ticker := time.NewTicker(rlm.config.WindowSize)
		defer ticker.Stop()

		for range ticker.C {
			rlm.CleanupOldClients()
		}
	}()
}

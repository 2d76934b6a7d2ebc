/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atombpmn/flowrt/src/core/auth"
	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/restapi/models"
	"github.com/atombpmn/flowrt/src/core/restapi/utils"
)

// AuthMiddleware enforces bearer-token auth on the REST boundary.
type AuthMiddleware struct {
	authComponent *auth.Component
	bypassPaths   []string
}

// NewAuthMiddleware creates new auth middleware.
func NewAuthMiddleware(authComponent *auth.Component) *AuthMiddleware {
	return &AuthMiddleware{
		authComponent: authComponent,
		bypassPaths: []string{
			"/health",
			"/api/health",
			"/api/v1/health",
			"/api/docs",
			"/api/v1/docs",
		},
	}
}

// Authenticate provides Gin middleware for bearer-token authentication.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.authComponent == nil || !am.authComponent.IsEnabled() {
			c.Next()
			return
		}

		if am.shouldBypassAuth(c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			apiErr := models.UnauthorizedError("missing bearer token")
			c.JSON(http.StatusUnauthorized, models.ErrorResponse(apiErr, getRequestID(c)))
			c.Abort()
			return
		}

		claims, err := am.authComponent.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			logger.Warn("rejected bearer token",
				logger.String("method", c.Request.Method),
				logger.String("path", c.Request.URL.Path),
				logger.String("error", err.Error()))

			apiErr := models.UnauthorizedError("invalid or expired token")
			c.JSON(http.StatusUnauthorized, models.ErrorResponse(apiErr, getRequestID(c)))
			c.Abort()
			return
		}

		c.Set("auth_claims", claims)
		c.Next()
	}
}

// RequirePermission middleware checks for a specific permission on the
// validated token's claims.
func (am *AuthMiddleware) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get("auth_claims")
		if !exists {
			apiErr := models.InternalServerError("authentication context not found")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(apiErr, getRequestID(c)))
			c.Abort()
			return
		}

		claims, ok := raw.(*auth.Claims)
		if !ok || !auth.HasPermission(claims.Permissions, permission) {
			apiErr := models.ForbiddenError("insufficient permissions")
			c.JSON(http.StatusForbidden, models.ErrorResponse(apiErr, getRequestID(c)))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (am *AuthMiddleware) shouldBypassAuth(path string) bool {
	for _, bypassPath := range am.bypassPaths {
		if path == bypassPath || strings.HasPrefix(path, bypassPath) {
			return true
		}
	}
	return false
}

// AddBypassPath adds a path to bypass authentication.
func (am *AuthMiddleware) AddBypassPath(path string) {
	am.bypassPaths = append(am.bypassPaths, path)
}

// GetClaims extracts validated claims from the Gin context.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	raw, exists := c.Get("auth_claims")
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*auth.Claims)
	return claims, ok
}

func getRequestID(c *gin.Context) string {
	if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
		return requestID
	}
	return utils.GenerateSecureRequestID("req")
}

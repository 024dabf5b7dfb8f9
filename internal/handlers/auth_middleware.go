package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-content-service/internal/auth"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
)

const (
	contextUserID   = "user_id"
	contextUserRole = "user_role"
	contextUser     = "user"
)

// AuthMiddleware authenticates bearer tokens with the configured verifier
type AuthMiddleware struct {
	verifier auth.TokenVerifier
}

func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate rejects the request with 401 unless it carries a valid bearer token
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") || strings.TrimSpace(tokenParts[1]) == "" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := am.verifier.Verify(c.Request.Context(), strings.TrimSpace(tokenParts[1]))
		if err != nil {
			message := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "token expired"
			} else if !errors.Is(err, auth.ErrInvalidToken) {
				_ = c.Error(err)
			}
			abortUnauthorized(c, message)
			return
		}

		c.Set(contextUserID, user.ID)
		c.Set(contextUserRole, user.Role)
		c.Set(contextUser, user)

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has one of the required roles; admins always pass
func (am *AuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": err.Error(),
			})
			return
		}

		if role != models.RoleAdmin && !containsRole(requiredRoles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			return
		}

		c.Next()
	}
}

func containsRole(roles []models.UserRole, role models.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (uint, error) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return 0, errors.New("user ID not found in context")
	}

	id, ok := userID.(uint)
	if !ok || id == 0 {
		return 0, errors.New("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get(contextUserRole)
	if !exists {
		return "", errors.New("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}

	return role, nil
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-content-service/internal/services"
	"github.com/SAP-F-2025/learning-content-service/internal/utils"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the logging helpers shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs at debug level with the request scoped logger
func (h BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Debug(msg, args...)
}

// LogError logs err with the request method and path
func (h BaseHandler) LogError(c *gin.Context, err error, msg string) {
	utils.GetLogger(c, h.logger).Error(msg,
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path)
}

// parseIDParam returns 0 after writing a 400 when the param is not a positive integer
func (h BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
		})
		return 0
	}
	return uint(id)
}

// bindJSON decodes the body strictly and writes a 400 on failure
func (h BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

// actor returns the authenticated caller set by the auth middleware
func (h BaseHandler) actor(c *gin.Context) (services.Actor, bool) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return services.Actor{}, false
	}

	role, _ := GetUserRoleFromContext(c)
	return services.Actor{ID: userID, Role: role}, true
}

// handleServiceError maps service errors to status codes. Unknown errors are
// logged and reported without internal detail.
func (h BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrMaterialNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Material not found"})
	case errors.Is(err, services.ErrCategoryNotFound):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Category does not exist"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrUserExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Username or email already registered"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
	case errors.Is(err, services.ErrLocalAuthDisabled):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Local authentication is disabled"})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
	}
}

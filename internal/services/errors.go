package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/learning-content-service/internal/validator"
)

var (
	ErrMaterialNotFound   = errors.New("material not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLocalAuthDisabled  = errors.New("local authentication is disabled")
)

// ValidationErrors is returned when a request fails field validation
type ValidationErrors = validator.ValidationErrors

// PermissionError is returned when the caller may not act on a resource
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

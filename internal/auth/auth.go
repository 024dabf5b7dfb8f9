package auth

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenVerifier turns a bearer token into the local user it identifies.
// The returned user always carries the local ID and role.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// TokenIssuer signs tokens for locally authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

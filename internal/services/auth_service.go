package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/learning-content-service/internal/auth"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
	"github.com/SAP-F-2025/learning-content-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	issuer    auth.TokenIssuer
}

// NewAuthService builds the local account service. issuer is nil when tokens
// come from an external identity provider; register and login are then disabled.
func NewAuthService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, issuer auth.TokenIssuer) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		issuer:    issuer,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if s.issuer == nil {
		return nil, ErrLocalAuthDisabled
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.logger.Info("Registering user", "username", req.Username)

	exists, err := s.repo.User().ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (string, *models.User, error) {
	if s.issuer == nil {
		return "", nil, ErrLocalAuthDisabled
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return "", nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("Login failed", "user_id", user.ID)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return token, user, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/learning-content-service/internal/config"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
)

// externalPasswordHash marks users provisioned from the identity provider.
// It is not a bcrypt hash, so password login never succeeds for them.
const externalPasswordHash = "!casdoor"

// CasdoorParser is the part of the casdoor client the verifier needs
type CasdoorParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorVerifier validates casdoor tokens and maps the external account onto a
// local user, creating it on first sight so materials keep a local created_by.
type CasdoorVerifier struct {
	parser CasdoorParser
	users  repositories.UserRepository
}

func NewCasdoorVerifier(cfg config.CasdoorConfig, users repositories.UserRepository) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return NewCasdoorVerifierWithParser(client, users)
}

func NewCasdoorVerifierWithParser(parser CasdoorParser, users repositories.UserRepository) *CasdoorVerifier {
	return &CasdoorVerifier{parser: parser, users: users}
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := v.parser.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	username := strings.TrimSpace(claims.User.Name)
	if username == "" {
		return nil, fmt.Errorf("%w: missing user name", ErrInvalidToken)
	}

	user, err := v.users.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	return v.provision(ctx, claims)
}

func (v *CasdoorVerifier) provision(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(claims.User.Email))
	if email == "" {
		email = claims.User.Name + "@" + claims.User.Owner
	}

	user := &models.User{
		Username:     claims.User.Name,
		Email:        email,
		PasswordHash: externalPasswordHash,
		Role:         mapCasdoorRole(claims.User.Type, claims.User.IsAdmin),
	}

	if err := v.users.Create(ctx, user); err != nil {
		// A concurrent request may have provisioned the same account.
		if existing, getErr := v.users.GetByUsername(ctx, user.Username); getErr == nil {
			return existing, nil
		}
		return nil, errors.Join(fmt.Errorf("provision casdoor user %s", user.Username), err)
	}

	return user, nil
}

// mapCasdoorRole maps casdoor user types onto local roles
func mapCasdoorRole(casdoorType string, isAdmin bool) models.UserRole {
	if isAdmin {
		return models.RoleAdmin
	}

	switch strings.ToLower(casdoorType) {
	case "admin", "administrator":
		return models.RoleAdmin
	case "teacher", "instructor", "educator":
		return models.RoleInstructor
	default:
		return models.RoleStudent
	}
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/potluckhq/potluck/internal/auth"
	"github.com/potluckhq/potluck/internal/fault"
	"github.com/potluckhq/potluck/internal/models"
	"github.com/potluckhq/potluck/internal/storage"
)

// AuthService handles registration and login, issuing stateless JWTs.
type AuthService struct {
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates an authentication service.
func NewAuthService(authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
	}
}

// Register creates an account and returns it with a session token. The
// birthday is optional; without one the user cannot receive in birthday
// groups.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string, birthday time.Time) (*models.User, string, error) {
	if email == "" || displayName == "" {
		return nil, "", fault.Validation("email and display name are required")
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password, birthday)
	if err != nil {
		slog.Warn("registration failed", "email", email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, "", fault.Conflict("email already registered")
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, "", fault.Validation("%s", err.Error())
		}
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}
	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates the credentials and returns the user with a session
// token. Bad credentials surface as auth.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "email", email)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}
	slog.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// CurrentUser fetches the account for an authenticated user id.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

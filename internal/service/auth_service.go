package service

import (
	"context"
	"log/slog"

	"github.com/savora-app/savora/internal/auth"
	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/storage"
)

// AuthService handles signup and login, issuing session tokens.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates an AuthService.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
	}
}

// Signup registers a new user with zero balances and returns the user
// snapshot and a session token.
func (s *AuthService) Signup(ctx context.Context, name, email, phone, password string) (*models.User, string, error) {
	user, err := s.authenticator.Register(ctx, name, email, phone, password)
	if err != nil {
		slog.Warn("Signup failed", "email", email, "error", err)
		return nil, "", err
	}

	welcome := &models.Notification{
		Title:   "Welcome to Savora!",
		Message: "Your journey to financial freedom starts here. Create a savings goal or join a Susu group!",
		Type:    models.NotificationSuccess,
	}
	if err := s.store.AppendNotification(ctx, user.ID, welcome); err != nil {
		slog.Warn("Failed to store welcome notification", "user_id", user.ID, "error", err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("User signed up", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user snapshot and a session
// token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("User logged in", "user_id", user.ID)
	return user, token, nil
}

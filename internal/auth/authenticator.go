package auth

import (
	"context"

	"github.com/savora-app/savora/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password,
// OTP over mobile money, OAuth, etc.) without changing the service layer.
type Authenticator interface {
	// Register creates a new user account. The credential format depends
	// on the implementation (a password here).
	Register(ctx context.Context, name, email, phone, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if
	// successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error
}

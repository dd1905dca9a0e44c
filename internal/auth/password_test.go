package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/savora-app/savora/internal/models"
)

// memoryUserStorage is a map-backed UserStorage for authenticator tests.
type memoryUserStorage struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func newMemoryUserStorage() *memoryUserStorage {
	return &memoryUserStorage{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *memoryUserStorage) CreateUser(_ context.Context, user *models.User) error {
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

func (s *memoryUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.byEmail[email], nil
}

func (s *memoryUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, models.ErrUserNotFound
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("New users start with zero balances", func(t *testing.T) {
		a := NewPasswordAuthenticator(newMemoryUserStorage())

		user, err := a.Register(ctx, "Kwame Appiah", "kwame@example.com", "+233240000000", "correct-horse")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if !user.WalletBalance.IsZero() || !user.SavingsBalance.IsZero() {
			t.Errorf("Expected zero balances, got wallet=%s savings=%s", user.WalletBalance, user.SavingsBalance)
		}
		if user.PasswordHash == "correct-horse" {
			t.Error("Password stored in plain text")
		}
	})

	t.Run("Avatar and referral code are derived from the name", func(t *testing.T) {
		a := NewPasswordAuthenticator(newMemoryUserStorage())

		user, err := a.Register(ctx, "Kwame Appiah", "kwame2@example.com", "", "correct-horse")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.Avatar != "KA" {
			t.Errorf("Avatar: got %q, want KA", user.Avatar)
		}
		if matched, _ := regexp.MatchString(`^SAVORA-KWAME-\d{4}$`, user.ReferralCode); !matched {
			t.Errorf("ReferralCode: got %q", user.ReferralCode)
		}
	})

	t.Run("Short passwords are rejected", func(t *testing.T) {
		a := NewPasswordAuthenticator(newMemoryUserStorage())

		if _, err := a.Register(ctx, "Ama", "ama@example.com", "", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("Expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		a := NewPasswordAuthenticator(newMemoryUserStorage())

		if _, err := a.Register(ctx, "Ama", "dup@example.com", "", "long-enough"); err != nil {
			t.Fatalf("First Register failed: %v", err)
		}
		if _, err := a.Register(ctx, "Other Ama", "dup@example.com", "", "long-enough"); !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryUserStorage())

	registered, err := a.Register(ctx, "Esi Owusu", "esi@example.com", "", "super-secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("Correct credentials return the user", func(t *testing.T) {
		user, err := a.Authenticate(ctx, "esi@example.com", "super-secret")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.ID != registered.ID {
			t.Errorf("ID: got %s, want %s", user.ID, registered.ID)
		}
	})

	t.Run("Wrong password fails", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "esi@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Unknown email fails", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "nobody@example.com", "super-secret"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Kwame Appiah", "KA"},
		{"Ama", "A"},
		{"Ama Serwaa Mensah", "AS"},
	}
	for _, tt := range tests {
		if got := initials(tt.name); got != tt.want {
			t.Errorf("initials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

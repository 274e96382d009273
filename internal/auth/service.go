package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/roomchat/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service provides authentication operations.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig

	// dummyHash is compared against when the user is unknown so both failure paths cost the same.
	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new user with a hashed password.
// Nothing is persisted unless hashing succeeds.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return ErrInvalidUsername
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordBytes {
		return ErrInvalidPassword
	}

	// Check if user already exists
	_, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrUserExists
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("lookup user: %w", err)
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return ErrInvalidPassword
		}
		return err
	}

	if _, err := s.store.CreateUser(ctx, username, hashedPassword); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, store.ErrConflict) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// Login validates credentials and returns a JWT token along with the canonical username.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (token, name string, err error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = ComparePassword(s.fallbackHash(), password)
			return "", "", ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("lookup user: %w", err)
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err = GenerateToken(s.jwtConfig, user.ID, user.Username)
	if err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}

	return token, user.Username, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

func (s *Service) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := HashPassword("not-a-real-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

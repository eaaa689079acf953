package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// OrganizerPasswordCost is the bcrypt cost used for ORGANIZER_PASSWORD_HASH.
const OrganizerPasswordCost = 12

// HashOrganizerPassword returns a value suitable for ORGANIZER_PASSWORD_HASH.
func HashOrganizerPassword(password string) (string, error) {
	if password == "" {
		return "", newError(ErrValidationFailed, "organizer password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), OrganizerPasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash organizer password: %w", err)
	}
	return string(hash), nil
}

type AuthService interface {
	// LoginOrganizer checks password against the configured organizer hash.
	LoginOrganizer(ctx context.Context, password string) error
}

type authService struct {
	organizerPasswordHash []byte
}

func NewAuthService(organizerPasswordHash string) AuthService {
	return &authService{organizerPasswordHash: []byte(organizerPasswordHash)}
}

func (s *authService) LoginOrganizer(_ context.Context, password string) error {
	if len(s.organizerPasswordHash) == 0 {
		return ErrOrganizerLoginOff
	}
	if password == "" {
		return ErrInvalidCredentials
	}
	// битый хеш в конфиге тоже даёт отказ
	if err := bcrypt.CompareHashAndPassword(s.organizerPasswordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"vital/config"
	"vital/internal/auth"
	"vital/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService signs in support staff for the admin tooling.
type AuthService struct {
	cfg    *config.Config
	admins *repository.AdminRepository
}

func NewAuthService(cfg *config.Config, admins *repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, admins: admins}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
}

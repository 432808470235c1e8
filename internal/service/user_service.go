package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"wellatlas/internal/auth"
	"wellatlas/internal/domain"
	"wellatlas/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
	authCfg  *auth.Config
}

func NewUserService(userRepo *repository.UserRepository, authCfg *auth.Config) *UserService {
	return &UserService{userRepo: userRepo, authCfg: authCfg}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: name, email and password required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.sessionToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and mints a session token. Unknown email
// and wrong password both come back as ErrForbidden.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrForbidden
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrForbidden
	}

	token, err := s.sessionToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) sessionToken(userID int64) (string, error) {
	token, err := auth.GenerateToken(userID, []byte(s.authCfg.SecretKey), s.authCfg.Validity())
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return token, nil
}

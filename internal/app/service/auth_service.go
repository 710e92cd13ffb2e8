package service

import (
	"context"
	"errors"
	"fmt"

	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/common/security"
	"psjudge_frontend/internal/domain/model"
	"psjudge_frontend/internal/domain/repository"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Login authenticates a username/password pair. A wrong username and a wrong
// password are indistinguishable to the caller: both are ErrLoginFailed.
// Comparison is bcrypt hash-to-hash only.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, common.ErrLoginFailed
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrLoginFailed
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, common.ErrLoginFailed
	}

	return user, nil
}

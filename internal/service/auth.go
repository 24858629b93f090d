package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/logger"
	"rentkart-backend/internal/repository"
	"rentkart-backend/internal/security"
)

type AuthService interface {
	Register(ctx context.Context, email, name, password string, role domain.Role) (*domain.User, error)
	// Login returns a signed token for valid credentials. Invalid email
	// and invalid password are indistinguishable to the caller.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, email, name, password string, role domain.Role) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &domain.ValidationError{Reason: "a valid email is required"}
	}
	if len(password) < 8 {
		return nil, &domain.ValidationError{Reason: "password must be at least 8 characters"}
	}
	switch role {
	case domain.RoleCustomer, domain.RoleVendor:
	default:
		return nil, &domain.ValidationError{Reason: "role must be CUSTOMER or VENDOR"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return "", nil, &domain.AuthorizationError{Reason: "invalid credentials"}
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, &domain.AuthorizationError{Reason: "invalid credentials"}
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

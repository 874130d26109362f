package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const (
	minPasswordLength = 6
	// bcrypt refuses longer input.
	maxPasswordLength = 72
)

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := requireFields("name", req.Name, "email", req.Email, "phone", req.Phone, "password", req.Password); err != nil {
		return nil, err
	}
	if !validEmail(req.Email) {
		return nil, model.NewFieldError(model.ErrCodeInvalidField, "email", "is not a valid address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, model.NewFieldError(model.ErrCodeInvalidField, "password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(req.Password) > maxPasswordLength {
		return nil, model.NewFieldError(model.ErrCodeInvalidField, "password", fmt.Sprintf("must be at most %d bytes", maxPasswordLength))
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		s.logger.Debug().Str("email", req.Email).Msg("registration with existing email")
		return nil, model.ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
	}

	// A concurrent registration can still win the race; the repository maps
	// the unique violation to ErrDuplicateEmail.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if err := requireFields("email", email, "password", req.Password); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info().Int64("user_id", user.ID).Msg("login with wrong password")
		return nil, model.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: model.UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/auth"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/repository"
	"github.com/sakif/storyblog/internal/validation"
)

const MaxUsernameLength = 50

// AuthService registers accounts and logs them in.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                                 ↘ PasswordService (bcrypt)
//	                                 ↘ TokenService (JWT)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	validate *validator.Validate,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		validate:  validate,
		logger:    logger,
	}
}

// Register creates an account. A taken username is apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, creds model.Credentials) (*model.User, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := s.validate.Struct(creds); err != nil {
		return nil, validation.Error(err)
	}
	if len(creds.Username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}

	hash, err := s.passwords.Hash(creds.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	user := &model.User{Username: creds.Username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", user.Username))
	return user, nil
}

// Login checks the credentials and issues an access token.
//
// Unknown user and wrong password both return apperror.Unauthorized() and
// take the same bcrypt time, so the response reveals nothing about which
// usernames exist.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (*model.TokenResponse, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, apperror.Unauthorized()
	}

	user, err := s.users.GetUserByUsername(ctx, creds.Username)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		_ = s.passwords.VerifyMissingUser(creds.Password)
		s.logger.Info("login rejected", slog.String("username", creds.Username))
		return nil, apperror.Unauthorized()
	case err != nil:
		return nil, fmt.Errorf("service/auth: looking up %s: %w", creds.Username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Info("login rejected", slog.String("username", creds.Username))
			return nil, apperror.Unauthorized()
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.Username, err)
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))
	return &model.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

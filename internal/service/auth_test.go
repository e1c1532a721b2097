package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/auth"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/validation"
)

// =========================================================================
// MOCK USER REPOSITORY
// =========================================================================

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if _, ok := m.users[u.Username]; ok {
		return apperror.Conflict("user", u.Username)
	}
	u.ID = "user-" + u.Username
	stored := *u
	m.users[u.Username] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	result := *u
	return &result, nil
}

func newTestAuthService(t *testing.T) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(newMockUserRepo(), tokens, auth.NewPasswordServiceWithCost(4), validation.New(), discardLogger())
	return svc, tokens
}

func TestRegister_ThenLogin(t *testing.T) {
	svc, tokens := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, model.Credentials{Username: " alice ", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	tok, err := svc.Login(ctx, model.Credentials{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	subject, err := tokens.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, model.Credentials{Username: "alice", Password: "a"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, model.Credentials{Username: "alice", Password: "b"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), model.Credentials{Username: "", Password: "x"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = svc.Register(context.Background(), model.Credentials{Username: "bob", Password: ""})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, model.Credentials{Username: "alice", Password: "right"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, model.Credentials{Username: "alice", Password: "wrong"})
	_, unknownUser := svc.Login(ctx, model.Credentials{Username: "mallory", Password: "right"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.True(t, errors.Is(wrongPassword, apperror.ErrUnauthorized))
	assert.True(t, errors.Is(unknownUser, apperror.ErrUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

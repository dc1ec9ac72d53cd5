package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBlocklist struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func (b *memoryBlocklist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids[id] = ttl
	return nil
}

func (b *memoryBlocklist) IsRevoked(_ context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ids[id]
	return ok, nil
}

func newAuth(t *testing.T) (*service.AuthService, *testEnv, *memoryBlocklist) {
	env := newTestEnv(t)
	bl := &memoryBlocklist{ids: map[string]time.Duration{}}
	return service.NewAuthService(env.db, "test-secret", time.Hour, bl), env, bl
}

func registerRequest(username string) *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Ann",
		LastName:  "Smith",
		Password:  "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _, _ := newAuth(t)

	user, err := auth.Register(ctx, registerRequest("ann"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	token, err := auth.Login(ctx, "ann@example.com", "correct-horse")
	require.NoError(t, err)

	got, claims, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "ann", claims.Username)
	assert.NotEmpty(t, claims.ID)

	_, err = auth.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterRejectsReservedAndDuplicates(t *testing.T) {
	auth, _, _ := newAuth(t)

	_, err := auth.Register(ctx, registerRequest("me"))
	requireFieldError(t, err, "username")

	_, err = auth.Register(ctx, registerRequest("ann"))
	require.NoError(t, err)

	dup := registerRequest("ann")
	dup.Email = "other@example.com"
	_, err = auth.Register(ctx, dup)
	requireFieldError(t, err, "username")

	dup = registerRequest("other")
	dup.Email = "ann@example.com"
	_, err = auth.Register(ctx, dup)
	requireFieldError(t, err, "email")
}

func TestLogoutRevokesToken(t *testing.T) {
	auth, env, bl := newAuth(t)
	user := testhelpers.CreateUser(t, env.db, "ann")

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	_, claims, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, claims))
	assert.Contains(t, bl.ids, claims.ID)
	assert.True(t, bl.ids[claims.ID] > 0 && bl.ids[claims.ID] <= time.Hour)

	_, _, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	auth, env, _ := newAuth(t)
	user := testhelpers.CreateUser(t, env.db, "ann")

	_, _, err := auth.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other := service.NewAuthService(env.db, "other-secret", time.Hour, nil)
	foreign, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, _, err = auth.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	expired := service.NewAuthService(env.db, "test-secret", -time.Minute, nil)
	old, err := expired.GenerateToken(user)
	require.NoError(t, err)
	_, _, err = auth.Authenticate(ctx, old)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	require.NoError(t, env.db.Delete(user).Error)
	_, _, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestSetPassword(t *testing.T) {
	auth, env, _ := newAuth(t)
	user := testhelpers.CreateUser(t, env.db, "ann")

	err := auth.SetPassword(ctx, user, &types.SetPasswordRequest{CurrentPassword: "wrong", NewPassword: "brand-new-pass"})
	requireFieldError(t, err, "current_password")

	require.NoError(t, auth.SetPassword(ctx, user, &types.SetPasswordRequest{
		CurrentPassword: testhelpers.TestPassword,
		NewPassword:     "brand-new-pass",
	}))

	_, err = auth.Login(ctx, user.Email, "brand-new-pass")
	assert.NoError(t, err)
	_, err = auth.Login(ctx, user.Email, testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

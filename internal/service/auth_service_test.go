package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(store *fakeStore) *AuthService {
	return NewAuthService(store.userRepo(), store.postRepo(), "test-secret")
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestAuthService(store)

	resp, err := svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Username: "ana",
		Password: "hunter2pass1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ana", resp.User.Username)
	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, "hunter2pass1", resp.User.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Username: "ana2",
		Password: "hunter2pass1",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, RegisterInput{
		Email:    "other@example.com",
		Username: "ana",
		Password: "hunter2pass1",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Username: "ana",
		Password: "hunter2pass1",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "hunter2pass1"})
	require.NoError(t, err)
	assert.Equal(t, "ana", resp.User.Username)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.Posts)

	_, err = svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrongpass99"})
	assert.ErrorIs(t, err, ErrInvalidCreds)

	// Unknown email reports the same error as a wrong password.
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "hunter2pass1"})
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestGenerateToken(t *testing.T) {
	store := newFakeStore()
	svc := newTestAuthService(store)

	user := seedUser(t, store, "ana")
	tokenStr, err := svc.GenerateToken(user.ID)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), sub)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("correct horse battery")
	require.NoError(t, err)

	assert.True(t, verifyPassword("correct horse battery", hash))
	assert.False(t, verifyPassword("wrong horse", hash))
	assert.False(t, verifyPassword("correct horse battery", "not-a-valid-hash"))

	// Fresh salt per hash.
	other, err := hashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vietanh2810/inventory-api/internal/domain"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)
	ctx := context.Background()

	created, err := svc.Signup(ctx, domain.User{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", created.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123")))

	_, err = svc.Signup(ctx, domain.User{Username: "alice", Email: "other@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrUserUsernameExists)

	user, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Login(ctx, "alice", "wrong-password1")
	require.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(ctx, "nobody", "secret123")
	require.ErrorIs(t, err, ErrUserNotFound)
}

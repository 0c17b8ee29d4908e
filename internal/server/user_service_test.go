package server

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexwork/nexwork/internal/config"
	"github.com/nexwork/nexwork/internal/db"
	"github.com/nexwork/nexwork/internal/db/memory"
	"github.com/nexwork/nexwork/internal/types"
)

func newTestUserService() *UserService {
	return NewUserService(memory.New(), &config.PasswordConfig{BcryptCost: bcrypt.MinCost})
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService()

	user, err := svc.Register(ctx, &types.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "password123", Role: types.RoleSeeker,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, user.ID.String(), user.CandidateID())

	_, err = svc.Register(ctx, &types.RegisterRequest{
		Name: "Ada again", Email: "ada@example.com", Password: "password123", Role: types.RoleSeeker,
	})
	var exists *ErrEmailAlreadyExists
	assert.ErrorAs(t, err, &exists)

	_, err = svc.Register(ctx, &types.RegisterRequest{
		Name: "Long", Email: "long@example.com", Password: strings.Repeat("x", 100), Role: types.RoleSeeker,
	})
	var invalid *ErrValidation
	assert.ErrorAs(t, err, &invalid)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService()
	registered, err := svc.Register(ctx, &types.RegisterRequest{
		Name: "Grace", Email: "grace@example.com", Password: "password123", Role: types.RoleRecruiter,
	})
	require.NoError(t, err)

	user, err := svc.Login(ctx, &types.LoginRequest{Email: "Grace@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	var badCreds *ErrInvalidCredentials
	_, err = svc.Login(ctx, &types.LoginRequest{Email: "grace@example.com", Password: "wrong-password"})
	assert.ErrorAs(t, err, &badCreds)
	_, err = svc.Login(ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorAs(t, err, &badCreds)
}

func TestUserService_Get(t *testing.T) {
	svc := newTestUserService()
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, db.ErrNotFound)
}

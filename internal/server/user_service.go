package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nexwork/nexwork/internal/config"
	"github.com/nexwork/nexwork/internal/db"
	"github.com/nexwork/nexwork/internal/types"
)

// UserStore is the account slice of the record store.
type UserStore interface {
	CreateUser(ctx context.Context, req *types.RegisterRequest, passwordHash string) (*db.UserRecord, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*db.UserRecord, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	store          UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{store: store, passwordConfig: passwordConfig}
}

// Register creates an account with a hashed password.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, config.ErrPasswordTooLong) {
			return nil, &ErrValidation{Field: "Password", Message: "too long"}
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec, err := s.store.CreateUser(ctx, req, passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, &ErrEmailAlreadyExists{Email: req.Email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &rec.User, nil
}

// Login authenticates a user and returns user data. Unknown emails and wrong
// passwords return the same error.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	rec, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrInvalidCredentials{}
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !s.passwordConfig.VerifyPassword(req.Password, rec.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return &rec.User, nil
}

// Get returns the account with id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	rec, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec.User, nil
}

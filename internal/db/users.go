package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nexwork/nexwork/internal/types"
)

// -----------------------------------------------------------------------------
// User Methods
// -----------------------------------------------------------------------------

// UserRecord is a stored account including its password hash.
type UserRecord struct {
	types.User
	PasswordHash string `json:"-"` // Never serialize to JSON
}

const userColumns = `id, name, email, role, wallet_address, skills, created_at, password_hash`

const uniqueViolation = "23505"

func scanUser(row pgx.Row) (*UserRecord, error) {
	var u UserRecord
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.WalletAddress, &u.Skills, &u.CreatedAt, &u.PasswordHash); err != nil {
		return nil, err
	}
	u.Role = types.Role(role)
	return &u, nil
}

// CreateUser inserts an account. It returns ErrDuplicateEmail when the email
// is already registered.
func (db *DB) CreateUser(ctx context.Context, req *types.RegisterRequest, passwordHash string) (*UserRecord, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, wallet_address, skills)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		req.Name, req.Email, passwordHash, string(req.Role), req.WalletAddress, nonNil(req.Skills),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUser retrieves an account by ID. It returns ErrNotFound when the id is unknown.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*UserRecord, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail retrieves an account by email. It returns ErrNotFound when
// no account uses the address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (db *DB) getUser(ctx context.Context, query string, arg any) (*UserRecord, error) {
	u, err := scanUser(db.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/techinvestorai/techinvestor-backend/internal/auth/domain"
)

// Schema creates the users table mirrored by UserRepository.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    firebase_uid  TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    display_name  TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login_at TIMESTAMPTZ
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Migrate creates the users table if needed.
func (r *UserRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// GetByUID retrieves a profile by the identity provider's uid
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	query := `
		SELECT firebase_uid, email, display_name, created_at, updated_at, last_login_at
		FROM users
		WHERE firebase_uid = $1
	`

	var p domain.Profile
	var displayName sql.NullString
	var lastLoginAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&p.UID,
		&p.Email,
		&displayName,
		&p.CreatedAt,
		&p.UpdatedAt,
		&lastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if displayName.Valid {
		p.DisplayName = &displayName.String
	}
	if lastLoginAt.Valid {
		p.LastLoginAt = &lastLoginAt.Time
	}
	return &p, nil
}

// Upsert creates the profile or refreshes its email and display name.
func (r *UserRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO users (firebase_uid, email, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (firebase_uid) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = COALESCE(EXCLUDED.display_name, users.display_name),
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, query, p.UID, p.Email, p.DisplayName).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// UpdateLastLogin updates the last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, uid string) error {
	query := `
		UPDATE users
		SET last_login_at = NOW()
		WHERE firebase_uid = $1
	`

	result, err := r.db.ExecContext(ctx, query, uid)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Ping checks the database connection.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

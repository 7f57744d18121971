package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
)

// Schema creates the portfolios table used by PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS portfolios (
    user_id    TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    portfolio  TEXT[] NOT NULL DEFAULT '{}'
);
`

type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps portfolios in a text[] column, one row per user.
type PostgresStore struct {
	db pgxConn
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// Migrate creates the table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create portfolios table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*domain.Document, error) {
	const q = `
SELECT name, email, created_at, portfolio
FROM portfolios
WHERE user_id = $1
`
	doc := domain.Document{UserID: userID}
	err := s.db.QueryRow(ctx, q, userID).Scan(&doc.Name, &doc.Email, &doc.CreatedAt, &doc.Portfolio)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select portfolio: %w", err)
	}
	if doc.Portfolio == nil {
		doc.Portfolio = []string{}
	}
	return &doc, nil
}

func (s *PostgresStore) Set(ctx context.Context, doc *domain.Document) error {
	const q = `
INSERT INTO portfolios (user_id, name, email, created_at, portfolio)
VALUES ($1, $2, $3, COALESCE($4, NOW()), $5)
ON CONFLICT (user_id) DO UPDATE
SET name = EXCLUDED.name,
    email = EXCLUDED.email,
    portfolio = EXCLUDED.portfolio
`
	portfolio := doc.Portfolio
	if portfolio == nil {
		portfolio = []string{}
	}
	var createdAt any
	if !doc.CreatedAt.IsZero() {
		createdAt = doc.CreatedAt
	}
	if _, err := s.db.Exec(ctx, q, doc.UserID, doc.Name, doc.Email, createdAt, portfolio); err != nil {
		return fmt.Errorf("upsert portfolio: %w", err)
	}
	return nil
}

func (s *PostgresStore) UnionAppend(ctx context.Context, userID, symbol string) error {
	const q = `
INSERT INTO portfolios (user_id, portfolio)
VALUES ($1, ARRAY[$2::text])
ON CONFLICT (user_id) DO UPDATE
SET portfolio = CASE
    WHEN $2::text = ANY(portfolios.portfolio) THEN portfolios.portfolio
    ELSE array_append(portfolios.portfolio, $2::text)
END
`
	if _, err := s.db.Exec(ctx, q, userID, symbol); err != nil {
		return fmt.Errorf("append symbol: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

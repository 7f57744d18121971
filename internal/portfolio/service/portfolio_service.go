package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	"github.com/techinvestorai/techinvestor-backend/internal/logging"
	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/repository"
)

// PortfolioService reads and mutates the saved-symbol set of a user.
type PortfolioService struct {
	store repository.Store
	now   func() time.Time
}

func NewPortfolioService(store repository.Store) *PortfolioService {
	return &PortfolioService{store: store, now: time.Now}
}

// AddSymbol normalizes rawSymbol and adds it to the caller's portfolio.
// Every validation failure is reported before the store is touched. Store
// failures match domain.ErrAddFailed.
func (s *PortfolioService) AddSymbol(ctx context.Context, ident *identity.Identity, rawSymbol string) (string, error) {
	if ident == nil || ident.UID == "" {
		return "", domain.ErrNotAuthenticated
	}
	if !ident.EmailVerified {
		return "", domain.ErrEmailNotVerified
	}
	symbol := domain.Normalize(rawSymbol)
	if symbol == "" {
		return "", domain.ErrEmptySymbol
	}

	if err := s.store.UnionAppend(ctx, ident.UID, symbol); err != nil {
		logging.Op(ctx, "portfolio.add_symbol").Error().Err(err).
			Str("user_id", ident.UID).Str("symbol", symbol).Msg("union append failed")
		return "", fmt.Errorf("%w: %w", domain.ErrAddFailed, err)
	}

	logging.Op(ctx, "portfolio.add_symbol").Info().
		Str("user_id", ident.UID).Str("symbol", symbol).Msg("symbol added")
	return symbol, nil
}

// FetchPortfolio returns the user's symbols in lexical order. A user
// without a document has an empty portfolio. Store failures match
// domain.ErrLoadFailed.
func (s *PortfolioService) FetchPortfolio(ctx context.Context, userID string) ([]string, error) {
	doc, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return []string{}, nil
	}
	if err != nil {
		logging.Op(ctx, "portfolio.fetch").Error().Err(err).Str("user_id", userID).Msg("get document failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailed, err)
	}

	symbols := append([]string{}, doc.Portfolio...)
	sort.Strings(symbols)
	return symbols, nil
}

// CreateDocument writes the signup document: profile fields and an empty
// portfolio.
func (s *PortfolioService) CreateDocument(ctx context.Context, userID, name, email string) error {
	doc := &domain.Document{
		UserID:    userID,
		Name:      name,
		Email:     email,
		CreatedAt: s.now(),
		Portfolio: []string{},
	}
	if err := s.store.Set(ctx, doc); err != nil {
		logging.Op(ctx, "portfolio.create_document").Error().Err(err).Str("user_id", userID).Msg("set document failed")
		return fmt.Errorf("create portfolio document: %w", err)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
)

// Store is the document-store boundary. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns domain.ErrDocumentNotFound when the user has no document.
	Get(ctx context.Context, userID string) (*domain.Document, error)
	// Set writes name, email and portfolio. CreatedAt is only written when
	// the document does not exist yet.
	Set(ctx context.Context, doc *domain.Document) error
	// UnionAppend adds symbol to the user's portfolio unless it is already
	// present. A missing document is created.
	UnionAppend(ctx context.Context, userID, symbol string) error
}

// Pinger is implemented by stores whose backend can be health-checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

func containsSymbol(symbols []string, symbol string) bool {
	for _, s := range symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

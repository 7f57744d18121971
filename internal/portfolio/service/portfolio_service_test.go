package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/repository"
)

// countingStore records calls so tests can assert that nothing was written.
type countingStore struct {
	repository.Store
	gets, sets, appends int
	err                 error
}

func (c *countingStore) Get(ctx context.Context, userID string) (*domain.Document, error) {
	c.gets++
	if c.err != nil {
		return nil, c.err
	}
	return c.Store.Get(ctx, userID)
}

func (c *countingStore) Set(ctx context.Context, doc *domain.Document) error {
	c.sets++
	if c.err != nil {
		return c.err
	}
	return c.Store.Set(ctx, doc)
}

func (c *countingStore) UnionAppend(ctx context.Context, userID, symbol string) error {
	c.appends++
	if c.err != nil {
		return c.err
	}
	return c.Store.UnionAppend(ctx, userID, symbol)
}

func newService() (*PortfolioService, *countingStore) {
	store := &countingStore{Store: repository.NewMemoryStore()}
	return NewPortfolioService(store), store
}

var verified = &identity.Identity{UID: "u1", Email: "u1@example.com", EmailVerified: true}

func TestAddSymbol_NormalizesAndPersists(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	sym, err := svc.AddSymbol(ctx, verified, "  aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", sym)

	symbols, err := svc.FetchPortfolio(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, symbols)
}

func TestAddSymbol_IsIdempotent(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	for _, raw := range []string{"AAPL", "aapl", " AaPl"} {
		_, err := svc.AddSymbol(ctx, verified, raw)
		require.NoError(t, err)
	}

	symbols, err := svc.FetchPortfolio(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, symbols, 1)
}

func TestAddSymbol_RejectsBeforeAnyWrite(t *testing.T) {
	tests := []struct {
		name  string
		ident *identity.Identity
		raw   string
		want  error
	}{
		{"no identity", nil, "AAPL", domain.ErrNotAuthenticated},
		{"empty uid", &identity.Identity{EmailVerified: true}, "AAPL", domain.ErrNotAuthenticated},
		{"unverified email", &identity.Identity{UID: "u1"}, "AAPL", domain.ErrEmailNotVerified},
		{"unverified beats empty symbol", &identity.Identity{UID: "u1"}, "  ", domain.ErrEmailNotVerified},
		{"empty symbol", verified, "   ", domain.ErrEmptySymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService()
			_, err := svc.AddSymbol(context.Background(), tt.ident, tt.raw)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, store.appends)
			assert.Zero(t, store.sets)
		})
	}
}

func TestAddSymbol_UserVisibleMessages(t *testing.T) {
	svc, _ := newService()
	_, err := svc.AddSymbol(context.Background(), nil, "AAPL")
	assert.EqualError(t, err, "Please login to add stocks to your portfolio")

	_, err = svc.AddSymbol(context.Background(), &identity.Identity{UID: "u1"}, "AAPL")
	assert.EqualError(t, err, "Please verify your email before adding stocks")
}

func TestAddSymbol_StoreFailure(t *testing.T) {
	svc, store := newService()
	boom := errors.New("unavailable")
	store.err = boom

	_, err := svc.AddSymbol(context.Background(), verified, "AAPL")
	assert.ErrorIs(t, err, domain.ErrAddFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.appends)
}

func TestFetchPortfolio_MissingDocumentIsEmpty(t *testing.T) {
	svc, _ := newService()
	symbols, err := svc.FetchPortfolio(context.Background(), "ghost")
	require.NoError(t, err)
	assert.NotNil(t, symbols)
	assert.Empty(t, symbols)
}

func TestFetchPortfolio_SortedOutput(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	for _, s := range []string{"msft", "aapl", "goog"} {
		_, err := svc.AddSymbol(ctx, verified, s)
		require.NoError(t, err)
	}

	symbols, err := svc.FetchPortfolio(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, symbols)
}

func TestFetchPortfolio_StoreFailure(t *testing.T) {
	svc, store := newService()
	store.err = errors.New("timeout")

	_, err := svc.FetchPortfolio(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrLoadFailed)
}

func TestCreateDocument(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	require.NoError(t, svc.CreateDocument(ctx, "u1", "Ada", "ada@example.com"))
	assert.Equal(t, 1, store.sets)

	symbols, err := svc.FetchPortfolio(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, symbols)

	doc, err := store.Store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", doc.Name)
	assert.False(t, doc.CreatedAt.IsZero())
}

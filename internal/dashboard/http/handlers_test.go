package http

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techinvestorai/techinvestor-backend/internal/auth"
	"github.com/techinvestorai/techinvestor-backend/internal/dashboard/service"
	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	marketdomain "github.com/techinvestorai/techinvestor-backend/internal/marketdata/domain"
	marketservice "github.com/techinvestorai/techinvestor-backend/internal/marketdata/service"
	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/source"
	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/repository"
	portfolioservice "github.com/techinvestorai/techinvestor-backend/internal/portfolio/service"
)

type brokenStore struct{ repository.Store }

func (brokenStore) Get(ctx context.Context, userID string) (*domain.Document, error) {
	return nil, errors.New("unavailable")
}

type brokenQuotes struct{}

func (brokenQuotes) Quote(ctx context.Context, symbol string) (*marketdomain.Quote, error) {
	return nil, errors.New("rate limited")
}

func setupRouter(store repository.Store, sources source.Sources, ident *identity.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api/v1", func(c *gin.Context) {
		if ident != nil {
			auth.SetIdentity(c, ident)
		}
		c.Next()
	})
	svc := service.NewDashboardService(
		portfolioservice.NewPortfolioService(store),
		marketservice.NewMarketService(sources, nil),
	)
	New(svc).Register(rg)
	return r
}

func mockSources() source.Sources {
	return source.FromMock(source.NewMock(0, source.WithRand(rand.New(rand.NewPCG(5, 6)))))
}

func seededStore(t *testing.T, uid string, symbols ...string) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	for _, s := range symbols {
		require.NoError(t, store.UnionAppend(context.Background(), uid, s))
	}
	return store
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetHoldings(t *testing.T) {
	ident := &identity.Identity{UID: "u1", EmailVerified: true}
	r := setupRouter(seededStore(t, "u1", "MSFT", "AAPL"), mockSources(), ident)

	w := get(r, "/api/v1/dashboard/portfolio")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Portfolio []struct {
			Symbol         string `json:"symbol"`
			Name           string `json:"name"`
			Recommendation string `json:"recommendation"`
		} `json:"portfolio"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Portfolio, 2)
	assert.Equal(t, "AAPL", resp.Portfolio[0].Symbol)
	assert.Equal(t, "MSFT Corp.", resp.Portfolio[1].Name)
	assert.Contains(t, []string{"buy", "hold", "sell"}, resp.Portfolio[0].Recommendation)
}

func TestGetHoldings_Anonymous(t *testing.T) {
	r := setupRouter(repository.NewMemoryStore(), mockSources(), nil)

	w := get(r, "/api/v1/dashboard/portfolio")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Please log in to view your portfolio."}`, w.Body.String())
}

func TestGetHoldings_EmptyPortfolio(t *testing.T) {
	r := setupRouter(repository.NewMemoryStore(), mockSources(), &identity.Identity{UID: "u1"})

	w := get(r, "/api/v1/dashboard/portfolio")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"portfolio":[]}`, w.Body.String())
}

func TestGetHoldings_Failures(t *testing.T) {
	ident := &identity.Identity{UID: "u1"}

	w := get(setupRouter(brokenStore{}, mockSources(), ident), "/api/v1/dashboard/portfolio")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load your portfolio"}`, w.Body.String())

	sources := mockSources()
	sources.Quotes = brokenQuotes{}
	w = get(setupRouter(seededStore(t, "u1", "AAPL"), sources, ident), "/api/v1/dashboard/portfolio")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load market data"}`, w.Body.String())
}

func TestGetSocial(t *testing.T) {
	ident := &identity.Identity{UID: "u1"}

	w := get(setupRouter(repository.NewMemoryStore(), mockSources(), ident), "/api/v1/dashboard/social")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[]}`, w.Body.String())

	w = get(setupRouter(seededStore(t, "u1", "NVDA"), mockSources(), ident), "/api/v1/dashboard/social")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Posts []string `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Posts, 3)

	w = get(setupRouter(repository.NewMemoryStore(), mockSources(), nil), "/api/v1/dashboard/social")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/domain"
	"github.com/techinvestorai/techinvestor-backend/internal/marketdata/source"
)

// NewsBoard caches the market headlines. The cache is filled by Refresh,
// which the scheduler calls periodically; a read before the first
// successful refresh fetches synchronously.
type NewsBoard struct {
	source source.MarketNewsSource
	log    zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	items     []domain.MarketNewsItem
	updatedAt time.Time
}

// Board is a snapshot of the cached headlines.
type Board struct {
	Items     []domain.MarketNewsItem `json:"items"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func NewNewsBoard(src source.MarketNewsSource, log zerolog.Logger) *NewsBoard {
	return &NewsBoard{source: src, log: log, now: time.Now}
}

// Refresh replaces the cached headlines. On failure the previous board is
// kept.
func (b *NewsBoard) Refresh(ctx context.Context) error {
	items, err := b.source.MarketNews(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("news board refresh failed")
		return err
	}

	b.mu.Lock()
	b.items = items
	b.updatedAt = b.now()
	b.mu.Unlock()

	b.log.Debug().Int("items", len(items)).Msg("news board refreshed")
	return nil
}

// Current returns the cached board.
func (b *NewsBoard) Current(ctx context.Context) (*Board, error) {
	b.mu.RLock()
	ready := !b.updatedAt.IsZero()
	b.mu.RUnlock()

	if !ready {
		if err := b.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Board{
		Items:     append([]domain.MarketNewsItem(nil), b.items...),
		UpdatedAt: b.updatedAt,
	}, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
)

const (
	userKeyPrefix = "portfolio:user:" // portfolio:user:{user_id}:symbols and portfolio:user:{user_id}:meta
	symbolsSuffix = ":symbols"
	metaSuffix    = ":meta"
)

// RedisStore keeps each portfolio as a Redis set plus a metadata hash.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*domain.Document, error) {
	pipe := r.client.Pipeline()
	metaCmd := pipe.HGetAll(ctx, r.metaKey(userID))
	symbolsCmd := pipe.SMembers(ctx, r.symbolsKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	meta := metaCmd.Val()
	symbols := symbolsCmd.Val()
	if len(meta) == 0 && len(symbols) == 0 {
		return nil, domain.ErrDocumentNotFound
	}

	doc := &domain.Document{
		UserID:    userID,
		Name:      meta["name"],
		Email:     meta["email"],
		Portfolio: symbols,
	}
	if ts := meta["created_at"]; ts != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		doc.CreatedAt = createdAt
	}
	if doc.Portfolio == nil {
		doc.Portfolio = []string{}
	}
	return doc, nil
}

func (r *RedisStore) Set(ctx context.Context, doc *domain.Document) error {
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	metaKey := r.metaKey(doc.UserID)
	symbolsKey := r.symbolsKey(doc.UserID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, metaKey, "name", doc.Name, "email", doc.Email)
		pipe.HSetNX(ctx, metaKey, "created_at", createdAt.UTC().Format(time.RFC3339Nano))
		pipe.Del(ctx, symbolsKey)
		if len(doc.Portfolio) > 0 {
			members := make([]interface{}, len(doc.Portfolio))
			for i, s := range doc.Portfolio {
				members[i] = s
			}
			pipe.SAdd(ctx, symbolsKey, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set portfolio: %w", err)
	}
	return nil
}

func (r *RedisStore) UnionAppend(ctx context.Context, userID, symbol string) error {
	metaKey := r.metaKey(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.symbolsKey(userID), symbol)
		pipe.HSetNX(ctx, metaKey, "created_at", r.now().UTC().Format(time.RFC3339Nano))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add symbol: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) symbolsKey(userID string) string {
	return fmt.Sprintf("%s%s%s", userKeyPrefix, userID, symbolsSuffix)
}

func (r *RedisStore) metaKey(userID string) string {
	return fmt.Sprintf("%s%s%s", userKeyPrefix, userID, metaSuffix)
}

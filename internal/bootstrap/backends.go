package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/techinvestorai/techinvestor-backend/config"
	httpapi "github.com/techinvestorai/techinvestor-backend/internal/api/http"
	"github.com/techinvestorai/techinvestor-backend/internal/auth"
	authrepo "github.com/techinvestorai/techinvestor-backend/internal/auth/repository"
	authservice "github.com/techinvestorai/techinvestor-backend/internal/auth/service"
	"github.com/techinvestorai/techinvestor-backend/internal/identity"
	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/repository"
	"github.com/techinvestorai/techinvestor-backend/internal/storage/postgres"
)

// Backends holds every external connection the service opened. Fields for
// backends that are not configured stay nil.
type Backends struct {
	Provider identity.Provider
	Store    repository.Store
	Profiles authservice.ProfileDirectory

	Firebase *auth.FirebaseClients
	Redis    *redis.Client
	Pool     *pgxpool.Pool
	SQL      *sql.DB

	// Health lists the backends reported by /health.
	Health map[string]httpapi.Pinger

	log zerolog.Logger
}

// OpenBackends connects the identity provider, the portfolio store and
// the optional profile directory selected by cfg. On error everything
// opened so far is closed.
func OpenBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backends, error) {
	b := &Backends{Health: make(map[string]httpapi.Pinger), log: log}
	if err := b.open(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}

	log.Info().
		Str("identity", cfg.Identity.Backend).
		Str("store", cfg.Store.Backend).
		Bool("profiles", b.Profiles != nil).
		Bool("redis", b.Redis != nil).
		Msg("backends ready")
	return b, nil
}

func (b *Backends) open(ctx context.Context, cfg *config.Config) error {
	var err error
	if cfg.Identity.Backend == "firebase" || cfg.Store.Backend == "firestore" {
		b.Firebase, err = auth.InitializeFirebase(ctx, &cfg.Firebase, cfg.Store.Backend == "firestore")
		if err != nil {
			return err
		}
		b.log.Info().Str("project_id", cfg.Firebase.ProjectID).Msg("firebase initialized")
	}

	if cfg.Store.Backend == "redis" || cfg.Redis.SessionBroker {
		b.Redis, err = OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		b.Health["redis"] = redisPinger{b.Redis}
	}

	switch cfg.Identity.Backend {
	case "firebase":
		toolkit := identity.NewToolkitClient("", cfg.Firebase.APIKey, cfg.Firebase.RateLimit)
		b.Provider = identity.NewFirebaseProvider(b.Firebase.Auth, toolkit)
	default:
		b.Provider = identity.NewMemoryProvider(cfg.Identity.SessionSecret, cfg.Identity.SessionTTL)
	}

	if err := b.openStore(ctx, cfg); err != nil {
		return err
	}

	if cfg.Database.DSN != "" || cfg.Store.Backend == "postgres" {
		b.SQL, err = postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		profiles := authrepo.NewUserRepository(b.SQL)
		if err := profiles.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate profile directory: %w", err)
		}
		b.Profiles = profiles
		b.Health["profiles"] = profiles
	}
	return nil
}

func (b *Backends) openStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Store.Backend {
	case "firestore":
		b.Store = repository.NewFirestoreStore(b.Firebase.Firestore)
	case "redis":
		b.Store = repository.NewRedisStore(b.Redis)
	case "postgres":
		pool, err := OpenDB(ctx, DBOptions{
			DSN:      cfg.Database.PostgresDSN(),
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return err
		}
		b.Pool = pool
		store := repository.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate portfolio store: %w", err)
		}
		b.Store = store
		b.Health["store"] = store
	default:
		b.Store = repository.NewMemoryStore()
	}
	return nil
}

// Close releases every connection. It is safe on a partially opened set.
func (b *Backends) Close() {
	var errs []error
	if b.SQL != nil {
		errs = append(errs, b.SQL.Close())
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	if b.Firebase != nil {
		errs = append(errs, b.Firebase.Close())
	}
	if err := errors.Join(errs...); err != nil {
		b.log.Warn().Err(err).Msg("closing backends")
	}
}

type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

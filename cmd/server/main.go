// Command server runs the marketplace HTTP API.
//
//	@title						Marketplace API
//	@version					1.0
//	@description				Lodging marketplace: users, places, amenities and reviews.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/hbnb/marketplace/internal/api"
	"github.com/hbnb/marketplace/internal/api/handler"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/core/service"
	"github.com/hbnb/marketplace/internal/infrastructure/config"
	"github.com/hbnb/marketplace/internal/infrastructure/crypto"
	"github.com/hbnb/marketplace/internal/infrastructure/db/memory"
	"github.com/hbnb/marketplace/internal/infrastructure/db/mongo"
	"github.com/hbnb/marketplace/internal/infrastructure/db/postgres"
	"github.com/hbnb/marketplace/internal/infrastructure/db/redis"
	"github.com/hbnb/marketplace/internal/infrastructure/queue"
	"github.com/hbnb/marketplace/internal/infrastructure/token"
	"github.com/hbnb/marketplace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

// backend is the set of connected storage dependencies.
type backend struct {
	store  ports.Store
	audit  ports.AuditRepository
	redis  *goredis.Client
	health map[string]handler.Pinger
	close  []func(context.Context)
}

func (b *backend) shutdown(ctx context.Context) {
	for i := len(b.close) - 1; i >= 0; i-- {
		b.close[i](ctx)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "marketplace",
	})

	b, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		b.shutdown(closeCtx)
	}()

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		log.Warn().Msg("JWT_SECRET not set, using an ephemeral secret")
	}
	jwt, err := token.NewJWT(secret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	dispatcherCtx, stopDispatcher := context.WithCancel(context.WithoutCancel(ctx))
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, b.audit, log.With().Str("component", "audit").Logger())
	dispatcher.Start(dispatcherCtx)
	defer func() {
		stopDispatcher()
		dispatcher.Wait()
	}()

	identity := service.NewIdentityService(b.store, crypto.NewBcryptHasher(bcrypt.DefaultCost), dispatcher, log)
	if cfg.Admin.Email != "" {
		if _, err := identity.EnsureAdmin(ctx, ports.AdminInput{
			FirstName: "Admin",
			LastName:  "Admin",
			Email:     cfg.Admin.Email,
			Username:  cfg.Admin.Username,
			Password:  cfg.Admin.Password,
		}); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	var guard ports.LoginGuard
	if b.redis != nil {
		guard = redis.NewLoginGuard(b.redis, cfg.Login.MaxAttempts, cfg.Login.LockoutWindow)
	}

	e := api.NewRouter(api.Deps{
		Identity:  identity,
		Auth:      service.NewAuthService(identity, jwt, guard, log),
		Amenities: service.NewAmenityService(b.store, dispatcher, log),
		Places:    service.NewPlaceService(b.store, dispatcher, log),
		Reviews:   service.NewReviewService(b.store, dispatcher, log),
		Verifier:  jwt,
		Health:    b.health,
		Log:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// connect opens the configured store and, when configured, Redis
// concurrently, then prepares the store schema.
func connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	b := &backend{health: map[string]handler.Pinger{}}

	g, gctx := errgroup.WithContext(ctx)
	var (
		mongoStore *mongo.Store
		pgStore    *postgres.Store
	)
	switch cfg.StoreDriver {
	case config.DriverMongo:
		g.Go(func() (err error) {
			mongoStore, err = mongo.Connect(gctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "marketplace"})
			return err
		})
	case config.DriverPostgres:
		g.Go(func() (err error) {
			pgStore, err = postgres.Connect(gctx, postgres.Config{DSN: cfg.Postgres.DSN})
			return err
		})
	}
	if cfg.Redis.Addr != "" {
		g.Go(func() (err error) {
			b.redis, err = redis.Connect(gctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
			return err
		})
	}
	err := g.Wait()

	if mongoStore != nil {
		b.close = append(b.close, func(ctx context.Context) { _ = mongoStore.Close(ctx) })
	}
	if pgStore != nil {
		b.close = append(b.close, func(context.Context) { pgStore.Close() })
	}
	if b.redis != nil {
		client := b.redis
		b.close = append(b.close, func(context.Context) { _ = client.Close() })
		b.health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	if err != nil {
		b.shutdown(context.Background())
		return nil, err
	}

	switch {
	case mongoStore != nil:
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			b.shutdown(context.Background())
			return nil, err
		}
		b.store, b.audit = mongoStore, mongoStore.Audit()
		b.health["mongodb"] = mongoStore.Ping
	case pgStore != nil:
		if err := pgStore.Migrate(ctx); err != nil {
			b.shutdown(context.Background())
			return nil, err
		}
		b.store, b.audit = pgStore, pgStore.Audit()
		b.health["postgres"] = pgStore.Ping
	default:
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		b.store, b.audit = memory.New(), memory.NewAuditLog()
	}
	return b, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

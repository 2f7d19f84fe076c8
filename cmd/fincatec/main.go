package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/ports"
	"github.com/fincatec/domain-store/internal/core/service"
	"github.com/fincatec/domain-store/internal/infrastructure/config"
	"github.com/fincatec/domain-store/internal/infrastructure/db/memory"
	"github.com/fincatec/domain-store/internal/infrastructure/db/mongo"
	"github.com/fincatec/domain-store/internal/infrastructure/db/postgres"
	"github.com/fincatec/domain-store/internal/infrastructure/db/redis"
	ophttp "github.com/fincatec/domain-store/internal/infrastructure/http"
	"github.com/fincatec/domain-store/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "fincatec",
	})

	kv, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("failed to open store")
	}
	defer closeStore()

	store := service.NewDomainStore(kv, log, service.Options{
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
	})

	if cfg.ReconcileOnStart {
		if _, err := store.Pastures.SyncEveryCompany(ctx); err != nil {
			log.Error().Err(err).Msg("startup occupancy reconciliation failed")
		}
	}

	deps := map[string]ports.Pinger{}
	if p, ok := kv.(ports.Pinger); ok {
		deps[cfg.Store.Backend] = p
	}
	e := ophttp.NewRouter(deps)

	go func() {
		log.Info().Str("port", cfg.OpsPort).Msg("ops server listening")
		if err := e.Start(":" + cfg.OpsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ops server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server shutdown")
	}
	log.Info().Msg("stopped")
}

// openStore connects the configured backend, retrying with exponential
// backoff. The returned func releases the connection.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.KVStore, func(), error) {
	if cfg.Store.Backend == config.BackendMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memory.NewKVStore(), func() {}, nil
	}

	var (
		kv      ports.KVStore
		closeFn func()
	)
	connect := func() error {
		var err error
		kv, closeFn, err = connectBackend(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Str("backend", cfg.Store.Backend).Msg("store connection failed, retrying")
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.ConnectMaxRetries),
		ctx,
	)
	if err := backoff.Retry(connect, policy); err != nil {
		return nil, nil, err
	}

	log.Info().Str("backend", cfg.Store.Backend).Str("namespace", cfg.Store.Namespace).Msg("store connected")
	return kv, closeFn, nil
}

func connectBackend(ctx context.Context, cfg *config.Config) (ports.KVStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redis.NewKVStore(client, cfg.Store.Namespace), func() { _ = client.Close() }, nil

	case config.BackendMongo:
		kv, err := mongo.Open(ctx, mongo.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Store.Namespace,
		})
		if errors.Is(err, mongo.ErrMissingURI) {
			return nil, nil, backoff.Permanent(err)
		}
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close(context.Background()) }, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		kv, err := postgres.NewKVStore(db, cfg.Store.Namespace)
		if err != nil {
			_ = db.Close()
			return nil, nil, backoff.Permanent(err)
		}
		if err := kv.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return kv, func() { _ = db.Close() }, nil
	}
	return nil, nil, backoff.Permanent(fmt.Errorf("unknown backend %q", cfg.Store.Backend))
}

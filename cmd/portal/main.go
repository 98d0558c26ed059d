package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/poolconsultant/portal/internal/api"
	"github.com/poolconsultant/portal/internal/api/handler"
	"github.com/poolconsultant/portal/internal/api/middleware"
	"github.com/poolconsultant/portal/internal/core/ports"
	"github.com/poolconsultant/portal/internal/core/service"
	"github.com/poolconsultant/portal/internal/infrastructure/backend"
	"github.com/poolconsultant/portal/internal/infrastructure/config"
	"github.com/poolconsultant/portal/internal/infrastructure/db/memory"
	"github.com/poolconsultant/portal/internal/infrastructure/db/mongo"
	"github.com/poolconsultant/portal/internal/infrastructure/db/redis"
	"github.com/poolconsultant/portal/internal/infrastructure/queue"
	"github.com/poolconsultant/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Before Init this is the stderr logger, so config failures are reported too.
		log := logger.Get()
		log.Error().Err(err).Msg("portal stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "consultant-portal",
		Env:     cfg.Env,
	})

	checks := make(map[string]handler.DependencyCheck)

	// --- Mongo (sessions and/or audit log) ---
	var db *gomongo.Database
	if cfg.UsesMongo() {
		client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		if err := mongo.EnsureIndexes(ctx, database, cfg.Session.TTL); err != nil {
			return err
		}
		db = database
		checks["mongodb"] = handler.MongoCheck(db)
	}

	// --- Session storage ---
	var provider ports.SessionStorageProvider
	switch cfg.Session.Driver {
	case config.DriverRedis:
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			PoolSize:  cfg.Redis.PoolSize,
			OpTimeout: cfg.Redis.Timeout,
		}, logger.Component("redis"))
		if err != nil {
			return err
		}
		defer func(rdb *goredis.Client) { _ = rdb.Close() }(rdb)
		provider = redis.NewSessionStorage(rdb, cfg.Session.TTL)
		checks["redis"] = handler.RedisCheck(rdb)
	case config.DriverMongo:
		provider = mongo.NewSessionStorage(db)
	default:
		provider = memory.NewSessionStorage()
	}

	// --- Session event recording ---
	var eventRepo ports.SessionEventRepository
	if cfg.Audit.Store == config.DriverMongo {
		eventRepo = mongo.NewSessionEventRepository(db)
	}
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, eventRepo, logger.Component("session-events"))
	dispatcher.Start(dispatcherCtx)
	defer func() {
		stopDispatcher()
		dispatcher.Wait()
	}()

	// --- Backend ---
	client, err := backend.New(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}, logger.Component("backend"))
	if err != nil {
		return err
	}
	checks["backend"] = client.Ping

	// --- Services ---
	decoder := service.NewTokenDecoder(logger.Component("token"))
	navigator := service.NewNavigator()
	sessions := service.NewSessions(provider, decoder, dispatcher, logger.Component("session"))
	guard := service.NewGuard(decoder, navigator)
	portal := service.NewPortalService(client, navigator, dispatcher, logger.Component("portal"))

	e := api.NewRouter(api.Dependencies{
		Portal:    portal,
		Sessions:  sessions,
		Guard:     guard,
		Navigator: navigator,
		Backend:   client,
		Checks:    checks,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TTL,
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("session_driver", cfg.Session.Driver).Str("backend", cfg.Backend.URL).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

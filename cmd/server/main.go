package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/user-management-api/internal/api"
	"github.com/sirpyerre/user-management-api/internal/api/handler"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/service"
	mongodb "github.com/sirpyerre/user-management-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/user-management-api/internal/infrastructure/db/redis"
	"github.com/sirpyerre/user-management-api/internal/infrastructure/events"
	"github.com/sirpyerre/user-management-api/internal/infrastructure/memory"
	"github.com/sirpyerre/user-management-api/internal/pkg/config"
	"github.com/sirpyerre/user-management-api/pkg/logger"
)

const serviceName = "user-management-api"

func main() {
	started := time.Now()
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
		Env:     cfg.Env,
	})

	ctx := context.Background()

	// Event bus
	bus := events.NewBus(log)
	events.RegisterLogging(bus, log)
	if cfg.Features.Metrics {
		events.RegisterMetrics(bus)
	}

	checks := map[string]handler.Check{}
	var cleanups []func(context.Context)

	// User store
	var repo ports.UserRepository
	switch cfg.Store.Driver {
	case "mongo":
		mc, err := mongodb.Connect(ctx, mongodb.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			AppName:     serviceName,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		cleanups = append(cleanups, func(ctx context.Context) { _ = mc.Close(ctx) })

		users := mongodb.NewUserRepository(mc.DB)
		if err := users.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create mongo indexes")
		}
		seeded, err := users.SeedIfEmpty(ctx, memory.SeedUsers(nil, time.Now().UTC()))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed users")
		}
		if seeded {
			log.Info().Str("database", cfg.Mongo.Database).Msg("seeded demo users")
		}
		repo = users
		checks["mongo"] = handler.MongoCheck(mc.DB)
	default:
		repo = memory.NewSeededUserRepository(nil)
	}

	// Result cache
	var cache ports.Cache
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		cleanups = append(cleanups, func(context.Context) { _ = rdb.Close() })
		cache = redisdb.NewCache(rdb, serviceName)
		checks["redis"] = handler.RedisCheck(rdb)
	} else {
		cache = memory.NewCache()
	}

	// Services
	users := service.NewCachedUserService(
		service.NewUserService(repo, bus, log,
			service.WithPageLimits(cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)),
		cache, cfg.Redis.CacheTTL, log,
	)
	auth := service.NewAuthService(memory.NewAuthRepository(), service.AuthConfig{
		AccessSecret:      cfg.Auth.AccessSecret,
		RefreshSecret:     cfg.Auth.RefreshSecret,
		AccessTTL:         cfg.Auth.AccessTTL,
		RefreshTTL:        cfg.Auth.RefreshTTL,
		AllowForcedResult: cfg.Auth.AllowForcedResult,
	}, bus, log)
	if cfg.Auth.AllowForcedResult {
		log.Warn().Msg("login accepts expectedResult overrides; set AUTH_ALLOW_FORCED_RESULT=false outside of testing")
	}

	e := api.NewRouter(api.Deps{
		Config:  cfg,
		Logger:  log,
		Events:  bus,
		Users:   users,
		Books:   service.NewBookService(),
		Auth:    auth,
		Checks:  checks,
		Started: started,
	})

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Address()).
			Str("store", cfg.Store.Driver).
			Str("api", "/api/"+cfg.APIVersion).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	shutdown(shutdownCtx, srv, cleanups, log)
	log.Info().Msg("server exited")
}

func shutdown(ctx context.Context, srv *http.Server, cleanups []func(context.Context), log zerolog.Logger) {
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i](ctx)
	}
}

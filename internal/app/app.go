// Package app wires storage, detection and the HTTP API together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jengzang/placevisit-backend-go/internal/api"
	"github.com/jengzang/placevisit-backend-go/internal/config"
	"github.com/jengzang/placevisit-backend-go/internal/detection"
	"github.com/jengzang/placevisit-backend-go/internal/handler"
	"github.com/jengzang/placevisit-backend-go/internal/lock"
	"github.com/jengzang/placevisit-backend-go/internal/middleware"
	"github.com/jengzang/placevisit-backend-go/internal/notify"
	"github.com/jengzang/placevisit-backend-go/internal/repository"
	"github.com/jengzang/placevisit-backend-go/internal/security"
	"github.com/jengzang/placevisit-backend-go/internal/service"
	"github.com/jengzang/placevisit-backend-go/internal/settings"
)

// App is a fully wired service
type App struct {
	Router    *gin.Engine
	Processor *detection.Processor
	Settings  *settings.Cached
	Broker    *notify.Broker

	redis   *redis.Client
	limiter *middleware.RateLimiter
}

// New wires the service over an open, migrated database. rdb may be nil;
// when set, users are locked across replicas and events travel over Redis.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client, opts ...detection.Option) (*App, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("app: config and database are required")
	}

	settingsProvider := settings.NewCached(repository.NewSettingsRepository(db), cfg.Detection, cfg.SettingsCacheTTL)
	places := repository.NewPlaceRepository(db)
	broker := notify.NewBroker(notify.DefaultBuffer)

	var locker detection.Locker = lock.NewKeyedMutex()
	var notifier detection.Notifier = broker
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb, lock.RedisLockerConfig{})
		notifier = notify.NewRedisPublisher(rdb)
	}

	processor := detection.NewProcessor(settingsProvider, places, repository.NewUnitOfWork(db), locker, notifier, opts...)

	visitService := service.NewVisitService(processor, repository.NewVisitRepository(db))
	catalogService := service.NewCatalogService(repository.NewTripRepository(db), places)

	var limiter *middleware.RateLimiter
	if cfg.RLEnabled {
		limiter = middleware.NewRateLimiter(cfg.RLLimit, cfg.RLWindow)
	}

	router := api.SetupRouter(api.Handlers{
		Ping:     handler.NewPingHandler(visitService),
		Visit:    handler.NewVisitHandler(visitService, broker, cfg.SSEHeartbeat),
		Settings: handler.NewSettingsHandler(settingsProvider),
		Catalog:  handler.NewCatalogHandler(catalogService),
	}, security.NewHS256Verifier(cfg.JWTSecret, cfg.JWTIssuer), limiter)

	return &App{
		Router:    router,
		Processor: processor,
		Settings:  settingsProvider,
		Broker:    broker,
		redis:     rdb,
		limiter:   limiter,
	}, nil
}

// Run starts background workers and blocks until ctx is done. Without Redis
// there is nothing to run.
func (a *App) Run(ctx context.Context) error {
	if a.redis == nil {
		<-ctx.Done()
		return nil
	}
	log.Info().Msg("relaying visit events from redis")
	if err := notify.Relay(ctx, a.redis, a.Broker); err != nil && ctx.Err() == nil {
		return fmt.Errorf("visit event relay stopped: %w", err)
	}
	return nil
}

// Close releases resources owned by the app
func (a *App) Close() {
	if a.limiter != nil {
		a.limiter.Close()
	}
}

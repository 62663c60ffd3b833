package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	adapterHTTP "github.com/comitanigiacomo/kanso-progress/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository/migrations"
	"github.com/comitanigiacomo/kanso-progress/internal/config"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
	"github.com/comitanigiacomo/kanso-progress/internal/core/workers"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type app struct {
	router *gin.Engine
	worker *workers.EffectWorker
	db     *sqlx.DB
	redis  *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// buildApp wires storage, cache, the effect worker and the HTTP layer. The
// worker runs until ctx is cancelled.
func buildApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	a := &app{}

	tiers, err := config.LoadTiers(cfg.TiersFile)
	if err != nil {
		return nil, err
	}

	var (
		uow   domain.UnitOfWork
		users domain.UserRepository
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		log.Info("connecting to database")
		db, err := sqlx.Connect("pgx", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database connected and migrated")

		a.db = db
		uow = repository.NewPostgresUnitOfWork(db)
		users = repository.NewPostgresUserRepository(db)
	default:
		log.Warn("using in-memory storage, data is lost on restart")
		uow = repository.NewMemoryStore()
		users = repository.NewInMemoryUserRepository()
	}

	if cfg.RedisHost != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, running without cache and rate limiting")
		} else {
			a.redis = rdb
		}
	}

	m := metrics.New()

	a.worker = workers.NewEffectWorker(log, cfg.QueueSize,
		workers.NewStreakUpdater(uow, log),
		m,
		workers.NewSoundCueNotifier(nil, log),
	)
	a.worker.Start(ctx)

	ledgerCfg := services.LedgerConfig{
		Tiers:     tiers,
		Publisher: a.worker,
		Logger:    log,
	}
	if a.redis != nil {
		ledgerCfg.Cache = cache.NewRedisTotalCache(a.redis, cfg.CacheTTL, log)
	}
	ledger, err := services.NewLedgerService(uow, ledgerCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	progression := services.NewProgressionService(uow, ledger)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, users)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(services.NewAuthService(users), tokens),
		HabitHandler:   adapterHTTP.NewHabitHandler(services.NewHabitService(uow), progression),
		TaskHandler:    adapterHTTP.NewTaskHandler(services.NewTaskService(uow), progression),
		GoalHandler:    adapterHTTP.NewGoalHandler(services.NewGoalService(uow), progression),
		XPHandler:      adapterHTTP.NewXPHandler(ledger, cfg.CheckinXP),
		FinanceHandler: adapterHTTP.NewFinanceHandler(services.NewFinanceService(uow, a.worker, log)),
		TokenService:   tokens,
		DB:             a.db,
		Redis:          a.redis,
		Metrics:        m,
		Logger:         log,
		RateLimit:      cfg.RateLimit,
		StartTime:      time.Now(),
	})
	return a, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/classifieds/internal/api"
	"github.com/charlesng35/classifieds/internal/app"
	"github.com/charlesng35/classifieds/internal/app/maintenance"
	iauth "github.com/charlesng35/classifieds/internal/auth"
	"github.com/charlesng35/classifieds/internal/cache"
	"github.com/charlesng35/classifieds/internal/database"
	"github.com/charlesng35/classifieds/internal/middleware"
	"github.com/charlesng35/classifieds/internal/monitoring"
	"github.com/charlesng35/classifieds/internal/security"
	"github.com/charlesng35/classifieds/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *cache.RedisStore
	Services  *app.Services
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, cache, services, maintenance
// jobs and the HTTP router. Partially built stacks are torn down on error.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)
	var store cache.Store = dbStore

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
			stack.Redis = nil
		} else {
			store = stack.Redis
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	tokens, err := iauth.NewTokenService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise token service: %w", err)
	}

	stack.Services, err = app.NewServices(stack.DB, store, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise services: %w", err)
	}

	if input, ok := cfg.Auth.SuperAdminInput(); ok {
		created, err := stack.Services.Users.EnsureSuperAdmin(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("ensure super admin: %w", err)
		}
		if created {
			log.Info("super admin created", zap.String("username", input.Username))
		}
	}

	security.LogFindings(security.NewPostureAudit(stack.DB, cfg).Run(ctx))

	stack.Cleaner = maintenance.NewCleaner(stack.Services.Ads, stack.Services.Audit,
		maintenance.WithAuditRetentionDays(cfg.Moderation.AuditRetentionDays),
		maintenance.WithExpirySchedule(cfg.Moderation.ExpirySchedule),
		maintenance.WithAuditSchedule(cfg.Moderation.AuditSchedule),
		maintenance.WithCacheSchedule(cfg.Moderation.CachePurgeSchedule),
		maintenance.WithCachePurger(dbStore),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.RateStore = middleware.NewCacheRateStore(store)

	var probes []monitoring.Check
	if stack.Redis != nil {
		probes = append(probes, monitoring.Cache("redis", stack.Redis, cfg.Cache.Redis.Timeout))
	}

	stack.Router, err = api.NewRouter(stack.DB, tokens, cfg, stack.Services, stack.RateStore, probes...)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		closeDatabase(db, logger.WithModule("database"))
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver:          strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:            strings.TrimSpace(cfg.Database.Path),
		DSN:             strings.TrimSpace(cfg.Database.DSN),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,

		SlowQueryThreshold: cfg.Database.SlowQuery,
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = cfg.Database.Postgres.Password
	case "mysql", "mariadb":
		dbCfg.Driver = "mysql"
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = cfg.Database.MySQL.Password
	default:
		// unsupported drivers surface from database.Open
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"paper-api/internal/client/catalog"
	"paper-api/internal/client/identity"
	"paper-api/internal/client/lapras"
	"paper-api/internal/core/auth"
	"paper-api/internal/core/cache"
	"paper-api/internal/core/config"
	"paper-api/internal/core/database"
	"paper-api/internal/core/logger"
	"paper-api/internal/core/server"
	"paper-api/internal/core/tracing"
	"paper-api/internal/repo"
	"paper-api/internal/service"
	"paper-api/internal/transport/http/handler"
	"paper-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(logger.Config{
		Level: cfg.Log.Level, JSON: cfg.Log.JSON, File: cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB, MaxBackups: cfg.Log.MaxBackups, MaxAgeDays: cfg.Log.MaxAgeDays, Compress: cfg.Log.Compress,
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	shutdownTracing, err := tracing.Init(context.Background(), log, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Warn("tracing init failed (continuing)", zap.Error(err))
	}

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 缓存（未配置 redis 时直通）
	rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := rc.Ping(context.Background()); err != nil {
		log.Warn("redis unavailable, cache falls back to upstream", zap.Error(err))
	}
	defer func() { _ = rc.Close() }()

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}

	users := repo.NewUserRepo(db)
	books := repo.NewBookRepo(db)
	reviews := repo.NewReviewRepo(db)
	likes := repo.NewLikeRepo(db)

	catalogSvc := service.NewCatalogService(
		catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, seconds(cfg.Catalog.TimeoutSec)),
		rc, seconds(cfg.Catalog.CacheTTLSec), log)
	skillSvc := service.NewSkillService(
		lapras.New(seconds(cfg.Lapras.TimeoutSec), cfg.Lapras.AllowedHosts),
		users, rc, seconds(cfg.Lapras.CacheTTLSec))
	accountSvc := service.NewAccountService(users,
		identity.New(cfg.Identity.UserInfoURL, cfg.Identity.Provider, seconds(cfg.Identity.TimeoutSec)),
		jwter, log)
	reviewSvc := service.NewReviewService(users, books, reviews, likes, catalogSvc, log)
	reviewSvc.AllowDuplicates = cfg.Review.AllowDuplicates

	reg := router.NewRegistry(
		handler.Skill{Svc: skillSvc, ExposeStack: !cfg.App.IsProduction(), Log: log},
		handler.Account{Svc: accountSvc, Skills: skillSvc},
		handler.Catalog{Svc: catalogSvc},
		handler.Review{Svc: reviewSvc},
	)

	// 路由（用户端）
	r := router.NewAPIEngine(log, jwter, reg, router.Options{
		Name:           cfg.App.Name,
		Mode:           ginMode(cfg),
		Tracing:        cfg.Tracing.Enabled,
		RequestTimeout: seconds(cfg.App.HTTP.RequestTimeoutSec),
		RateLimitRPS:   cfg.App.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.App.HTTP.RateLimitBurst,
		MaxConcurrent:  cfg.App.HTTP.MaxConcurrent,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		seconds(cfg.App.HTTP.ReadTimeoutSec),
		seconds(cfg.App.HTTP.WriteTimeoutSec),
		seconds(cfg.App.HTTP.IdleTimeoutSec),
		log,
	)

	baseURL := server.HumanURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("lapras", baseURL+"/api/lapras-data?userUrl="),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()
	log.Info("user api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	_ = shutdownTracing(ctx)
	log.Info("user api stopped gracefully")
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func ginMode(cfg *config.Config) string {
	if cfg.App.IsProduction() {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

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
	"gorm.io/gorm"

	"paper-api/internal/core/auth"
	"paper-api/internal/core/config"
	"paper-api/internal/core/database"
	"paper-api/internal/core/logger"
	"paper-api/internal/core/server"
	"paper-api/internal/repo"
	"paper-api/internal/service"
	"paper-api/internal/transport/http/handler"
	"paper-api/internal/transport/http/router"
	"paper-api/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(logger.Config{
		Level: cfg.Log.Level, JSON: cfg.Log.JSON, File: cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB, MaxBackups: cfg.Log.MaxBackups, MaxAgeDays: cfg.Log.MaxAgeDays, Compress: cfg.Log.Compress,
	})
	defer cleanup()

	// DB 连接（失败直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	switch {
	case cfg.Admin.PasswordHash == "":
		log.Warn("admin.password_hash is empty, admin login disabled")
	case !utils.IsPasswordHash(cfg.Admin.PasswordHash):
		log.Warn("admin.password_hash is not a bcrypt hash, admin login will always fail")
	}

	// 依赖
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}
	adminSvc := service.NewAdminService(
		service.AdminAccount{Email: cfg.Admin.Email, PasswordHash: cfg.Admin.PasswordHash},
		repo.NewUserRepo(db), repo.NewBookRepo(db), repo.NewReviewRepo(db), jwter)

	mode := gin.DebugMode
	if cfg.App.IsProduction() {
		mode = gin.ReleaseMode
	}
	// 路由（后台端）
	r := router.NewAdminEngine(log, jwter, router.NewRegistry(handler.Admin{Svc: adminSvc}), router.Options{
		Name:           cfg.App.Name + "-admin",
		Mode:           mode,
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		RateLimitRPS:   cfg.App.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.App.HTTP.RateLimitBurst,
		MaxConcurrent:  cfg.App.HTTP.MaxConcurrent,
	})

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second, log)

	// 启动前打印可点击地址
	baseURL := server.HumanURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	// 关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username, // 传入用户名
		Password:           cfg.DB.Password, // 传入密码
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err)) // 失败日志
	}
	return db
}

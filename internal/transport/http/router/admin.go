package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"paper-api/internal/core/auth"
	mdw "paper-api/internal/transport/http/middleware"
)

// 登录接口每 IP 每秒 1 次，突发 10 次
const (
	adminLoginEvery = time.Second
	adminLoginBurst = 10
)

func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, reg *Registry, o Options) *gin.Engine {
	r := newBase(l, o)

	// 管理端 v1：登录公开（按 IP 限速），其余统一要求 admin 角色
	pub := r.Group("/admin/v1", mdw.RateLimitPerIP(rate.Every(adminLoginEvery), adminLoginBurst))
	admin := r.Group("/admin/v1", mdw.AuthJWT(jwter, auth.RoleAdmin))

	reg.MountAdmin(pub, admin)
	return r
}

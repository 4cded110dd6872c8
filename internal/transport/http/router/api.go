package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-api/internal/core/auth"
	mdw "paper-api/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, reg *Registry, o Options) *gin.Engine {
	r := newBase(l, o)

	// /api/lapras-data 等原样契约接口
	reg.MountRoot(r)

	// 前缀
	api := r.Group("/api/v1")

	// 鉴权分组（/me 等必须挂这里，才能拿到 userId）
	authUser := api.Group("")
	authUser.Use(mdw.AuthJWT(jwter, ""))

	reg.MountAPI(api, authUser)
	return r
}

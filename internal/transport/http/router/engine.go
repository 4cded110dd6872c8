package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"paper-api/internal/core/server"
	mdw "paper-api/internal/transport/http/middleware"
)

type Options struct {
	Name           string
	Mode           string
	Tracing        bool
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int64
	MaxBodyBytes   int64
}

func (o Options) withDefaults() Options {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 16 << 20
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = int(o.RateLimitRPS) * 2
	}
	return o
}

// newBase 两个引擎共用的中间件链与探活接口
func newBase(l *zap.Logger, o Options) *gin.Engine {
	o = o.withDefaults()
	r := server.NewRouter(l, server.Options{
		Name:     o.Name,
		Mode:     o.Mode,
		Tracing:  o.Tracing,
		Recovery: mdw.Recovery(l),
	})
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(o.RateLimitRPS), o.RateLimitBurst),
		mdw.ConcurrencyLimit(o.MaxConcurrent),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "paper", Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paper",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	// 信封里的业务码，HTTP 状态恒为 200 时靠它区分失败
	httpRespCode = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "paper", Name: "http_response_codes_total", Help: "Envelope codes returned by actions"},
		[]string{"path", "code"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpRespCode) }

// Metrics 未匹配路由统一记为 unmatched，避免路径基数爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpReqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
		if code, ok := c.Get(KeyRespCode); ok {
			httpRespCode.WithLabelValues(path, strconv.Itoa(code.(int))).Inc()
		}
	}
}

// KeyRespCode Action 写入的信封业务码
const KeyRespCode = "respCode"

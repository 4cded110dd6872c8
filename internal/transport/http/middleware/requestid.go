package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"paper-api/internal/core/server"
)

// KeyRequestID gin 上下文里的请求 id，访问日志按它串联
const KeyRequestID = "requestId"

// 客户端带来的 id 最长 64 字节
const maxRequestIDLen = 64

// RequestID 沿用客户端的 X-Request-ID（仅限可打印的安全字符），否则生成 uuid
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(server.HeaderRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(server.HeaderRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}

func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-api/internal/domain"
	"paper-api/internal/service"
	resp "paper-api/internal/transport/http/response"
)

// Skill /api/lapras-data 不走信封，错误体为 {error, stack?}
type Skill struct {
	Svc *service.SkillService
	// 非生产环境在 500 响应里带上堆栈
	ExposeStack bool
	Log         *zap.Logger
}

func (h Skill) LaprasData(c *gin.Context) {
	userURL := c.Query("userUrl")
	if userURL == "" {
		c.JSON(http.StatusBadRequest, resp.RawError{Error: "userUrl parameter is required"})
		return
	}
	sum, err := h.Svc.Summary(c.Request.Context(), userURL)
	if err == nil {
		c.JSON(http.StatusOK, sum)
		return
	}
	_ = c.Error(err)

	switch kind := domain.KindOf(err); {
	case kind == domain.KindValidation:
		c.JSON(http.StatusBadRequest, resp.RawError{Error: err.Error()})
		return
	case kind == domain.KindUpstreamUnavailable && domain.StatusOf(err) != 0:
		status := domain.StatusOf(err)
		c.JSON(status, resp.RawError{Error: fmt.Sprintf("API responded with status: %d", status)})
		return
	}

	if h.Log != nil {
		h.Log.Error("lapras data failed", zap.String("user_url", userURL), zap.Error(err))
	}
	body := resp.RawError{Error: err.Error()}
	if h.ExposeStack {
		body.Stack = fmt.Sprintf("%+v", err)
	}
	c.JSON(http.StatusInternalServerError, body)
}

func (h Skill) MountRoot(r gin.IRouter) {
	r.GET("/api/lapras-data", h.LaprasData)
}

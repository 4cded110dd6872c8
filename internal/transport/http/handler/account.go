package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-api/internal/domain"
	"paper-api/internal/feature/skill"
	"paper-api/internal/service"
	httpez "paper-api/internal/transport/http/ez"
)

// Account 登录与个人资料
type Account struct {
	Svc    *service.AccountService
	Skills *service.SkillService
}

func (Account) Priority() int { return 10 }

func (h Account) MountAPI(pub, authed *gin.RouterGroup) {
	type loginIn struct {
		AccessToken string `json:"accessToken" binding:"required"`
	}
	httpez.RegisterAction[loginIn, *service.Session](httpez.New(pub), httpez.Action[loginIn, *service.Session]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (*service.Session, error) {
			return h.Svc.Login(c.Request.Context(), in.AccessToken)
		},
	})

	ez := httpez.New(authed)
	httpez.RegisterAction[struct{}, *domain.User](ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.Svc.Me(c.Request.Context(), httpez.Principal(c))
		},
	})
	httpez.RegisterAction[service.UpdateProfileInput, *domain.User](ez, httpez.Action[service.UpdateProfileInput, *domain.User]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.UpdateProfileInput) (*domain.User, error) {
			return h.Svc.UpdateProfile(c.Request.Context(), httpez.Principal(c), *in)
		},
	})
	if h.Skills != nil {
		httpez.RegisterAction[struct{}, *skill.Summary](ez, httpez.Action[struct{}, *skill.Summary]{
			Method: http.MethodGet,
			Path:   "/me/skills",
			Binder: httpez.BindNone,
			Auth:   true,
			Handler: func(c *gin.Context, _ *struct{}) (*skill.Summary, error) {
				return h.Skills.MySkills(c.Request.Context(), httpez.Principal(c))
			},
		})
	}
}

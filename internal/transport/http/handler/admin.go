package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-api/internal/core/auth"
	"paper-api/internal/domain"
	"paper-api/internal/service"
	httpez "paper-api/internal/transport/http/ez"
)

// Admin 管理端只读列表
type Admin struct {
	Svc *service.AdminService
}

func (h Admin) MountAdmin(pub, authed *gin.RouterGroup) {
	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		Token string `json:"token"`
	}
	httpez.RegisterAction[loginIn, loginOut](httpez.New(pub), httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			tok, err := h.Svc.Login(in.Email, in.Password)
			return loginOut{Token: tok}, err
		},
	})

	ez := httpez.New(authed)
	roles := []string{auth.RoleAdmin}
	httpez.RegisterAction[httpez.Page, *service.Page[domain.User]](ez, httpez.Action[httpez.Page, *service.Page[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *httpez.Page) (*service.Page[domain.User], error) {
			in.Clamp()
			return h.Svc.Users(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})
	httpez.RegisterAction[httpez.Page, *service.Page[domain.Book]](ez, httpez.Action[httpez.Page, *service.Page[domain.Book]]{
		Method: http.MethodGet,
		Path:   "/books",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *httpez.Page) (*service.Page[domain.Book], error) {
			in.Clamp()
			return h.Svc.Books(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})
	httpez.RegisterAction[httpez.Page, *service.Page[domain.Review]](ez, httpez.Action[httpez.Page, *service.Page[domain.Review]]{
		Method: http.MethodGet,
		Path:   "/reviews",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *httpez.Page) (*service.Page[domain.Review], error) {
			in.Clamp()
			return h.Svc.Reviews(c.Request.Context(), in.Q, in.Offset, in.Limit)
		},
	})
}

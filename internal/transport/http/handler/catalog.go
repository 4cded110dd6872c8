package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-api/internal/client/catalog"
	"paper-api/internal/service"
	httpez "paper-api/internal/transport/http/ez"
)

// Catalog 外部图书目录代理
type Catalog struct {
	Svc *service.CatalogService
}

func (h Catalog) MountAPI(pub, _ *gin.RouterGroup) {
	ez := httpez.New(pub)

	type searchQ struct {
		Q   string `form:"q" binding:"required"`
		Max int    `form:"max,default=20"`
	}
	httpez.RegisterAction[searchQ, *catalog.SearchResult](ez, httpez.Action[searchQ, *catalog.SearchResult]{
		Method: http.MethodGet,
		Path:   "/catalog/search",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *searchQ) (*catalog.SearchResult, error) {
			return h.Svc.Search(c.Request.Context(), in.Q, in.Max)
		},
	})

	httpez.RegisterAction[struct{}, []catalog.Volume](ez, httpez.Action[struct{}, []catalog.Volume]{
		Method: http.MethodGet,
		Path:   "/catalog/authors/:name",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]catalog.Volume, error) {
			return h.Svc.BooksByAuthor(c.Request.Context(), c.Param("name"))
		},
	})

	httpez.RegisterAction[struct{}, *catalog.Volume](ez, httpez.Action[struct{}, *catalog.Volume]{
		Method: http.MethodGet,
		Path:   "/catalog/volumes/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*catalog.Volume, error) {
			return h.Svc.Volume(c.Request.Context(), c.Param("id"))
		},
	})
}

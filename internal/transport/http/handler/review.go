package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-api/internal/domain"
	"paper-api/internal/service"
	httpez "paper-api/internal/transport/http/ez"
)

// Review 书、书评与点赞
type Review struct {
	Svc *service.ReviewService
}

type sentimentOut struct {
	ReviewID string `json:"reviewId"`
	// nil 表示尚未表态
	IsLiked *bool `json:"isLiked"`
}

func (h Review) MountAPI(pub, authed *gin.RouterGroup) {
	ez := httpez.New(pub)
	ezAuth := httpez.New(authed)

	httpez.RegisterAction[httpez.Page, *service.BookView](ez, httpez.Action[httpez.Page, *service.BookView]{
		Method: http.MethodGet,
		Path:   "/books/:id",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *httpez.Page) (*service.BookView, error) {
			in.Clamp()
			return h.Svc.BookWithReviews(c.Request.Context(), c.Param("id"), in.Offset, in.Limit)
		},
	})
	httpez.RegisterAction[httpez.Page, *service.Page[service.ReviewView]](ez, httpez.Action[httpez.Page, *service.Page[service.ReviewView]]{
		Method: http.MethodGet,
		Path:   "/users/:id/reviews",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *httpez.Page) (*service.Page[service.ReviewView], error) {
			in.Clamp()
			return h.Svc.ReviewsByUser(c.Request.Context(), c.Param("id"), in.Offset, in.Limit)
		},
	})
	httpez.RegisterAction[struct{}, *service.ReviewView](ez, httpez.Action[struct{}, *service.ReviewView]{
		Method: http.MethodGet,
		Path:   "/reviews/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.ReviewView, error) {
			return h.Svc.GetReview(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction[service.CreateBookInput, *domain.Book](ezAuth, httpez.Action[service.CreateBookInput, *domain.Book]{
		Method: http.MethodPost,
		Path:   "/books",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.CreateBookInput) (*domain.Book, error) {
			return h.Svc.CreateBook(c.Request.Context(), *in)
		},
	})
	httpez.RegisterAction[service.CreateReviewInput, *domain.Review](ezAuth, httpez.Action[service.CreateReviewInput, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.CreateReviewInput) (*domain.Review, error) {
			return h.Svc.CreateReview(c.Request.Context(), httpez.Principal(c), *in)
		},
	})

	type sentimentIn struct {
		IsLiked *bool `json:"isLiked" binding:"required"`
	}
	httpez.RegisterAction[sentimentIn, sentimentOut](ezAuth, httpez.Action[sentimentIn, sentimentOut]{
		Method: http.MethodPut,
		Path:   "/reviews/:id/sentiment",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *sentimentIn) (sentimentOut, error) {
			l, err := h.Svc.SetSentiment(c.Request.Context(), httpez.Principal(c), c.Param("id"), *in.IsLiked)
			if err != nil {
				return sentimentOut{}, err
			}
			return sentimentOut{ReviewID: l.ReviewID, IsLiked: &l.IsLiked}, nil
		},
	})
	httpez.RegisterAction[struct{}, sentimentOut](ezAuth, httpez.Action[struct{}, sentimentOut]{
		Method: http.MethodGet,
		Path:   "/reviews/:id/sentiment",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (sentimentOut, error) {
			id := c.Param("id")
			l, err := h.Svc.GetSentiment(c.Request.Context(), httpez.Principal(c), id)
			if err != nil {
				return sentimentOut{}, err
			}
			out := sentimentOut{ReviewID: id}
			if l != nil {
				out.IsLiked = &l.IsLiked
			}
			return out, nil
		},
	})
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"paper-api/internal/client/catalog"
	"paper-api/internal/core/cache"
	"paper-api/internal/feature/bookmatch"
)

// CatalogAPI 外部图书目录
type CatalogAPI interface {
	Search(ctx context.Context, q string, max int) (*catalog.SearchResult, error)
	Volume(ctx context.Context, id string) (*catalog.Volume, error)
}

// 著者页一次最多取 40 条再本地精确过滤
const authorSearchMax = 40

type CatalogService struct {
	api   CatalogAPI
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCatalogService(api CatalogAPI, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CatalogService {
	if l == nil {
		l = zap.NewNop()
	}
	return &CatalogService{api: api, cache: c, ttl: ttl, log: l}
}

func (s *CatalogService) Search(ctx context.Context, q string, max int) (*catalog.SearchResult, error) {
	key := fmt.Sprintf("catalog:search:%d:%s", max, q)
	return cache.GetOrLoadJSON(s.cache, ctx, key, s.ttl, func(ctx context.Context) (*catalog.SearchResult, error) {
		return s.api.Search(ctx, q, max)
	})
}

func (s *CatalogService) Volume(ctx context.Context, id string) (*catalog.Volume, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, "catalog:volume:"+id, s.ttl, func(ctx context.Context) (*catalog.Volume, error) {
		return s.api.Volume(ctx, id)
	})
}

// BooksByAuthor inauthor 检索会带回同名前缀等无关结果，这里只保留
// 作者名规范化后完全相等的卷
func (s *CatalogService) BooksByAuthor(ctx context.Context, author string) ([]catalog.Volume, error) {
	res, err := s.Search(ctx, fmt.Sprintf("inauthor:%q", author), authorSearchMax)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Volume, 0, len(res.Items))
	for _, v := range res.Items {
		if bookmatch.AnyEqual(v.Authors, author) {
			out = append(out, v)
		}
	}
	s.log.Debug("author search filtered",
		zap.String("author", author), zap.Int("fetched", len(res.Items)), zap.Int("kept", len(out)))
	return out, nil
}

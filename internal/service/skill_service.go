package service

import (
	"context"
	"strings"
	"time"

	"paper-api/internal/core/auth"
	"paper-api/internal/core/cache"
	"paper-api/internal/domain"
	"paper-api/internal/feature/skill"
)

type ProfileAPI interface {
	ValidateURL(raw string) error
	Fetch(ctx context.Context, profileURL string) (*skill.Profile, error)
}

type SkillService struct {
	api   ProfileAPI
	users domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
}

func NewSkillService(api ProfileAPI, users domain.UserRepository, c *cache.Cache, ttl time.Duration) *SkillService {
	return &SkillService{api: api, users: users, cache: c, ttl: ttl}
}

// Summary 拉取档案并聚合语言；结果按 URL 缓存
func (s *SkillService) Summary(ctx context.Context, profileURL string) (*skill.Summary, error) {
	profileURL = strings.TrimSpace(profileURL)
	if err := s.api.ValidateURL(profileURL); err != nil {
		return nil, err
	}
	return cache.GetOrLoadJSON(s.cache, ctx, "lapras:"+profileURL, s.ttl, func(ctx context.Context) (*skill.Summary, error) {
		p, err := s.api.Fetch(ctx, profileURL)
		if err != nil {
			return nil, err
		}
		sum := skill.Summarize(p)
		return &sum, nil
	})
}

func (s *SkillService) MySkills(ctx context.Context, actor auth.Principal) (*skill.Summary, error) {
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, domain.Internal("load user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user %s not found", actor.UserID)
	}
	if strings.TrimSpace(u.LaprasURL) == "" {
		return nil, domain.Validation("laprasUrl is not set")
	}
	return s.Summary(ctx, u.LaprasURL)
}

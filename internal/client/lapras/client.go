// Package lapras fetches public career profiles from the skill-scoring API.
package lapras

import (
	"context"
	"net/url"
	"strings"
	"time"

	"paper-api/internal/client/upstream"
	"paper-api/internal/domain"
	"paper-api/internal/feature/skill"
)

type Client struct {
	up           *upstream.Client
	allowedHosts map[string]struct{}
}

// New allowedHosts 为空表示不限制主机
func New(timeout time.Duration, allowedHosts []string) *Client {
	c := &Client{up: upstream.New("lapras", timeout), allowedHosts: map[string]struct{}{}}
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			c.allowedHosts[h] = struct{}{}
		}
	}
	// 白名单主机可能重定向到别处，每一跳都重新校验
	c.up.GuardRedirects(func(u *url.URL) error {
		if err := c.ValidateURL(u.String()); err != nil {
			return domain.Validation("redirect to %s blocked: %v", u.Redacted(), err)
		}
		return nil
	})
	return c
}

// ValidateURL 只接受绝对 http(s) 地址，并检查主机白名单
func (c *Client) ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.Validation("userUrl must be an absolute http(s) URL")
	}
	if len(c.allowedHosts) > 0 {
		if _, ok := c.allowedHosts[strings.ToLower(u.Hostname())]; !ok {
			return domain.Validation("userUrl host %q is not allowed", u.Hostname())
		}
	}
	return nil
}

func (c *Client) Fetch(ctx context.Context, profileURL string) (*skill.Profile, error) {
	if err := c.ValidateURL(profileURL); err != nil {
		return nil, err
	}
	b, err := c.up.Get(ctx, strings.TrimSpace(profileURL), nil)
	if err != nil {
		return nil, err
	}
	p, err := skill.DecodeProfile(b)
	if err != nil {
		return nil, domain.UpstreamMalformed(err)
	}
	return p, nil
}

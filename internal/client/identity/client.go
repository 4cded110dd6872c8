// Package identity resolves an identity-provider access token into the
// signed-in user's profile (OpenID Connect userinfo).
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"paper-api/internal/client/upstream"
	"paper-api/internal/domain"
)

const DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type UserInfo struct {
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Provider string `json:"-"`
}

type Client struct {
	userInfoURL string
	provider    string
	up          *upstream.Client
}

func New(userInfoURL, provider string, timeout time.Duration) *Client {
	if userInfoURL == "" {
		userInfoURL = DefaultUserInfoURL
	}
	if provider == "" {
		provider = domain.AuthProviderGoogle
	}
	return &Client{userInfoURL: userInfoURL, provider: provider, up: upstream.New("identity", timeout)}
}

func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, domain.Validation("accessToken is required")
	}
	b, err := c.up.Get(ctx, c.userInfoURL, http.Header{"Authorization": {"Bearer " + accessToken}})
	if err != nil {
		switch domain.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, domain.Unauthorized("identity provider rejected token")
		}
		return nil, err
	}
	var info UserInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, domain.UpstreamMalformed(errors.Wrap(err, "decode userinfo"))
	}
	if info.Subject == "" || info.Email == "" {
		return nil, domain.UpstreamMalformed(errors.New("userinfo without sub or email"))
	}
	info.Provider = c.provider
	return &info, nil
}

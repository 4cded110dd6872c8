package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"paper-api/internal/client/identity"
	"paper-api/internal/core/auth"
	"paper-api/internal/domain"
	"paper-api/pkg/utils"
)

// IdentityAPI 第三方身份提供方
type IdentityAPI interface {
	UserInfo(ctx context.Context, accessToken string) (*identity.UserInfo, error)
}

type AccountService struct {
	users    domain.UserRepository
	identity IdentityAPI
	jwt      *auth.JWTer
	log      *zap.Logger
}

func NewAccountService(users domain.UserRepository, idp IdentityAPI, j *auth.JWTer, l *zap.Logger) *AccountService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AccountService{users: users, identity: idp, jwt: j, log: l}
}

type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login 用提供方的 access token 换用户信息，按提供方 id upsert 后签发会话
func (s *AccountService) Login(ctx context.Context, accessToken string) (*Session, error) {
	info, err := s.identity.UserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           info.Subject,
		Email:        strings.ToLower(strings.TrimSpace(info.Email)),
		AuthProvider: info.Provider,
		DisplayName:  info.Name,
		ImageURL:     info.Picture,
	}
	if err := s.users.Upsert(ctx, u); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			return nil, domain.Conflict("email %s is bound to another account", u.Email)
		}
		return nil, domain.Internal("save user failed", err)
	}
	saved, err := s.users.FindByID(ctx, u.ID)
	if err != nil || saved == nil {
		return nil, domain.Internal("reload user failed", err)
	}
	tok, err := s.jwt.Issue(saved.ID, auth.RoleUser)
	if err != nil {
		return nil, domain.Internal("issue token failed", err)
	}
	s.log.Info("user login", zap.String("user_id", saved.ID), zap.String("provider", saved.AuthProvider))
	return &Session{Token: tok, User: saved}, nil
}

func (s *AccountService) Me(ctx context.Context, actor auth.Principal) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, domain.Internal("load user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user %s not found", actor.UserID)
	}
	return u, nil
}

type UpdateProfileInput struct {
	Bio       string `json:"bio"`
	LaprasURL string `json:"laprasUrl"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, actor auth.Principal, in UpdateProfileInput) (*domain.User, error) {
	link := strings.TrimSpace(in.LaprasURL)
	if link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, domain.Validation("laprasUrl must be an absolute http(s) URL")
		}
	}
	if _, err := s.Me(ctx, actor); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, actor.UserID, strings.TrimSpace(in.Bio), link); err != nil {
		return nil, domain.Internal("update profile failed", err)
	}
	return s.Me(ctx, actor)
}

// AdminAccount 管理员账号来自配置，不入库
type AdminAccount struct {
	Email        string
	PasswordHash string
}

type AdminService struct {
	account AdminAccount
	users   domain.UserRepository
	books   domain.BookRepository
	reviews domain.ReviewRepository
	jwt     *auth.JWTer
}

func NewAdminService(acc AdminAccount, users domain.UserRepository, books domain.BookRepository, reviews domain.ReviewRepository, j *auth.JWTer) *AdminService {
	return &AdminService{account: acc, users: users, books: books, reviews: reviews, jwt: j}
}

func (s *AdminService) Login(email, password string) (string, error) {
	if s.account.Email == "" || s.account.PasswordHash == "" {
		return "", domain.Unauthorized("admin login disabled")
	}
	if !strings.EqualFold(strings.TrimSpace(email), s.account.Email) || !utils.CheckPassword(password, s.account.PasswordHash) {
		return "", domain.Unauthorized("invalid credentials")
	}
	tok, err := s.jwt.Issue("admin:"+strings.ToLower(s.account.Email), auth.RoleAdmin)
	if err != nil {
		return "", domain.Internal("issue token failed", err)
	}
	return tok, nil
}

func (s *AdminService) Users(ctx context.Context, q string, offset, limit int) (*Page[domain.User], error) {
	items, total, err := s.users.List(ctx, q, offset, limit)
	if err != nil {
		return nil, domain.Internal("list users failed", err)
	}
	return &Page[domain.User]{Total: total, Items: items}, nil
}

func (s *AdminService) Books(ctx context.Context, q string, offset, limit int) (*Page[domain.Book], error) {
	items, total, err := s.books.List(ctx, q, offset, limit)
	if err != nil {
		return nil, domain.Internal("list books failed", err)
	}
	return &Page[domain.Book]{Total: total, Items: items}, nil
}

func (s *AdminService) Reviews(ctx context.Context, q string, offset, limit int) (*Page[domain.Review], error) {
	items, total, err := s.reviews.List(ctx, q, offset, limit)
	if err != nil {
		return nil, domain.Internal("list reviews failed", err)
	}
	return &Page[domain.Review]{Total: total, Items: items}, nil
}

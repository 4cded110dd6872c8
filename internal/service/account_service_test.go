package service

import (
	"context"
	"testing"
	"time"

	"paper-api/internal/client/identity"
	"paper-api/internal/core/auth"
	"paper-api/internal/domain"
	"paper-api/pkg/utils"
)

func testJWT() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "paper-test", TTL: time.Hour}
}

func TestLoginUpsertsUserAndKeepsProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idp := &fakeIdentity{info: &identity.UserInfo{
		Subject: "g-123", Email: "Alice@Example.com", Name: "Alice", Picture: "https://img/a.png", Provider: domain.AuthProviderGoogle,
	}}
	j := testJWT()
	svc := NewAccountService(f.users, idp, j, nil)

	s, err := svc.Login(ctx, "token")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.User.ID != "g-123" || s.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", s.User)
	}
	c, err := j.Parse(s.Token)
	if err != nil || c.Principal() != (auth.Principal{UserID: "g-123", Role: auth.RoleUser}) {
		t.Fatalf("bad token: %v %+v", err, c)
	}

	actor := c.Principal()
	if _, err := svc.UpdateProfile(ctx, actor, UpdateProfileInput{Bio: "hi", LaprasURL: "https://lapras.com/public/alice"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	idp.info.Name = "Alice B"
	s, err = svc.Login(ctx, "token")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if s.User.DisplayName != "Alice B" || s.User.Bio != "hi" || s.User.LaprasURL == "" {
		t.Fatalf("login should refresh name and keep profile: %+v", s.User)
	}
}

func TestLoginPropagatesProviderErrors(t *testing.T) {
	f := newFixture(t)
	svc := NewAccountService(f.users, &fakeIdentity{err: domain.Unauthorized("rejected")}, testJWT(), nil)
	if _, err := svc.Login(context.Background(), "bad"); !domain.IsKind(err, domain.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUpdateProfileValidatesURL(t *testing.T) {
	f := newFixture(t)
	actor := f.user(t, "user_1")
	svc := NewAccountService(f.users, &fakeIdentity{}, testJWT(), nil)
	for _, bad := range []string{"lapras.com/public/x", "ftp://lapras.com/x", "https://"} {
		if _, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileInput{LaprasURL: bad}); !domain.IsKind(err, domain.KindValidation) {
			t.Fatalf("%q: expected validation_error, got %v", bad, err)
		}
	}
	u, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileInput{Bio: "  bio  "})
	if err != nil || u.Bio != "bio" || u.LaprasURL != "" {
		t.Fatalf("clear url: %v %+v", err, u)
	}
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)
	j := testJWT()
	hash, err := utils.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewAdminService(AdminAccount{Email: "admin@example.com", PasswordHash: hash}, f.users, f.books, f.reviews, j)

	tok, err := svc.Login("ADMIN@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	c, err := j.Parse(tok)
	if err != nil || c.Role != auth.RoleAdmin {
		t.Fatalf("bad admin token: %v %+v", err, c)
	}
	if _, err := svc.Login("admin@example.com", "wrong"); !domain.IsKind(err, domain.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	disabled := NewAdminService(AdminAccount{}, f.users, f.books, f.reviews, j)
	if _, err := disabled.Login("", ""); !domain.IsKind(err, domain.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.user(t, "user_1")
	f.user(t, "user_2")
	b := f.book(t, "Effective Go")
	f.book(t, "Rust")
	if _, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{BookID: b.ID, Content: "great"}); err != nil {
		t.Fatalf("review: %v", err)
	}
	svc := NewAdminService(AdminAccount{}, f.users, f.books, f.reviews, testJWT())

	users, err := svc.Users(ctx, "user_2", 0, 10)
	if err != nil || users.Total != 1 {
		t.Fatalf("users: %v %+v", err, users)
	}
	books, err := svc.Books(ctx, "Go", 0, 10)
	if err != nil || books.Total != 1 || books.Items[0].ID != b.ID {
		t.Fatalf("books: %v %+v", err, books)
	}
	reviews, err := svc.Reviews(ctx, "", 0, 10)
	if err != nil || reviews.Total != 1 {
		t.Fatalf("reviews: %v %+v", err, reviews)
	}
}


package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"paper-api/internal/client/catalog"
	"paper-api/internal/client/identity"
	"paper-api/internal/core/auth"
	"paper-api/internal/core/database"
	"paper-api/internal/domain"
	"paper-api/internal/repo"
)

type fakeCatalog struct {
	volumes map[string]catalog.Volume
	search  []catalog.Volume
	calls   int
	err     error
}

func (f *fakeCatalog) Search(_ context.Context, q string, max int) (*catalog.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.SearchResult{TotalItems: len(f.search), Items: f.search}, nil
}

func (f *fakeCatalog) Volume(_ context.Context, id string) (*catalog.Volume, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.volumes[id]
	if !ok {
		return nil, domain.NotFound("volume %s not found", id)
	}
	return &v, nil
}

type fakeIdentity struct {
	info *identity.UserInfo
	err  error
}

func (f *fakeIdentity) UserInfo(context.Context, string) (*identity.UserInfo, error) {
	return f.info, f.err
}

type fixture struct {
	db      *gorm.DB
	users   *repo.UserRepo
	books   *repo.BookRepo
	reviews *repo.ReviewRepo
	likes   *repo.LikeRepo
	catalog *fakeCatalog
	svc     *ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, e := db.DB(); e == nil {
			_ = sqlDB.Close()
		}
	})
	f := &fixture{
		db:      db,
		users:   repo.NewUserRepo(db),
		books:   repo.NewBookRepo(db),
		reviews: repo.NewReviewRepo(db),
		likes:   repo.NewLikeRepo(db),
		catalog: &fakeCatalog{volumes: map[string]catalog.Volume{}},
	}
	f.svc = NewReviewService(f.users, f.books, f.reviews, f.likes, f.catalog, nil)
	return f
}

func (f *fixture) user(t *testing.T, id string) auth.Principal {
	t.Helper()
	if err := f.users.Create(context.Background(), &domain.User{ID: id, Email: id + "@example.com", AuthProvider: domain.AuthProviderGoogle}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return auth.Principal{UserID: id, Role: auth.RoleUser}
}

func (f *fixture) book(t *testing.T, title string) *domain.Book {
	t.Helper()
	b, err := f.svc.CreateBook(context.Background(), CreateBookInput{Title: title})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	return b
}

func TestCreateBookDefaults(t *testing.T) {
	f := newFixture(t)
	b, err := f.svc.CreateBook(context.Background(), CreateBookInput{Title: "  リーダブルコード  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Title != "リーダブルコード" || b.Type != domain.BookTechnical {
		t.Fatalf("unexpected book: %+v", b)
	}
	if b.Authors == nil || len(b.Authors) != 0 {
		t.Fatalf("authors should be empty list, got %#v", b.Authors)
	}
	got, err := f.svc.GetBook(context.Background(), b.ID)
	if err != nil || got.Title != b.Title {
		t.Fatalf("reload: %v %+v", err, got)
	}
}

func TestCreateBookValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []CreateBookInput{
		{Title: "   "},
		{Title: "x", PageCount: -1},
		{Title: "x", Type: "COMIC"},
	}
	for _, in := range cases {
		if _, err := f.svc.CreateBook(ctx, in); !domain.IsKind(err, domain.KindValidation) {
			t.Fatalf("%+v: expected validation_error, got %v", in, err)
		}
	}
	if _, err := f.svc.CreateBook(ctx, CreateBookInput{Title: "a", ISBN: "9784873115658"}); err != nil {
		t.Fatalf("first isbn: %v", err)
	}
	if _, err := f.svc.CreateBook(ctx, CreateBookInput{Title: "b", ISBN: "9784873115658"}); !domain.IsKind(err, domain.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateReviewBlankContentPersistsNothing(t *testing.T) {
	f := newFixture(t)
	actor := f.user(t, "user_1")
	b := f.book(t, "Go")
	_, err := f.svc.CreateReview(context.Background(), actor, CreateReviewInput{BookID: b.ID, Content: " \n\t "})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
	var n int64
	f.db.Model(&domain.Review{}).Count(&n)
	if n != 0 {
		t.Fatalf("review persisted: %d", n)
	}
}

func TestCreateReviewUnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, "Go")
	ghost := auth.Principal{UserID: "ghost", Role: auth.RoleUser}
	if _, err := f.svc.CreateReview(ctx, ghost, CreateReviewInput{BookID: b.ID, Content: "ok"}); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found for user, got %v", err)
	}
	actor := f.user(t, "user_1")
	if _, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{BookID: "missing", Content: "ok"}); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found for book, got %v", err)
	}
	if _, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{Content: "ok"}); !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation_error without book reference, got %v", err)
	}
}

func TestDuplicateReviewPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.user(t, "user_1")
	b := f.book(t, "Go")
	in := CreateReviewInput{BookID: b.ID, Content: "good"}

	for i := 0; i < 2; i++ {
		if _, err := f.svc.CreateReview(ctx, actor, in); err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
	}

	f.svc.AllowDuplicates = false
	if _, err := f.svc.CreateReview(ctx, actor, in); !domain.IsKind(err, domain.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSentimentUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.user(t, "user_1")
	b := f.book(t, "Go")
	r, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{BookID: b.ID, Content: "good"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	if l, err := f.svc.GetSentiment(ctx, actor, r.ID); err != nil || l != nil {
		t.Fatalf("expected no sentiment yet: %v %+v", err, l)
	}
	for _, liked := range []bool{true, false, false, true, false} {
		if _, err := f.svc.SetSentiment(ctx, actor, r.ID, liked); err != nil {
			t.Fatalf("set %v: %v", liked, err)
		}
	}
	var n int64
	f.db.Model(&domain.Like{}).Where("user_id = ? AND review_id = ?", actor.UserID, r.ID).Count(&n)
	if n != 1 {
		t.Fatalf("expected exactly one row, got %d", n)
	}
	l, err := f.svc.GetSentiment(ctx, actor, r.ID)
	if err != nil || l == nil || l.IsLiked {
		t.Fatalf("last write should win: %v %+v", err, l)
	}

	other := f.user(t, "user_2")
	if _, err := f.svc.SetSentiment(ctx, other, r.ID, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := f.svc.GetReview(ctx, r.ID)
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if v.Likes != 1 || v.Dislikes != 1 {
		t.Fatalf("unexpected tallies: %+v", v.ReviewStats)
	}

	if _, err := f.svc.SetSentiment(ctx, actor, "missing", true); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSentimentOverwriteKeepsCreatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.user(t, "user_1")
	b := f.book(t, "Go")
	r, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{BookID: b.ID, Content: "good"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	first, err := f.svc.SetSentiment(ctx, actor, r.ID, true)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	second, err := f.svc.SetSentiment(ctx, actor, r.ID, false)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("createdAt changed on overwrite: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updatedAt should move forward: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if second.IsLiked {
		t.Fatalf("expected dislike after overwrite")
	}
}

func TestConcurrentSentimentKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.user(t, "user_1")
	b := f.book(t, "Go")
	r, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{BookID: b.ID, Content: "good"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(liked bool) {
			defer wg.Done()
			if _, err := f.svc.SetSentiment(ctx, actor, r.ID, liked); err != nil {
				t.Errorf("set %v: %v", liked, err)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	var n int64
	f.db.Model(&domain.Like{}).Where("user_id = ? AND review_id = ?", actor.UserID, r.ID).Count(&n)
	if n != 1 {
		t.Fatalf("expected exactly one row, got %d", n)
	}
	v, err := f.svc.GetReview(ctx, r.ID)
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if v.Likes+v.Dislikes != 1 {
		t.Fatalf("one user counts once: %+v", v.ReviewStats)
	}
}

func TestCreateReviewFromVolume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.user(t, "user_1")
	f.catalog.volumes["vol1"] = catalog.Volume{
		ID:            "vol1",
		Title:         "ハーモニー",
		Authors:       []string{"伊藤計劃"},
		PublishedDate: "2008-12",
		Categories:    []string{"Fiction"},
		PageCount:     360,
		ISBN:          "9784152089939",
	}

	r1, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{VolumeID: "vol1", Content: "面白い"})
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	r2, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{VolumeID: "vol1", Content: "再読"})
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if r1.BookID != r2.BookID {
		t.Fatalf("volume resolved to two books: %s %s", r1.BookID, r2.BookID)
	}
	b, _ := f.books.FindByID(ctx, r1.BookID)
	if b.Type != domain.BookNovel || b.PublishedAt == nil || b.PublishedAt.Month() != time.December {
		t.Fatalf("unexpected mapping: %+v", b)
	}
	if f.catalog.calls != 1 {
		t.Fatalf("catalog should be hit once, got %d", f.catalog.calls)
	}

	if _, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{VolumeID: "nope", Content: "x"}); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestCreateReviewFromTitlePrefersExactMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.user(t, "user_1")
	f.catalog.search = []catalog.Volume{
		{ID: "a", Title: "Go Programming Blueprints"},
		{ID: "b", Title: "  go  "},
	}
	r, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{Title: "Go", Content: "ok"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	b, _ := f.books.FindByID(ctx, r.BookID)
	if b.VolumeID == nil || *b.VolumeID != "b" {
		t.Fatalf("expected exact title match, got %+v", b)
	}

	f.catalog.search = nil
	if _, err := f.svc.CreateReview(ctx, actor, CreateReviewInput{Title: "Nothing", Content: "ok"}); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestBookWithReviewsAndUserListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.user(t, "user_1")
	u2 := f.user(t, "user_2")
	b := f.book(t, "Go")
	for _, a := range []auth.Principal{u1, u2} {
		if _, err := f.svc.CreateReview(ctx, a, CreateReviewInput{BookID: b.ID, Content: "by " + a.UserID}); err != nil {
			t.Fatalf("review: %v", err)
		}
	}
	v, err := f.svc.BookWithReviews(ctx, b.ID, 0, 10)
	if err != nil {
		t.Fatalf("book view: %v", err)
	}
	if v.Reviews.Total != 2 || len(v.Reviews.Items) != 2 {
		t.Fatalf("unexpected reviews: %+v", v.Reviews)
	}
	p, err := f.svc.ReviewsByUser(ctx, u1.UserID, 0, 10)
	if err != nil || p.Total != 1 {
		t.Fatalf("user reviews: %v %+v", err, p)
	}
	if _, err := f.svc.ReviewsByUser(ctx, "ghost", 0, 10); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestParsePublishedDate(t *testing.T) {
	for in, year := range map[string]int{"2011-06-24": 2011, "2008-12": 2008, "1999": 1999} {
		got := parsePublishedDate(in)
		if got == nil || got.Year() != year {
			t.Fatalf("%s: got %v", in, got)
		}
	}
	if parsePublishedDate("unknown") != nil {
		t.Fatalf("expected nil for unparsable date")
	}
}

package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"paper-api/internal/client/catalog"
	"paper-api/internal/core/auth"
	"paper-api/internal/domain"
	"paper-api/internal/feature/bookmatch"
	"paper-api/pkg/utils"
)

type ReviewService struct {
	users   domain.UserRepository
	books   domain.BookRepository
	reviews domain.ReviewRepository
	likes   domain.LikeRepository
	catalog CatalogAPI

	// 同一用户能否对同一本书写多条书评
	AllowDuplicates bool
	log             *zap.Logger
}

func NewReviewService(
	users domain.UserRepository,
	books domain.BookRepository,
	reviews domain.ReviewRepository,
	likes domain.LikeRepository,
	catalog CatalogAPI,
	l *zap.Logger,
) *ReviewService {
	if l == nil {
		l = zap.NewNop()
	}
	return &ReviewService{
		users: users, books: books, reviews: reviews, likes: likes, catalog: catalog,
		AllowDuplicates: true,
		log:             l,
	}
}

type CreateBookInput struct {
	Title       string          `json:"title"`
	Authors     []string        `json:"authors"`
	Publisher   string          `json:"publisher"`
	Type        domain.BookType `json:"type"`
	PageCount   int             `json:"pageCount"`
	Summary     string          `json:"summary"`
	PublishedAt *time.Time      `json:"publishedAt"`
	ISBN        string          `json:"isbn"`
	VolumeID    string          `json:"volumeId"`
	ImageURL    string          `json:"imageUrl"`
}

func (s *ReviewService) CreateBook(ctx context.Context, in CreateBookInput) (*domain.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Validation("title is required")
	}
	if in.PageCount < 0 {
		return nil, domain.Validation("pageCount must be positive")
	}
	typ := in.Type
	if typ == "" {
		typ = domain.BookTechnical
	}
	if !typ.Valid() {
		return nil, domain.Validation("unknown book type %q", in.Type)
	}
	authors := make([]string, 0, len(in.Authors))
	for _, a := range in.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	b := &domain.Book{
		ID:          utils.NewID(),
		Title:       title,
		Authors:     authors,
		Publisher:   strings.TrimSpace(in.Publisher),
		Type:        typ,
		PageCount:   in.PageCount,
		Summary:     in.Summary,
		PublishedAt: in.PublishedAt,
		ISBN:        optional(in.ISBN),
		VolumeID:    optional(in.VolumeID),
		ImageURL:    catalog.SecureURL(strings.TrimSpace(in.ImageURL)),
	}
	if err := s.books.Create(ctx, b); err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			return nil, err
		}
		return nil, domain.Internal("create book failed", err)
	}
	return b, nil
}

func (s *ReviewService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("load book failed", err)
	}
	if b == nil {
		return nil, domain.NotFound("book %s not found", id)
	}
	return b, nil
}

// CreateReviewInput 书的定位三选一：本地 BookID、目录 VolumeID、或按书名检索
type CreateReviewInput struct {
	BookID   string `json:"bookId"`
	VolumeID string `json:"volumeId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (s *ReviewService) CreateReview(ctx context.Context, actor auth.Principal, in CreateReviewInput) (*domain.Review, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, domain.Validation("content is required")
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, domain.Internal("load user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user %s not found", actor.UserID)
	}
	book, err := s.resolveBook(ctx, in)
	if err != nil {
		return nil, err
	}
	if !s.AllowDuplicates {
		dup, err := s.reviews.ExistsForUserBook(ctx, u.ID, book.ID)
		if err != nil {
			return nil, domain.Internal("check duplicate review failed", err)
		}
		if dup {
			return nil, domain.Conflict("user already reviewed this book")
		}
	}
	r := &domain.Review{
		ID:      utils.NewID(),
		Content: content,
		UserID:  u.ID,
		BookID:  book.ID,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, domain.Internal("create review failed", err)
	}
	s.log.Info("review created",
		zap.String("review_id", r.ID), zap.String("user_id", u.ID), zap.String("book_id", book.ID))
	r.Book = book
	return r, nil
}

func (s *ReviewService) resolveBook(ctx context.Context, in CreateReviewInput) (*domain.Book, error) {
	switch {
	case strings.TrimSpace(in.BookID) != "":
		return s.GetBook(ctx, strings.TrimSpace(in.BookID))
	case strings.TrimSpace(in.VolumeID) != "":
		return s.bookFromVolume(ctx, strings.TrimSpace(in.VolumeID))
	case strings.TrimSpace(in.Title) != "":
		return s.bookFromTitle(ctx, strings.TrimSpace(in.Title))
	}
	return nil, domain.Validation("one of bookId, volumeId or title is required")
}

// bookFromVolume 按目录卷找本地书，没有就建；并发重复创建时回查
func (s *ReviewService) bookFromVolume(ctx context.Context, volumeID string) (*domain.Book, error) {
	if b, err := s.books.FindByVolumeID(ctx, volumeID); err != nil {
		return nil, domain.Internal("load book failed", err)
	} else if b != nil {
		return b, nil
	}
	if s.catalog == nil {
		return nil, domain.NotFound("volume %s not found", volumeID)
	}
	v, err := s.catalog.Volume(ctx, volumeID)
	if err != nil {
		return nil, err
	}
	return s.bookFromCatalog(ctx, v)
}

func (s *ReviewService) bookFromCatalog(ctx context.Context, v *catalog.Volume) (*domain.Book, error) {
	b, err := s.CreateBook(ctx, BookInputFromVolume(v))
	if err == nil {
		return b, nil
	}
	if !domain.IsKind(err, domain.KindConflict) {
		return nil, err
	}
	if existing, e := s.books.FindByVolumeID(ctx, v.ID); e == nil && existing != nil {
		return existing, nil
	}
	if v.ISBN != "" {
		if existing, e := s.books.FindByISBN(ctx, v.ISBN); e == nil && existing != nil {
			return existing, nil
		}
	}
	return nil, err
}

// bookFromTitle 书名精确匹配优先，其次子串，最后退回第一条结果
func (s *ReviewService) bookFromTitle(ctx context.Context, title string) (*domain.Book, error) {
	if s.catalog == nil {
		return nil, domain.NotFound("no book titled %q", title)
	}
	res, err := s.catalog.Search(ctx, "intitle:"+title, 10)
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, domain.NotFound("no book titled %q", title)
	}
	pick := &res.Items[0]
	for i := range res.Items {
		if bookmatch.Equal(res.Items[i].Title, title) {
			pick = &res.Items[i]
			break
		}
	}
	if !bookmatch.Equal(pick.Title, title) {
		for i := range res.Items {
			if bookmatch.Contains(res.Items[i].Title, title) {
				pick = &res.Items[i]
				break
			}
		}
	}
	if b, err := s.books.FindByVolumeID(ctx, pick.ID); err == nil && b != nil {
		return b, nil
	}
	return s.bookFromCatalog(ctx, pick)
}

// SetSentiment 覆盖写入 (actor, review) 的赞/踩
func (s *ReviewService) SetSentiment(ctx context.Context, actor auth.Principal, reviewID string, isLiked bool) (*domain.Like, error) {
	r, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, domain.Internal("load review failed", err)
	}
	if r == nil {
		return nil, domain.NotFound("review %s not found", reviewID)
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, domain.Internal("load user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user %s not found", actor.UserID)
	}
	l := &domain.Like{UserID: u.ID, ReviewID: r.ID, IsLiked: isLiked}
	if err := s.likes.Upsert(ctx, l); err != nil {
		return nil, domain.Internal("save sentiment failed", err)
	}
	// 覆盖写时 createdAt 保留首次表态时间，回读库里的行
	stored, err := s.likes.Find(ctx, u.ID, r.ID)
	if err != nil || stored == nil {
		return nil, domain.Internal("reload sentiment failed", err)
	}
	return stored, nil
}

// GetSentiment 未表态时返回 nil
func (s *ReviewService) GetSentiment(ctx context.Context, actor auth.Principal, reviewID string) (*domain.Like, error) {
	l, err := s.likes.Find(ctx, actor.UserID, reviewID)
	if err != nil {
		return nil, domain.Internal("load sentiment failed", err)
	}
	return l, nil
}

type ReviewView struct {
	domain.Review
	domain.ReviewStats
}

type Page[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

type BookView struct {
	domain.Book
	Reviews Page[ReviewView] `json:"reviews"`
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (*ReviewView, error) {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("load review failed", err)
	}
	if r == nil {
		return nil, domain.NotFound("review %s not found", id)
	}
	st, err := s.likes.CountByReview(ctx, id)
	if err != nil {
		return nil, domain.Internal("count likes failed", err)
	}
	return &ReviewView{Review: *r, ReviewStats: st}, nil
}

func (s *ReviewService) BookWithReviews(ctx context.Context, id string, offset, limit int) (*BookView, error) {
	b, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	rs, total, err := s.reviews.ListByBook(ctx, id, offset, limit)
	if err != nil {
		return nil, domain.Internal("list reviews failed", err)
	}
	views, err := s.withStats(ctx, rs)
	if err != nil {
		return nil, err
	}
	return &BookView{Book: *b, Reviews: Page[ReviewView]{Total: total, Items: views}}, nil
}

func (s *ReviewService) ReviewsByUser(ctx context.Context, userID string, offset, limit int) (*Page[ReviewView], error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.Internal("load user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user %s not found", userID)
	}
	rs, total, err := s.reviews.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, domain.Internal("list reviews failed", err)
	}
	views, err := s.withStats(ctx, rs)
	if err != nil {
		return nil, err
	}
	return &Page[ReviewView]{Total: total, Items: views}, nil
}

func (s *ReviewService) withStats(ctx context.Context, rs []domain.Review) ([]ReviewView, error) {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	stats, err := s.likes.CountByReviews(ctx, ids)
	if err != nil {
		return nil, domain.Internal("count likes failed", err)
	}
	out := make([]ReviewView, 0, len(rs))
	for _, r := range rs {
		out = append(out, ReviewView{Review: r, ReviewStats: stats[r.ID]})
	}
	return out, nil
}

// BookInputFromVolume 目录卷 → 本地书；分类含 fiction 视为小说
func BookInputFromVolume(v *catalog.Volume) CreateBookInput {
	typ := domain.BookTechnical
	for _, c := range v.Categories {
		if bookmatch.Contains(c, "fiction") && !bookmatch.Contains(c, "nonfiction") {
			typ = domain.BookNovel
			break
		}
	}
	return CreateBookInput{
		Title:       v.Title,
		Authors:     v.Authors,
		Publisher:   v.Publisher,
		Type:        typ,
		PageCount:   v.PageCount,
		Summary:     v.Description,
		PublishedAt: parsePublishedDate(v.PublishedDate),
		ISBN:        v.ISBN,
		VolumeID:    v.ID,
		ImageURL:    v.ImageURL,
	}
}

// 目录的出版日期可能只有年或年月
func parsePublishedDate(s string) *time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

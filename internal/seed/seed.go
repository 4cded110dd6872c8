// Package seed inserts the demo users, books, reviews and likes.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-api/internal/domain"
	"paper-api/internal/repo"
	"paper-api/pkg/utils"
)

type Options struct {
	// Reset 先清空四张表
	Reset    bool
	RandSeed int64
	Log      *zap.Logger
}

type Result struct {
	Users   int `json:"users"`
	Books   int `json:"books"`
	Reviews int `json:"reviews"`
	Likes   int `json:"likes"`
}

func Users() []domain.User {
	return []domain.User{
		{
			ID:           "user_1",
			Email:        "user1@example.com",
			AuthProvider: domain.AuthProviderGoogle,
			DisplayName:  "Tech Reader 1",
			Bio:          "技術書が大好きなエンジニアです。",
			LaprasURL:    "https://lapras.com/public/EXAMPLE1",
			ImageURL:     "https://example.com/profile1.jpg",
		},
		{
			ID:           "user_2",
			Email:        "user2@example.com",
			AuthProvider: domain.AuthProviderGoogle,
			DisplayName:  "Book Lover 2",
			Bio:          "読書が趣味のITエンジニアです。",
			LaprasURL:    "https://lapras.com/public/EXAMPLE2",
			ImageURL:     "https://example.com/profile2.jpg",
		},
	}
}

func Books() []domain.Book {
	return []domain.Book{
		{
			Title:       "リーダブルコード",
			Authors:     []string{"Dustin Boswell", "Trevor Foucher"},
			Publisher:   "O'Reilly Media",
			Type:        domain.BookTechnical,
			PageCount:   260,
			Summary:     "より良いコードを書くためのシンプルで実践的なテクニック",
			PublishedAt: date("2012-06-23"),
			ISBN:        ptr("978-4873115658"),
			ImageURL:    "https://example.com/readable-code.jpg",
		},
		{
			Title:       "Clean Code",
			Authors:     []string{"Robert C. Martin"},
			Publisher:   "Prentice Hall",
			Type:        domain.BookTechnical,
			PageCount:   464,
			Summary:     "アジャイルソフトウェア技能者による職人的な技",
			PublishedAt: date("2008-08-01"),
			ISBN:        ptr("978-0132350884"),
			ImageURL:    "https://example.com/clean-code.jpg",
		},
		{
			Title:       "小説 プログラマー",
			Authors:     []string{"日向 夏"},
			Publisher:   "技術評論社",
			Type:        domain.BookNovel,
			PageCount:   320,
			Summary:     "新人プログラマーの成長物語",
			PublishedAt: date("2023-01-15"),
			ISBN:        ptr("978-1234567890"),
			ImageURL:    "https://example.com/programmer-novel.jpg",
		},
	}
}

// Run 单事务写入；已存在的书（按 ISBN）不重复建，也不再追加书评
func Run(ctx context.Context, db *gorm.DB, o Options) (*Result, error) {
	l := o.Log
	if l == nil {
		l = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(o.RandSeed))
	res := &Result{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if o.Reset {
			if err := reset(tx); err != nil {
				return err
			}
			l.Info("seed tables truncated")
		}

		users := repo.NewUserRepo(tx)
		books := repo.NewBookRepo(tx)
		reviews := repo.NewReviewRepo(tx)
		likes := repo.NewLikeRepo(tx)

		seedUsers := Users()
		for i := range seedUsers {
			if err := users.Upsert(ctx, &seedUsers[i]); err != nil {
				return fmt.Errorf("seed user %s: %w", seedUsers[i].ID, err)
			}
			res.Users++
		}

		for _, b := range Books() {
			existing, err := books.FindByISBN(ctx, *b.ISBN)
			if err != nil {
				return err
			}
			if existing != nil {
				l.Info("seed book exists, skipped", zap.String("isbn", *b.ISBN))
				continue
			}
			b.ID = utils.NewID()
			if err := books.Create(ctx, &b); err != nil {
				return fmt.Errorf("seed book %q: %w", b.Title, err)
			}
			res.Books++

			for _, u := range seedUsers {
				r := &domain.Review{
					ID:      utils.NewID(),
					Content: fmt.Sprintf("%sは非常に参考になりました。特に%sという点が素晴らしいです。", b.Title, b.Summary),
					UserID:  u.ID,
					BookID:  b.ID,
				}
				if err := reviews.Create(ctx, r); err != nil {
					return fmt.Errorf("seed review: %w", err)
				}
				res.Reviews++

				if err := likes.Upsert(ctx, &domain.Like{UserID: u.ID, ReviewID: r.ID, IsLiked: rng.Float64() > 0.5}); err != nil {
					return fmt.Errorf("seed like: %w", err)
				}
				res.Likes++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.Info("seed data inserted",
		zap.Int("users", res.Users), zap.Int("books", res.Books),
		zap.Int("reviews", res.Reviews), zap.Int("likes", res.Likes))
	return res, nil
}

// 按外键依赖逆序删除
func reset(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []any{&domain.Like{}, &domain.Review{}, &domain.Book{}, &domain.User{}} {
		if err := all.Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func ptr(s string) *string { return &s }

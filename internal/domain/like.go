package domain

import (
	"context"
	"time"
)

// Like 一个用户对一条书评的态度；(user_id, review_id) 即主键
type Like struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"userId"`
	ReviewID  string    `gorm:"primaryKey;size:32;index" json:"reviewId"`
	IsLiked   bool      `gorm:"not null" json:"isLiked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Review *Review `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Like) TableName() string { return "likes" }

type LikeRepository interface {
	// Upsert 同一 (user, review) 后写覆盖前写
	Upsert(ctx context.Context, l *Like) error
	Find(ctx context.Context, userID, reviewID string) (*Like, error)
	CountByReview(ctx context.Context, reviewID string) (ReviewStats, error)
	CountByReviews(ctx context.Context, reviewIDs []string) (map[string]ReviewStats, error)
}

// Models 参与自动迁移的全部表，顺序即依赖顺序
func Models() []any {
	return []any{&User{}, &Book{}, &Review{}, &Like{}}
}

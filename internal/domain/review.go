package domain

import (
	"context"
	"time"
)

type Review struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    string    `gorm:"size:64;not null;index:idx_review_user_book,priority:1" json:"userId"`
	BookID    string    `gorm:"size:32;not null;index;index:idx_review_user_book,priority:2" json:"bookId"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
}

func (Review) TableName() string { return "reviews" }

// ReviewStats 点赞/点踩计数，读时聚合，不落库
type ReviewStats struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id string) (*Review, error)
	ExistsForUserBook(ctx context.Context, userID, bookID string) (bool, error)
	ListByBook(ctx context.Context, bookID string, offset, limit int) ([]Review, int64, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]Review, int64, error)
	List(ctx context.Context, q string, offset, limit int) ([]Review, int64, error)
}

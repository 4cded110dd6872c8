package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

type BookType string

const (
	BookTechnical BookType = "TECHNICAL"
	BookNovel     BookType = "NOVEL"
	BookOther     BookType = "OTHER"
)

func (t BookType) Valid() bool {
	switch t {
	case BookTechnical, BookNovel, BookOther:
		return true
	}
	return false
}

type Book struct {
	ID          string                      `gorm:"primaryKey;size:32" json:"id"`
	Title       string                      `gorm:"size:512;not null" json:"title"`
	Authors     datatypes.JSONSlice[string] `gorm:"not null" json:"authors"`
	Publisher   string                      `gorm:"size:255" json:"publisher"`
	Type        BookType                    `gorm:"size:16;not null;default:TECHNICAL" json:"type"`
	PageCount   int                         `json:"pageCount"`
	Summary     string                      `gorm:"type:text" json:"summary"`
	PublishedAt *time.Time                  `json:"publishedAt"`
	ISBN        *string                     `gorm:"uniqueIndex;size:32" json:"isbn"`
	VolumeID    *string                     `gorm:"uniqueIndex;size:64" json:"volumeId"`
	ImageURL    string                      `gorm:"size:512" json:"imageUrl"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

func (Book) TableName() string { return "books" }

type BookRepository interface {
	Create(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id string) (*Book, error)
	FindByVolumeID(ctx context.Context, volumeID string) (*Book, error)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	List(ctx context.Context, q string, offset, limit int) ([]Book, int64, error)
}

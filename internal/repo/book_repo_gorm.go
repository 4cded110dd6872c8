package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"paper-api/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if err != nil && IsDupKey(err) {
		return domain.Conflict("book with the same isbn or volume already exists")
	}
	return err
}

func (r *BookRepo) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *BookRepo) FindByVolumeID(ctx context.Context, volumeID string) (*domain.Book, error) {
	return r.first(ctx, "volume_id = ?", volumeID)
}

func (r *BookRepo) FindByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	return r.first(ctx, "isbn = ?", isbn)
}

func (r *BookRepo) first(ctx context.Context, cond string, arg any) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).First(&b, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.Book, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Book{})
	if s := strings.TrimSpace(q); s != "" {
		tx = tx.Where("title LIKE ?", "%"+s+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var books []domain.Book
	if err := tx.Offset(offset).Limit(limit).Order("created_at desc").Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

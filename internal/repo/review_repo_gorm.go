package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"paper-api/internal/domain"
)

type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Omit(clauseAssociations).Create(rv).Error
}

func (r *ReviewRepo) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).Preload("User").Preload("Book").First(&rv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) ExistsForUserBook(ctx context.Context, userID, bookID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepo) ListByBook(ctx context.Context, bookID string, offset, limit int) ([]domain.Review, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&domain.Review{}).Where("book_id = ?", bookID), offset, limit, "User")
}

func (r *ReviewRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Review, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&domain.Review{}).Where("user_id = ?", userID), offset, limit, "Book")
}

func (r *ReviewRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.Review, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Review{})
	if s := strings.TrimSpace(q); s != "" {
		tx = tx.Where("content LIKE ?", "%"+s+"%")
	}
	return r.page(tx, offset, limit)
}

// page 先计数再取页；Preload 只挂在取页查询上
func (r *ReviewRepo) page(tx *gorm.DB, offset, limit int, preloads ...string) ([]domain.Review, int64, error) {
	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	for _, p := range preloads {
		tx = tx.Preload(p)
	}
	var out []domain.Review
	if err := tx.Order("created_at desc").Order("id desc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

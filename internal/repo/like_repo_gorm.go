package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paper-api/internal/domain"
)

type LikeRepo struct{ db *gorm.DB }

func NewLikeRepo(db *gorm.DB) *LikeRepo { return &LikeRepo{db: db} }

// Upsert 依赖 (user_id, review_id) 主键冲突做原子覆盖，无需应用层加锁
func (r *LikeRepo) Upsert(ctx context.Context, l *domain.Like) error {
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return r.db.WithContext(ctx).Omit(clauseAssociations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "review_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_liked", "updated_at"}),
	}).Create(l).Error
}

func (r *LikeRepo) Find(ctx context.Context, userID, reviewID string) (*domain.Like, error) {
	var l domain.Like
	err := r.db.WithContext(ctx).First(&l, "user_id = ? AND review_id = ?", userID, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LikeRepo) CountByReview(ctx context.Context, reviewID string) (domain.ReviewStats, error) {
	m, err := r.CountByReviews(ctx, []string{reviewID})
	if err != nil {
		return domain.ReviewStats{}, err
	}
	return m[reviewID], nil
}

func (r *LikeRepo) CountByReviews(ctx context.Context, reviewIDs []string) (map[string]domain.ReviewStats, error) {
	out := make(map[string]domain.ReviewStats, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return out, nil
	}
	type row struct {
		ReviewID string
		IsLiked  bool
		N        int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Like{}).
		Select("review_id, is_liked, COUNT(*) AS n").
		Where("review_id IN ?", reviewIDs).
		Group("review_id, is_liked").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		s := out[rw.ReviewID]
		if rw.IsLiked {
			s.Likes += rw.N
		} else {
			s.Dislikes += rw.N
		}
		out[rw.ReviewID] = s
	}
	return out, nil
}

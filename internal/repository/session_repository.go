package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	// GetActive returns the session if it has not expired at now.
	GetActive(ctx context.Context, id string, now time.Time) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepository{db: db} }

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *sessionRepository) GetActive(ctx context.Context, id string, now time.Time) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).Where("id = ? AND expires_at > ?", id, now).First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{}).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}

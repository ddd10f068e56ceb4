package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/tierlist/internal/model"
)

type PushSubscriptionRepository interface {
	// Upsert stores the subscription keyed by endpoint, re-linking it to
	// sub.UserID and replacing the keys when the endpoint already exists.
	Upsert(ctx context.Context, sub *model.PushSubscription) error
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) (int64, error)
	Delete(ctx context.Context, id string) error
	ExistsForUser(ctx context.Context, userID string) (bool, error)
	// ListEligible returns subscriptions never notified or last notified before cutoff.
	ListEligible(ctx context.Context, cutoff time.Time) ([]*model.PushSubscription, error)
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

type pushSubscriptionRepository struct{ db *gorm.DB }

func NewPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID, endpoint string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&model.PushSubscription{})
	return res.RowsAffected, res.Error
}

func (r *pushSubscriptionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PushSubscription{}).Error
}

func (r *pushSubscriptionRepository) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.PushSubscription{}).
		Where("user_id = ?", userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *pushSubscriptionRepository) ListEligible(ctx context.Context, cutoff time.Time) ([]*model.PushSubscription, error) {
	var res []*model.PushSubscription
	err := r.db.WithContext(ctx).
		Where("last_notified_at IS NULL OR last_notified_at < ?", cutoff).
		Order("created_at ASC").
		Find(&res).Error
	return res, err
}

func (r *pushSubscriptionRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PushSubscription{}).
		Where("id = ?", id).
		Update("last_notified_at", at).Error
}

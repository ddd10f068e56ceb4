package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/internal/model"
)

type VoteRepository interface {
	// Find returns the vote for the (user, item, scope) key.
	Find(ctx context.Context, userID, itemID, scope string) (*model.Vote, error)
	Create(ctx context.Context, vote *model.Vote) error
	UpdateTier(ctx context.Context, id string, tier model.Tier) error
	// Delete removes the vote for the key and returns the number of rows removed.
	Delete(ctx context.Context, userID, itemID, scope string) (int64, error)
	TierCounts(ctx context.Context, itemID, scope string) (map[model.Tier]int64, error)
	ListByUser(ctx context.Context, userID, scope string, excludeIgnored bool) ([]*model.Vote, error)
	// ListIgnoredItems returns items the user ignored in scope, most recently ignored first.
	ListIgnoredItems(ctx context.Context, userID, scope string) ([]*model.Item, error)
	// CountCounted counts the user's non-ignored votes across all scopes.
	CountCounted(ctx context.Context, userID string) (int64, error)
	CountByKey(ctx context.Context, userID, itemID, scope string) (int64, error)
}

type voteRepository struct{ db *gorm.DB }

func NewVoteRepository(db *gorm.DB) VoteRepository { return &voteRepository{db: db} }

func (r *voteRepository) Find(ctx context.Context, userID, itemID, scope string) (*model.Vote, error) {
	var v model.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND scope = ?", userID, itemID, scope).
		First(&v).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *voteRepository) Create(ctx context.Context, vote *model.Vote) error {
	vote.Scope = model.ScopeOf(vote.RoomID)
	return translate(r.db.WithContext(ctx).Create(vote).Error)
}

func (r *voteRepository) UpdateTier(ctx context.Context, id string, tier model.Tier) error {
	res := r.db.WithContext(ctx).Model(&model.Vote{}).Where("id = ?", id).
		Updates(map[string]interface{}{"tier": tier, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, userID, itemID, scope string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND scope = ?", userID, itemID, scope).
		Delete(&model.Vote{})
	return res.RowsAffected, res.Error
}

func (r *voteRepository) TierCounts(ctx context.Context, itemID, scope string) (map[model.Tier]int64, error) {
	type row struct {
		Tier  model.Tier
		Count int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Select("tier, COUNT(*) AS count").
		Where("item_id = ? AND scope = ?", itemID, scope).
		Group("tier").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.Tier]int64, len(model.Tiers))
	for _, t := range model.Tiers {
		out[t] = 0
	}
	for _, rw := range rows {
		out[rw.Tier] = rw.Count
	}
	return out, nil
}

func (r *voteRepository) ListByUser(ctx context.Context, userID, scope string, excludeIgnored bool) ([]*model.Vote, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND scope = ?", userID, scope)
	if excludeIgnored {
		q = q.Where("tier <> ?", model.TierIgnored)
	}
	var res []*model.Vote
	err := q.Order("updated_at DESC").Find(&res).Error
	return res, err
}

func (r *voteRepository) ListIgnoredItems(ctx context.Context, userID, scope string) ([]*model.Item, error) {
	var res []*model.Item
	err := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Select("items.*").
		Joins("JOIN votes ON votes.item_id = items.id AND votes.scope = items.scope").
		Where("votes.user_id = ? AND votes.scope = ? AND votes.tier = ?", userID, scope, model.TierIgnored).
		Order("votes.updated_at DESC").
		Find(&res).Error
	return res, err
}

func (r *voteRepository) CountCounted(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Vote{}).
		Where("user_id = ? AND tier <> ?", userID, model.TierIgnored).
		Count(&n).Error
	return n, err
}

func (r *voteRepository) CountByKey(ctx context.Context, userID, itemID, scope string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Vote{}).
		Where("user_id = ? AND item_id = ? AND scope = ?", userID, itemID, scope).
		Count(&n).Error
	return n, err
}

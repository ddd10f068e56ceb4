package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/internal/model"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
	// FindByName looks up an item by case-insensitive name within one scope.
	FindByName(ctx context.Context, scope, name string) (*model.Item, error)
	Search(ctx context.Context, scope, q string, limit int) ([]*model.Item, error)
	ListRecent(ctx context.Context, scope string, limit int) ([]*model.Item, error)
	// ListByUser lists the user's items in scope, or in every scope when allScopes is set.
	ListByUser(ctx context.Context, userID, scope string, allScopes bool) ([]*model.Item, error)
	// ListOwnUnvoted returns the user's own items in scope that the user has no vote on, newest first.
	ListOwnUnvoted(ctx context.Context, userID, scope string, limit int) ([]*model.Item, error)
	// ListOthersUnvotedRandom returns other users' items in scope the user has no vote on, in random order.
	ListOthersUnvotedRandom(ctx context.Context, userID, scope string, limit int) ([]*model.Item, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes the item and its votes in one transaction.
	Delete(ctx context.Context, id string) error
}

type itemRepository struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepository{db: db} }

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	item.NameKey = model.NormalizeItemName(item.Name)
	item.Scope = model.ScopeOf(item.RoomID)
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (r *itemRepository) FindByName(ctx context.Context, scope, name string) (*model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).
		Where("scope = ? AND name_key = ?", scope, model.NormalizeItemName(name)).
		First(&it).Error
	if err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (r *itemRepository) Search(ctx context.Context, scope, q string, limit int) ([]*model.Item, error) {
	var res []*model.Item
	err := r.db.WithContext(ctx).
		Where("scope = ? AND name_key LIKE ? ESCAPE '\\'", scope, "%"+escapeLike(model.NormalizeItemName(q))+"%").
		Order("name ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *itemRepository) ListRecent(ctx context.Context, scope string, limit int) ([]*model.Item, error) {
	var res []*model.Item
	err := r.db.WithContext(ctx).Where("scope = ?", scope).Order("created_at DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *itemRepository) ListByUser(ctx context.Context, userID, scope string, allScopes bool) ([]*model.Item, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !allScopes {
		q = q.Where("scope = ?", scope)
	}
	var res []*model.Item
	err := q.Order("created_at DESC").Find(&res).Error
	return res, err
}

func (r *itemRepository) unvoted(ctx context.Context, userID, scope string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("items.scope = ?", scope).
		Where("NOT EXISTS (SELECT 1 FROM votes WHERE votes.item_id = items.id AND votes.user_id = ? AND votes.scope = items.scope)", userID)
}

func (r *itemRepository) ListOwnUnvoted(ctx context.Context, userID, scope string, limit int) ([]*model.Item, error) {
	q := r.unvoted(ctx, userID, scope).Where("items.user_id = ?", userID).Order("items.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var res []*model.Item
	err := q.Find(&res).Error
	return res, err
}

func (r *itemRepository) ListOthersUnvotedRandom(ctx context.Context, userID, scope string, limit int) ([]*model.Item, error) {
	var res []*model.Item
	err := r.unvoted(ctx, userID, scope).
		Where("items.user_id <> ?", userID).
		Order("RANDOM()").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).Count(&n).Error
	return n, err
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&model.Vote{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Item{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

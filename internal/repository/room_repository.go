package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/internal/model"
)

// RoomDetail 房间及创建者昵称
type RoomDetail struct {
	ID            string    `json:"id"`
	Hash          string    `json:"hash"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	UserID        string    `json:"userId"`
	CreatorPseudo string    `json:"creatorPseudo"`
	CreatedAt     time.Time `json:"createdAt"`
}

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	GetByHash(ctx context.Context, hash string) (*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetDetailByHash(ctx context.Context, hash string) (*RoomDetail, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Room, error)
	Update(ctx context.Context, id, name string, description *string) error
	// Delete removes the room with its items and votes in one transaction.
	Delete(ctx context.Context, id string) error
}

type roomRepository struct{ db *gorm.DB }

func NewRoomRepository(db *gorm.DB) RoomRepository { return &roomRepository{db: db} }

func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return translate(r.db.WithContext(ctx).Create(room).Error)
}

func (r *roomRepository) GetByHash(ctx context.Context, hash string) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) GetDetailByHash(ctx context.Context, hash string) (*RoomDetail, error) {
	var rows []RoomDetail
	err := r.db.WithContext(ctx).
		Table("rooms").
		Select("rooms.id, rooms.hash, rooms.name, rooms.description, rooms.user_id, rooms.created_at, users.pseudo AS creator_pseudo").
		Joins("LEFT JOIN users ON users.id = rooms.user_id").
		Where("rooms.hash = ?", hash).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (r *roomRepository) ListByUser(ctx context.Context, userID string) ([]*model.Room, error) {
	var res []*model.Room
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&res).Error
	return res, err
}

func (r *roomRepository) Update(ctx context.Context, id, name string, description *string) error {
	res := r.db.WithContext(ctx).Model(&model.Room{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "description": description})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scope = ?", id).Delete(&model.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("scope = ?", id).Delete(&model.Item{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Room{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

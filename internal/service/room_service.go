package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/pkg/apperr"
	"github.com/d60-Lab/tierlist/pkg/logger"
)

const (
	RoomHashLength    = 8
	MaxRoomNameLength = 100
	maxHashAttempts   = 10
	hashAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// RoomUpdate 可选字段；nil 表示不修改
type RoomUpdate struct {
	Name        *string
	Description *string
}

// RoomService 房间管理
type RoomService interface {
	Create(ctx context.Context, userID, name string, description *string) (*model.Room, error)
	Get(ctx context.Context, hash string) (*repository.RoomDetail, error)
	ListMine(ctx context.Context, userID string) ([]*model.Room, error)
	Update(ctx context.Context, userID, hash string, upd RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, userID, hash string) error
}

// ScopeResolver maps an optional room id to its scope key, failing when the
// room does not exist.
type ScopeResolver interface {
	ResolveScope(ctx context.Context, roomID *string) (string, error)
}

type scopeResolver struct{ rooms repository.RoomRepository }

func NewScopeResolver(rooms repository.RoomRepository) ScopeResolver {
	return &scopeResolver{rooms: rooms}
}

func (r *scopeResolver) ResolveScope(ctx context.Context, roomID *string) (string, error) {
	if roomID == nil || *roomID == "" {
		return model.GlobalScope, nil
	}
	room, err := r.rooms.GetByID(ctx, *roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperr.NotFound("room not found")
	}
	if err != nil {
		return "", err
	}
	return room.ID, nil
}

type roomService struct {
	rooms       repository.RoomRepository
	leaderboard LeaderboardService
	newHash     func() (string, error)
}

func NewRoomService(rooms repository.RoomRepository, leaderboard LeaderboardService) RoomService {
	return &roomService{rooms: rooms, leaderboard: leaderboard, newHash: generateRoomHash}
}

func generateRoomHash() (string, error) {
	max := big.NewInt(int64(len(hashAlphabet)))
	b := make([]byte, RoomHashLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = hashAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (s *roomService) Create(ctx context.Context, userID, name string, description *string) (*model.Room, error) {
	name, err := normalizeRoomName(name)
	if err != nil {
		return nil, err
	}
	room := &model.Room{
		ID:          uuid.New().String(),
		Name:        name,
		Description: normalizeDescription(description),
		UserID:      userID,
	}

	var lastErr error
	for attempt := 1; attempt <= maxHashAttempts; attempt++ {
		hash, err := s.newHash()
		if err != nil {
			return nil, apperr.Unexpected("generate room hash", err)
		}
		room.Hash = hash
		err = s.rooms.Create(ctx, room)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		lastErr = err
		logger.Debug("room hash collision", zap.String("hash", hash), zap.Int("attempt", attempt))
	}
	return nil, apperr.Unexpected("could not allocate a unique room hash", lastErr)
}

func (s *roomService) Get(ctx context.Context, hash string) (*repository.RoomDetail, error) {
	d, err := s.rooms.GetDetailByHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("room not found")
	}
	return d, err
}

func (s *roomService) ListMine(ctx context.Context, userID string) ([]*model.Room, error) {
	return s.rooms.ListByUser(ctx, userID)
}

func (s *roomService) owned(ctx context.Context, userID, hash string) (*model.Room, error) {
	room, err := s.rooms.GetByHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("room not found")
	}
	if err != nil {
		return nil, err
	}
	if room.UserID != userID {
		return nil, apperr.Authorization("only the room owner can do this")
	}
	return room, nil
}

func (s *roomService) Update(ctx context.Context, userID, hash string, upd RoomUpdate) (*model.Room, error) {
	room, err := s.owned(ctx, userID, hash)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name, err := normalizeRoomName(*upd.Name)
		if err != nil {
			return nil, err
		}
		room.Name = name
	}
	if upd.Description != nil {
		room.Description = normalizeDescription(upd.Description)
	}
	if err := s.rooms.Update(ctx, room.ID, room.Name, room.Description); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, userID, hash string) error {
	room, err := s.owned(ctx, userID, hash)
	if err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, room.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("room not found")
		}
		return err
	}
	s.leaderboard.Invalidate(ctx, room.ID)
	return nil
}

func normalizeRoomName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 1 || n > MaxRoomNameLength {
		return "", apperr.Validation("room name must be between 1 and 100 characters")
	}
	return name, nil
}

func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	v := strings.TrimSpace(*d)
	if v == "" {
		return nil
	}
	return &v
}

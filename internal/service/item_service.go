package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/pkg/apperr"
)

const (
	SearchLimit          = 20
	RecommendationsLimit = 20
)

// ItemService 条目的查询、创建与删除
type ItemService interface {
	Search(ctx context.Context, q string, roomID *string) ([]*model.Item, error)
	// ListMine lists the caller's items; all ignores the room filter.
	ListMine(ctx context.Context, userID string, roomID *string, all bool) ([]*model.Item, error)
	ListMyUnvoted(ctx context.Context, userID string, roomID *string) ([]*model.Item, error)
	Recommendations(ctx context.Context, userID string, roomID *string) ([]*model.Item, error)
	Create(ctx context.Context, userID, name string, roomID *string) (*model.Item, error)
	Delete(ctx context.Context, userID, itemID string) error
}

type itemService struct {
	items       repository.ItemRepository
	scopes      ScopeResolver
	leaderboard LeaderboardService
	notifier    *Notifier
}

func NewItemService(items repository.ItemRepository, scopes ScopeResolver, leaderboard LeaderboardService, notifier *Notifier) ItemService {
	return &itemService{items: items, scopes: scopes, leaderboard: leaderboard, notifier: notifier}
}

func (s *itemService) Search(ctx context.Context, q string, roomID *string) ([]*model.Item, error) {
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return s.items.ListRecent(ctx, scope, SearchLimit)
	}
	return s.items.Search(ctx, scope, q, SearchLimit)
}

func (s *itemService) ListMine(ctx context.Context, userID string, roomID *string, all bool) ([]*model.Item, error) {
	if all {
		return s.items.ListByUser(ctx, userID, model.GlobalScope, true)
	}
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.items.ListByUser(ctx, userID, scope, false)
}

func (s *itemService) ListMyUnvoted(ctx context.Context, userID string, roomID *string) ([]*model.Item, error) {
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.items.ListOwnUnvoted(ctx, userID, scope, 0)
}

// Recommendations returns the caller's own unvoted items newest first, then
// fills the remaining slots with other users' unvoted items at random.
func (s *itemService) Recommendations(ctx context.Context, userID string, roomID *string) ([]*model.Item, error) {
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	own, err := s.items.ListOwnUnvoted(ctx, userID, scope, RecommendationsLimit)
	if err != nil {
		return nil, err
	}
	remaining := RecommendationsLimit - len(own)
	if remaining <= 0 {
		return own, nil
	}
	others, err := s.items.ListOthersUnvotedRandom(ctx, userID, scope, remaining)
	if err != nil {
		return nil, err
	}
	return append(own, others...), nil
}

func (s *itemService) Create(ctx context.Context, userID, name string, roomID *string) (*model.Item, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 1 || n > model.MaxItemNameLength {
		return nil, apperr.Validation("name must be between 1 and 64 characters")
	}
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}

	existing, err := s.items.FindByName(ctx, scope, name)
	switch {
	case err == nil:
		return nil, apperr.Conflict("item already exists", existing)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	item := &model.Item{
		ID:     uuid.New().String(),
		Name:   name,
		RoomID: model.RoomIDOf(scope),
		UserID: userID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent create of the same name
			if existing, ferr := s.items.FindByName(ctx, scope, name); ferr == nil {
				return nil, apperr.Conflict("item already exists", existing)
			}
			return nil, apperr.Conflict("item already exists", nil)
		}
		return nil, err
	}

	s.leaderboard.Invalidate(ctx, scope)
	s.notifier.Trigger()
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, userID, itemID string) error {
	item, err := s.items.GetByID(ctx, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("item not found")
	}
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return apperr.Authorization("you can only delete your own items")
	}
	if err := s.items.Delete(ctx, item.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("item not found")
		}
		return err
	}
	s.leaderboard.Invalidate(ctx, item.Scope)
	return nil
}

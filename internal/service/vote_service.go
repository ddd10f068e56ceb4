package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/internal/metrics"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/pkg/apperr"
	"github.com/d60-Lab/tierlist/pkg/logger"
)

// VoteStats 单个条目在某作用域内的投票分布
type VoteStats struct {
	ItemID     string               `json:"itemId"`
	TotalVotes int64                `json:"totalVotes"`
	Score      int64                `json:"score"`
	Tiers      map[model.Tier]int64 `json:"tiers"`
}

// VoteService 投票账本
type VoteService interface {
	// Upsert records the caller's tier for an item, creating or replacing the
	// single vote keyed by (user, item, room).
	Upsert(ctx context.Context, userID, itemID string, roomID *string, tier string) (*model.Vote, error)
	// Remove deletes the vote for the key and returns how many rows went away.
	Remove(ctx context.Context, userID, itemID string, roomID *string) (int64, error)
	Stats(ctx context.Context, itemID string, roomID *string) (*VoteStats, error)
	MyVotes(ctx context.Context, userID string, roomID *string) ([]*model.Vote, error)
	MyIgnored(ctx context.Context, userID string, roomID *string) ([]*model.Item, error)
}

type voteService struct {
	votes       repository.VoteRepository
	items       repository.ItemRepository
	scopes      ScopeResolver
	leaderboard LeaderboardService
}

func NewVoteService(votes repository.VoteRepository, items repository.ItemRepository, scopes ScopeResolver, leaderboard LeaderboardService) VoteService {
	return &voteService{votes: votes, items: items, scopes: scopes, leaderboard: leaderboard}
}

func (s *voteService) Upsert(ctx context.Context, userID, itemID string, roomID *string, tierStr string) (*model.Vote, error) {
	tier, err := model.ParseTier(tierStr)
	if err != nil {
		return nil, apperr.Validation("tier must be one of S, A, B, C, D or IGNORED")
	}
	if itemID == "" {
		return nil, apperr.Validation("itemId is required")
	}
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("item not found")
	}
	if err != nil {
		return nil, err
	}
	if item.Scope != scope {
		return nil, apperr.Validation("item does not belong to this room")
	}

	vote, err := s.upsert(ctx, userID, item.ID, scope, tier)
	if err != nil {
		return nil, err
	}
	s.leaderboard.Invalidate(ctx, scope)
	return vote, nil
}

// upsert is a read-modify-write on the vote key. A unique violation on
// insert means a concurrent writer created the row first; the write is then
// retried once as an update.
func (s *voteService) upsert(ctx context.Context, userID, itemID, scope string, tier model.Tier) (*model.Vote, error) {
	existing, err := s.votes.Find(ctx, userID, itemID, scope)
	switch {
	case err == nil:
		return s.update(ctx, existing, tier)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	vote := &model.Vote{
		ID:     uuid.New().String(),
		UserID: userID,
		ItemID: itemID,
		RoomID: model.RoomIDOf(scope),
		Tier:   tier,
	}
	err = s.votes.Create(ctx, vote)
	if err == nil {
		metrics.VotesTotal.WithLabelValues("created").Inc()
		return vote, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}

	logger.Debug("vote insert raced, retrying as update",
		zap.String("user_id", userID), zap.String("item_id", itemID))
	existing, ferr := s.votes.Find(ctx, userID, itemID, scope)
	if ferr != nil {
		metrics.VotesTotal.WithLabelValues("conflict").Inc()
		return nil, apperr.RetryableConflict("vote was modified concurrently, retry", errors.Join(err, ferr))
	}
	v, uerr := s.update(ctx, existing, tier)
	if uerr != nil {
		metrics.VotesTotal.WithLabelValues("conflict").Inc()
		return nil, apperr.RetryableConflict("vote was modified concurrently, retry", errors.Join(err, uerr))
	}
	return v, nil
}

func (s *voteService) update(ctx context.Context, v *model.Vote, tier model.Tier) (*model.Vote, error) {
	if err := s.votes.UpdateTier(ctx, v.ID, tier); err != nil {
		return nil, err
	}
	v.Tier = tier
	metrics.VotesTotal.WithLabelValues("updated").Inc()
	return v, nil
}

func (s *voteService) Remove(ctx context.Context, userID, itemID string, roomID *string) (int64, error) {
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return 0, err
	}
	n, err := s.votes.Delete(ctx, userID, itemID, scope)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.VotesTotal.WithLabelValues("removed").Add(float64(n))
		s.leaderboard.Invalidate(ctx, scope)
	}
	return n, nil
}

func (s *voteService) Stats(ctx context.Context, itemID string, roomID *string) (*VoteStats, error) {
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	counts, err := s.votes.TierCounts(ctx, itemID, scope)
	if err != nil {
		return nil, err
	}
	score, total := Score(counts)
	return &VoteStats{ItemID: itemID, TotalVotes: total, Score: score, Tiers: counts}, nil
}

func (s *voteService) MyVotes(ctx context.Context, userID string, roomID *string) ([]*model.Vote, error) {
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.votes.ListByUser(ctx, userID, scope, true)
}

func (s *voteService) MyIgnored(ctx context.Context, userID string, roomID *string) ([]*model.Item, error) {
	scope, err := s.scopes.ResolveScope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.votes.ListIgnoredItems(ctx, userID, scope)
}

package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/tierlist/internal/cache"
	"github.com/d60-Lab/tierlist/internal/metrics"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
)

const (
	DefaultLeaderboardLimit = 20
	MaxLeaderboardLimit     = 100
	OrderAsc                = "asc"
	OrderDesc               = "desc"
)

// LeaderboardQuery 排行榜查询参数；零值取默认
type LeaderboardQuery struct {
	Order  string
	Page   int
	Limit  int
	RoomID *string
}

// LeaderboardPage 分页结果
type LeaderboardPage struct {
	Items      []repository.LeaderboardEntry `json:"items"`
	Order      string                        `json:"order"`
	Page       int                           `json:"page"`
	Limit      int                           `json:"limit"`
	Total      int64                         `json:"total"`
	TotalPages int                           `json:"totalPages"`
}

type LeaderboardService interface {
	Get(ctx context.Context, q LeaderboardQuery) (*LeaderboardPage, error)
	// Invalidate drops cached pages for a scope after a write.
	Invalidate(ctx context.Context, scope string)
}

type leaderboardService struct {
	repo   repository.LeaderboardRepository
	scopes ScopeResolver
	cache  *cache.LeaderboardCache
}

func NewLeaderboardService(repo repository.LeaderboardRepository, scopes ScopeResolver, c *cache.LeaderboardCache) LeaderboardService {
	return &leaderboardService{repo: repo, scopes: scopes, cache: c}
}

// Normalize applies defaults and bounds: order desc unless "asc", page >= 1,
// limit in [1,100] defaulting to 20.
func (q LeaderboardQuery) Normalize() LeaderboardQuery {
	if q.Order != OrderAsc {
		q.Order = OrderDesc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLeaderboardLimit
	}
	if q.Limit > MaxLeaderboardLimit {
		q.Limit = MaxLeaderboardLimit
	}
	return q
}

func (s *leaderboardService) Get(ctx context.Context, q LeaderboardQuery) (*LeaderboardPage, error) {
	q = q.Normalize()
	scope, err := s.scopes.ResolveScope(ctx, q.RoomID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:%d:%d", q.Order, q.Page, q.Limit)
	var cached LeaderboardPage
	slot, hit := s.cache.Get(ctx, scope, key, &cached)
	if hit {
		metrics.LeaderboardCacheTotal.WithLabelValues("hit").Inc()
		return &cached, nil
	}
	if s.cache.Enabled() {
		metrics.LeaderboardCacheTotal.WithLabelValues("miss").Inc()
	}

	total, err := s.repo.Count(ctx, scope)
	if err != nil {
		return nil, err
	}
	offset := (q.Page - 1) * q.Limit
	rows, err := s.repo.Page(ctx, scope, q.Order == OrderAsc, offset, q.Limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repository.LeaderboardEntry{}
	}
	page := &LeaderboardPage{
		Items:      rows,
		Order:      q.Order,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: TotalPages(total, q.Limit),
	}
	s.cache.Set(ctx, slot, page)
	return page, nil
}

func (s *leaderboardService) Invalidate(ctx context.Context, scope string) {
	s.cache.Invalidate(ctx, scope)
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Score sums tier weights over a tier histogram and returns the score and
// the number of counted (non-ignored) votes.
func Score(counts map[model.Tier]int64) (score, voteCount int64) {
	for tier, n := range counts {
		score += int64(tier.Weight()) * n
		if tier.Counted() {
			voteCount += n
		}
	}
	return score, voteCount
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/internal/model"
)

// LeaderboardEntry 条目及其得分；得分读取时计算，不落库
type LeaderboardEntry struct {
	model.Item
	Score     int64 `json:"score"`
	VoteCount int64 `json:"voteCount"`
}

type LeaderboardRepository interface {
	// Page returns ranked items in scope: score in the given direction, then
	// vote count descending, then name ascending.
	Page(ctx context.Context, scope string, ascending bool, offset, limit int) ([]LeaderboardEntry, error)
	Count(ctx context.Context, scope string) (int64, error)
}

type leaderboardRepository struct {
	db       *gorm.DB
	scoreSQL string
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db, scoreSQL: scoreCaseSQL()}
}

// scoreCaseSQL renders the tier weights as a CASE expression over votes.tier.
func scoreCaseSQL() string {
	var b strings.Builder
	b.WriteString("CASE votes.tier")
	for _, t := range model.Tiers {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", t, t.Weight())
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

func (r *leaderboardRepository) Page(ctx context.Context, scope string, ascending bool, offset, limit int) ([]LeaderboardEntry, error) {
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	var rows []LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("items").
		Select(fmt.Sprintf("items.*, COALESCE(SUM(%s), 0) AS score, COUNT(CASE WHEN votes.tier <> '%s' THEN 1 END) AS vote_count",
			r.scoreSQL, model.TierIgnored)).
		Joins("LEFT JOIN votes ON votes.item_id = items.id AND votes.scope = items.scope").
		Where("items.scope = ? AND items.name IS NOT NULL", scope).
		Group("items.id").
		Order(fmt.Sprintf("score %s, vote_count DESC, items.name ASC", dir)).
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *leaderboardRepository) Count(ctx context.Context, scope string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("scope = ? AND name IS NOT NULL", scope).
		Count(&n).Error
	return n, err
}

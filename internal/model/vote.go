package model

import (
	"fmt"
	"strings"
	"time"
)

// Tier 投票等级
type Tier string

const (
	TierS       Tier = "S"
	TierA       Tier = "A"
	TierB       Tier = "B"
	TierC       Tier = "C"
	TierD       Tier = "D"
	TierIgnored Tier = "IGNORED"
)

// Tiers lists every tier in display order.
var Tiers = []Tier{TierS, TierA, TierB, TierC, TierD, TierIgnored}

var tierWeights = map[Tier]int{
	TierS:       3,
	TierA:       2,
	TierB:       1,
	TierC:       -1,
	TierD:       -2,
	TierIgnored: 0,
}

// Weight returns the score contribution of a vote in tier t.
func (t Tier) Weight() int { return tierWeights[t] }

func (t Tier) Valid() bool {
	_, ok := tierWeights[t]
	return ok
}

// Counted reports whether the tier counts toward voteCount/totalVotes.
func (t Tier) Counted() bool { return t != TierIgnored }

// ParseTier validates s case-insensitively and returns the upper-case tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid tier %q", s)
	}
	return t, nil
}

// Vote 投票：(user, item, scope) 唯一
type Vote struct {
	ID     string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_vote_key,priority:1;index:idx_vote_user" json:"userId"`
	ItemID string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_vote_key,priority:2;index:idx_vote_item" json:"itemId"`
	Scope  string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_vote_key,priority:3" json:"-"`
	RoomID *string `gorm:"type:varchar(36)" json:"roomId"`
	Tier   Tier    `gorm:"type:varchar(8);not null" json:"tier"`
	// UpdatedAt is the last-modified timestamp; re-votes bump it.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

func (Vote) TableName() string { return "votes" }

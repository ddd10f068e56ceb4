package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/testutil"
)

func BenchmarkVoteWrite(b *testing.B) {
	db := testutil.NewDB(b)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	// 预创建用户与条目
	users := make([]*model.User, 200)
	for i := range users {
		users[i] = testutil.CreateUser(b, db, fmt.Sprintf("u%04d", i))
	}
	items := make([]*model.Item, 200)
	for i := range items {
		items[i] = testutil.CreateItem(b, db, users[0], fmt.Sprintf("item-%04d", i), nil)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		u := users[rand.Intn(len(users))]
		it := items[rand.Intn(len(items))]
		tier := model.Tiers[rand.Intn(len(model.Tiers))]
		if v, err := votes.Find(ctx, u.ID, it.ID, model.GlobalScope); err == nil {
			_ = votes.UpdateTier(ctx, v.ID, tier)
			continue
		}
		_ = votes.Create(ctx, &model.Vote{ID: uuid.NewString(), UserID: u.ID, ItemID: it.ID, Tier: tier})
	}
}

func BenchmarkLeaderboardPage(b *testing.B) {
	db := testutil.NewDB(b)
	lb := NewLeaderboardRepository(db)
	ctx := context.Background()

	// 构造：1000 个条目，每个条目 20 票
	const N = 1000
	users := make([]*model.User, 20)
	for i := range users {
		users[i] = testutil.CreateUser(b, db, fmt.Sprintf("u%02d", i))
	}
	for i := 0; i < N; i++ {
		it := testutil.CreateItem(b, db, users[0], fmt.Sprintf("item-%05d", i), nil)
		for _, u := range users {
			testutil.CreateVote(b, db, u, it, model.Tiers[rand.Intn(len(model.Tiers))])
		}
	}

	b.ResetTimer()
	b.Run("FirstPage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = lb.Page(ctx, model.GlobalScope, false, 0, 20)
		}
	})
	b.Run("DeepPage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = lb.Page(ctx, model.GlobalScope, false, 900, 20)
		}
	})
}

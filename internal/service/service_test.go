package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/cache"
	"github.com/d60-Lab/tierlist/internal/push"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/internal/testutil"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []push.Message
	to     []string
	status map[string]int // endpoint -> failing status
}

func (f *fakeSender) Send(_ context.Context, sub push.Subscription, msg push.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code, ok := f.status[sub.Endpoint]; ok {
		return &push.TransportError{StatusCode: code}
	}
	f.sent = append(f.sent, msg)
	f.to = append(f.to, sub.Endpoint)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type env struct {
	db          *gorm.DB
	users       repository.UserRepository
	rooms       repository.RoomRepository
	items       repository.ItemRepository
	votes       repository.VoteRepository
	subs        repository.PushSubscriptionRepository
	scopes      ScopeResolver
	leaderboard LeaderboardService
	notifier    *Notifier
	sender      *fakeSender
	roomSvc     RoomService
	itemSvc     ItemService
	voteSvc     VoteService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	e := &env{
		db:     db,
		users:  repository.NewUserRepository(db),
		rooms:  repository.NewRoomRepository(db),
		items:  repository.NewItemRepository(db),
		votes:  repository.NewVoteRepository(db),
		subs:   repository.NewPushSubscriptionRepository(db),
		sender: &fakeSender{status: map[string]int{}},
	}
	e.scopes = NewScopeResolver(e.rooms)
	rdb, _ := testutil.NewRedis(t)
	e.leaderboard = NewLeaderboardService(repository.NewLeaderboardRepository(db), e.scopes, cache.NewLeaderboardCache(rdb, time.Minute))
	e.notifier = NewNotifier(e.subs, e.items, e.votes, e.sender, config.PushConfig{
		DebounceWindow: time.Hour, URL: "/", Icon: "/favicon.ico",
	})
	e.roomSvc = NewRoomService(e.rooms, e.leaderboard)
	e.itemSvc = NewItemService(e.items, e.scopes, e.leaderboard, e.notifier)
	e.voteSvc = NewVoteService(e.votes, e.items, e.scopes, e.leaderboard)
	return e
}

func strPtr(s string) *string { return &s }

package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/internal/service"
	"github.com/d60-Lab/tierlist/pkg/apperr"
	"github.com/d60-Lab/tierlist/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(database.Migrate(db, model.All()...))

	N := envInt("N", 10000)     // upserts per pass
	CONC := envInt("CONC", 8)   // workers
	USERS := envInt("USERS", 200)
	ITEMS := envInt("ITEMS", 500)

	// seed users and items in the global scope
	users := make([]model.User, USERS)
	for i := range users {
		id := uuid.NewString()
		users[i] = model.User{ID: id, Email: id[:8] + "@bench.local", Pseudo: "u" + id[:8], Role: model.RoleUser, IsActive: true}
	}
	mustDo(db.CreateInBatches(&users, 1000).Error)

	items := make([]model.Item, ITEMS)
	for i := range items {
		name := fmt.Sprintf("bench-%s", uuid.NewString()[:12])
		items[i] = model.Item{ID: uuid.NewString(), Name: name, NameKey: model.NormalizeItemName(name), Scope: model.GlobalScope, UserID: users[i%USERS].ID}
	}
	mustDo(db.CreateInBatches(&items, 1000).Error)

	itemRepo := repository.NewItemRepository(db)
	scopes := service.NewScopeResolver(repository.NewRoomRepository(db))
	leaderboard := service.NewLeaderboardService(repository.NewLeaderboardRepository(db), scopes, nil)
	votes := service.NewVoteService(repository.NewVoteRepository(db), itemRepo, scopes, leaderboard)

	ctx := context.Background()

	// pass 1 mostly inserts, pass 2 hits the same keys and becomes updates
	first := run(ctx, votes, users, items, N, CONC, 1)
	second := run(ctx, votes, users, items, N, CONC, 1000)

	q0 := time.Now()
	page := must(leaderboard.Get(ctx, service.LeaderboardQuery{Page: 1, Limit: 20}))
	lbDur := time.Since(q0)

	fmt.Printf("N=%d, CONC=%d, USERS=%d, ITEMS=%d\n", N, CONC, USERS, ITEMS)
	first.print("Upsert (insert)")
	second.print("Upsert (re-vote)")
	fmt.Printf("Leaderboard page 1 (%d of %d items) latency: %v\n", len(page.Items), page.Total, lbDur)
}

type result struct {
	total     time.Duration
	durations []time.Duration
	conflicts int64
	failures  int64
}

func (r result) print(label string) {
	n := len(r.durations)
	if n == 0 {
		return
	}
	fmt.Printf("%-18s total: %v, per op: %v, p50: %v, p95: %v, p99: %v, conflicts: %d, failures: %d\n",
		label, r.total, r.total/time.Duration(n), pct(r.durations, 0.50), pct(r.durations, 0.95), pct(r.durations, 0.99),
		r.conflicts, r.failures)
}

func run(ctx context.Context, votes service.VoteService, users []model.User, items []model.Item, n, conc int, seed int64) result {
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	var conflicts, failures atomic.Int64
	latCh := make(chan time.Duration, n)
	done := make(chan struct{}, conc)

	t0 := time.Now()
	for w := 0; w < conc; w++ {
		rnd := rand.New(rand.NewSource(seed + int64(w)))
		go func() {
			for i := range feed {
				u := users[i%len(users)]
				it := items[(i/len(users)+i)%len(items)]
				tier := model.Tiers[rnd.Intn(len(model.Tiers))]
				st := time.Now()
				_, err := votes.Upsert(ctx, u.ID, it.ID, nil, string(tier))
				latCh <- time.Since(st)
				switch {
				case err == nil:
				case apperr.IsRetryable(err):
					conflicts.Add(1)
				default:
					failures.Add(1)
				}
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < conc; w++ {
		<-done
	}
	total := time.Since(t0)
	close(latCh)

	out := result{total: total, durations: make([]time.Duration, 0, n)}
	for d := range latCh {
		out.durations = append(out.durations, d)
	}
	out.conflicts = conflicts.Load()
	out.failures = failures.Load()
	return out
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

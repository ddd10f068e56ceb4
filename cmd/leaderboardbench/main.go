package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/cache"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/internal/service"
	"github.com/d60-Lab/tierlist/pkg/database"
)

type request struct {
	page  int
	limit int
	order string
	// vote marks a write that invalidates the scope before the read
	vote bool
}

func main() {
	ctx := context.Background()

	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(database.Migrate(db, model.All()...))

	const (
		itemCount = 5000
		userCount = 200
		reqCount  = 5000
		ttl       = 5 * time.Minute
	)
	writeRatio := 0.05
	if s := os.Getenv("WRITE_RATIO"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f <= 1 {
			writeRatio = f
		}
	}

	// a private room keeps bench rows apart from real data
	fmt.Println("Setting up test data...")
	owner := model.User{ID: uuid.NewString(), Pseudo: "bench", Role: model.RoleUser, IsActive: true}
	owner.Email = owner.ID[:8] + "@bench.local"
	mustDo(db.Create(&owner).Error)
	room := model.Room{ID: uuid.NewString(), Hash: uuid.NewString()[:8], Name: "leaderboard bench", UserID: owner.ID}
	mustDo(db.Create(&room).Error)

	voters := make([]model.User, userCount)
	for i := range voters {
		id := uuid.NewString()
		voters[i] = model.User{ID: id, Email: id[:8] + "@bench.local", Pseudo: "v" + id[:8], Role: model.RoleUser, IsActive: true}
	}
	mustDo(db.CreateInBatches(&voters, 1000).Error)

	items := make([]model.Item, itemCount)
	for i := range items {
		name := fmt.Sprintf("item %05d", i)
		items[i] = model.Item{ID: uuid.NewString(), Name: name, NameKey: model.NormalizeItemName(name), Scope: room.ID, RoomID: &room.ID, UserID: owner.ID}
	}
	mustDo(db.CreateInBatches(&items, 1000).Error)

	rnd := rand.New(rand.NewSource(42))
	votes := make([]model.Vote, 0, itemCount*10)
	for _, it := range items {
		n := rnd.Intn(20)
		for _, j := range rnd.Perm(userCount)[:n] {
			votes = append(votes, model.Vote{
				ID: uuid.NewString(), UserID: voters[j].ID, ItemID: it.ID,
				Scope: room.ID, RoomID: &room.ID, Tier: model.Tiers[rnd.Intn(len(model.Tiers))],
			})
		}
	}
	mustDo(db.CreateInBatches(&votes, 1000).Error)
	fmt.Printf("Test data ready: %d items, %d votes\n", itemCount, len(votes))

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	repo := repository.NewLeaderboardRepository(db)
	scopes := service.NewScopeResolver(repository.NewRoomRepository(db))
	reqs := makeRequests(reqCount, writeRatio)

	noCache := runScenario(ctx, service.NewLeaderboardService(repo, scopes, nil), room.ID, reqs, client)
	lbCache := cache.NewLeaderboardCache(client, ttl)
	cached := runScenario(ctx, service.NewLeaderboardService(repo, scopes, lbCache), room.ID, reqs, client)
	hits, misses := lbCache.Stats()

	fmt.Printf("\nLeaderboard latency (%d req, %d items, write ratio %.2f)\n", reqCount, itemCount, writeRatio)
	fmt.Printf("%-14s avg=%v p95=%v p99=%v\n", "No cache", avg(noCache.durations), pct(noCache.durations, 0.95), pct(noCache.durations, 0.99))
	fmt.Printf("%-14s avg=%v p95=%v p99=%v hits=%d misses=%d cache_keys=%d mem=%s\n",
		"Redis cache", avg(cached.durations), pct(cached.durations, 0.95), pct(cached.durations, 0.99),
		hits, misses, cached.cacheKeys, humanize.IBytes(cached.memoryBytes))
}

type scenarioResult struct {
	durations   []time.Duration
	cacheKeys   int
	memoryBytes uint64
}

func runScenario(ctx context.Context, svc service.LeaderboardService, roomID string, reqs []request, client *redis.Client) scenarioResult {
	client.FlushDB(ctx)

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		if r.vote {
			svc.Invalidate(ctx, roomID)
		}
		start := time.Now()
		if _, err := svc.Get(ctx, service.LeaderboardQuery{Order: r.order, Page: r.page, Limit: r.limit, RoomID: &roomID}); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "leaderboard:*").Result()
	var mem uint64
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		mem = parseUsedMemory(info)
	}
	return scenarioResult{durations: out, cacheKeys: len(keys), memoryBytes: mem}
}

// parseUsedMemory extracts used_memory from Redis INFO output.
func parseUsedMemory(info string) uint64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, _ := strconv.ParseUint(v, 10, 64)
			return n
		}
	}
	return 0
}

func makeRequests(n int, writeRatio float64) []request {
	limits := []int{20, 50, 100}
	out := make([]request, n)
	rnd := rand.New(rand.NewSource(7))
	for i := range out {
		r := request{page: 1, limit: limits[rnd.Intn(len(limits))], order: service.OrderDesc}
		if rnd.Float64() > 0.8 {
			// deep pages and bottom-of-board views
			r.page = 2 + rnd.Intn(20)
		}
		if rnd.Float64() > 0.9 {
			r.order = service.OrderAsc
		}
		r.vote = rnd.Float64() < writeRatio
		out[i] = r
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

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

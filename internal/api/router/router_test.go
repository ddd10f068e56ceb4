package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/api/handler"
	"github.com/d60-Lab/tierlist/internal/cache"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/internal/service"
	"github.com/d60-Lab/tierlist/internal/session"
	"github.com/d60-Lab/tierlist/internal/testutil"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode, BasePath: "/api"},
		Session:   config.SessionConfig{CookieName: "tierlist_session", TTL: time.Hour},
		Push:      config.PushConfig{DebounceWindow: time.Hour},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}

	users := repository.NewUserRepository(db)
	rooms := repository.NewRoomRepository(db)
	items := repository.NewItemRepository(db)
	votes := repository.NewVoteRepository(db)
	subs := repository.NewPushSubscriptionRepository(db)

	scopes := service.NewScopeResolver(rooms)
	leaderboard := service.NewLeaderboardService(repository.NewLeaderboardRepository(db), scopes, cache.NewLeaderboardCache(rdb, time.Minute))
	notifier := service.NewNotifier(subs, items, votes, nil, cfg.Push)
	sessions := session.NewManager(session.NewRedisStore(rdb), cfg.Session.CookieName, cfg.Session.TTL, "", false)

	h := handler.New(handler.Deps{
		Auth:        service.NewAuthService(users),
		OAuth:       service.NewOAuthService(users, cfg.OAuth),
		Rooms:       service.NewRoomService(rooms, leaderboard),
		Items:       service.NewItemService(items, scopes, leaderboard, notifier),
		Votes:       service.NewVoteService(votes, items, scopes, leaderboard),
		Leaderboard: leaderboard,
		Push:        service.NewPushService(subs, cfg.Push),
		Sessions:    sessions,
		DB:          db,
		Redis:       rdb,
	})
	engine, err := New(cfg, h, sessions)
	require.NoError(t, err)
	return &testServer{t: t, engine: engine, db: db}
}

func (s *testServer) do(method, path string, body interface{}, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *testServer) register(email, pseudo string) (*http.Cookie, string) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/register", gin.H{
		"email": email, "pseudo": pseudo, "password": "password123",
	}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	for _, c := range w.Result().Cookies() {
		if c.Name == "tierlist_session" {
			return c, data.User.ID
		}
	}
	s.t.Fatal("no session cookie set")
	return nil, ""
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/auth/check", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decode[map[string]interface{}](t, env.Data)["authenticated"])

	cookie, _ := s.register("ann@example.com", "ann")

	w, env = s.do(http.MethodGet, "/api/auth/check", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	check := decode[struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Pseudo       string  `json:"pseudo"`
			PasswordHash *string `json:"passwordHash"`
		} `json:"user"`
	}](t, env.Data)
	assert.True(t, check.Authenticated)
	assert.Equal(t, "ann", check.User.Pseudo)
	assert.Nil(t, check.User.PasswordHash)

	w, _ = s.do(http.MethodPatch, "/api/auth/user", gin.H{"pseudo": "annie"}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodPatch, "/api/auth/user", gin.H{"pseudo": "   "}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/register", gin.H{
		"email": "ANN@example.com", "pseudo": "dup", "password": "password123",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/login", gin.H{"email": "ann@example.com", "password": "nope-nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodPost, "/api/auth/login", gin.H{"email": "ann@example.com", "password": "password123"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/auth/check", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)
	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/items"},
		{http.MethodGet, "/api/items/my"},
		{http.MethodPost, "/api/votes"},
		{http.MethodDelete, "/api/votes/x"},
		{http.MethodPost, "/api/rooms"},
		{http.MethodGet, "/api/push/status"},
		{http.MethodPost, "/api/auth/logout"},
	} {
		w, _ := s.do(r.method, r.path, gin.H{}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.method+" "+r.path)
	}
}

func TestItemAndVoteFlow(t *testing.T) {
	s := newTestServer(t)
	cookie, _ := s.register("bo@example.com", "bo")

	w, env := s.do(http.MethodPost, "/api/items", gin.H{"name": "Foo"}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
	}](t, env.Data)

	w, env = s.do(http.MethodPost, "/api/items", gin.H{"name": " foo "}, cookie)
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decode[struct {
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
	}](t, env.Data)
	assert.Equal(t, created.Item.ID, conflict.Item.ID)

	itemID := created.Item.ID
	w, _ = s.do(http.MethodPost, "/api/votes", gin.H{"itemId": itemID, "tier": "Q"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/votes", gin.H{"itemId": itemID, "tier": "s"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(http.MethodPost, "/api/votes", gin.H{"itemId": itemID, "tier": "A"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/votes/stats/"+itemID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[struct {
		ItemID     string           `json:"itemId"`
		TotalVotes int64            `json:"totalVotes"`
		Score      int64            `json:"score"`
		Tiers      map[string]int64 `json:"tiers"`
	}](t, env.Data)
	assert.Equal(t, itemID, stats.ItemID)
	assert.EqualValues(t, 1, stats.TotalVotes)
	assert.EqualValues(t, 2, stats.Score)
	assert.EqualValues(t, 1, stats.Tiers["A"])
	assert.EqualValues(t, 0, stats.Tiers["S"])
	assert.Len(t, stats.Tiers, 6)

	w, env = s.do(http.MethodGet, "/api/items/leaderboard?limit=500", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Items []struct {
			ID    string `json:"id"`
			Score int64  `json:"score"`
		} `json:"items"`
		Limit int `json:"limit"`
	}](t, env.Data)
	assert.Equal(t, 100, page.Limit)
	require.Len(t, page.Items, 1)
	assert.EqualValues(t, 2, page.Items[0].Score)

	w, env = s.do(http.MethodGet, "/api/votes/my", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]interface{}](t, env.Data)["votes"], 1)

	w, env = s.do(http.MethodDelete, "/api/votes/"+itemID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]int64](t, env.Data)["deleted"])
	w, env = s.do(http.MethodDelete, "/api/votes/"+itemID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]int64](t, env.Data)["deleted"])

	other, _ := s.register("cy@example.com", "cy")
	w, _ = s.do(http.MethodDelete, "/api/items/"+itemID, nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = s.do(http.MethodDelete, "/api/items/"+itemID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]bool](t, env.Data)["deleted"])
	w, _ = s.do(http.MethodDelete, "/api/items/"+itemID, nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemListingsNeverNull(t *testing.T) {
	s := newTestServer(t)
	cookie, _ := s.register("dee@example.com", "dee")
	for _, path := range []string{"/api/items", "/api/items/my", "/api/items/my-unvoted", "/api/items/recommendations", "/api/votes/ignored"} {
		w, env := s.do(http.MethodGet, path, nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `{"items":[]}`, string(env.Data), path)
	}
}

func TestRoomFlow(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.register("eve@example.com", "eve")
	other, _ := s.register("fay@example.com", "fay")

	w, env := s.do(http.MethodPost, "/api/rooms", gin.H{"name": "Movies", "description": "best of"}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	room := decode[struct {
		Room struct {
			ID   string `json:"id"`
			Hash string `json:"hash"`
		} `json:"room"`
	}](t, env.Data).Room
	assert.Len(t, room.Hash, 8)

	w, env = s.do(http.MethodGet, "/api/rooms/"+room.Hash, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Room struct {
			CreatorPseudo string `json:"creatorPseudo"`
		} `json:"room"`
	}](t, env.Data)
	assert.Equal(t, "eve", detail.Room.CreatorPseudo)

	w, _ = s.do(http.MethodPost, "/api/items", gin.H{"name": "Alien", "roomId": room.ID}, owner)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(http.MethodPost, "/api/items", gin.H{"name": "alien"}, owner)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = s.do(http.MethodGet, "/api/items?roomId="+room.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]interface{}](t, env.Data)["items"], 1)

	w, env = s.do(http.MethodGet, "/api/items/my?all=true&roomId="+room.ID, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]interface{}](t, env.Data)["items"], 2)

	w, _ = s.do(http.MethodGet, "/api/items?roomId=missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPatch, "/api/rooms/"+room.Hash, gin.H{"name": "Mine now"}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodPatch, "/api/rooms/"+room.Hash, gin.H{"name": "Films"}, owner)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/rooms/my", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]interface{}](t, env.Data)["rooms"], 1)

	w, _ = s.do(http.MethodDelete, "/api/rooms/"+room.Hash, nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = s.do(http.MethodDelete, "/api/rooms/"+room.Hash, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]bool](t, env.Data)["deleted"])
	w, _ = s.do(http.MethodGet, "/api/rooms/"+room.Hash, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPushEndpoints(t *testing.T) {
	s := newTestServer(t)
	cookie, _ := s.register("gus@example.com", "gus")

	w, _ := s.do(http.MethodGet, "/api/push/vapid-public-key", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = s.do(http.MethodPost, "/api/push/subscribe", gin.H{"endpoint": "https://push.example/1"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/push/subscribe", gin.H{
		"endpoint": "https://push.example/1",
		"keys":     gin.H{"p256dh": "key", "auth": "secret"},
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := s.do(http.MethodGet, "/api/push/status", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]bool](t, env.Data)["subscribed"])

	w, _ = s.do(http.MethodDelete, "/api/push/unsubscribe", gin.H{"endpoint": "https://push.example/1"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	_, env = s.do(http.MethodGet, "/api/push/status", nil, cookie)
	assert.Equal(t, false, decode[map[string]bool](t, env.Data)["subscribed"])
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, env := s.do(http.MethodGet, "/ready", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"database":"ok","redis":"ok"}`, string(env.Data))

	w, _ = s.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w, _ = s.do(http.MethodGet, "/api/auth/google", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

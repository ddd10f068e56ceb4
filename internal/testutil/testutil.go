// Package testutil provides in-memory databases, Redis and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/pkg/database"
)

// NewDB opens a fresh in-memory sqlite database with every table migrated.
// The pool is pinned to one connection so all queries see the same database.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig("silent", 0))
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db, model.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// NewRedis starts a miniredis server and returns a client bound to it.
func NewRedis(tb testing.TB) (*redis.Client, *miniredis.Miniredis) {
	tb.Helper()
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		tb.Fatalf("start miniredis: %v", err)
	}
	tb.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func CreateUser(tb testing.TB, db *gorm.DB, pseudo string) *model.User {
	tb.Helper()
	u := &model.User{
		ID:       uuid.NewString(),
		Email:    fmt.Sprintf("%s-%s@example.com", pseudo, uuid.NewString()[:8]),
		Pseudo:   pseudo,
		Role:     model.RoleUser,
		IsActive: true,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("create user: %v", err)
	}
	return u
}

func CreateRoom(tb testing.TB, db *gorm.DB, owner *model.User, name string) *model.Room {
	tb.Helper()
	r := &model.Room{
		ID:     uuid.NewString(),
		Hash:   uuid.NewString()[:8],
		Name:   name,
		UserID: owner.ID,
	}
	if err := db.Create(r).Error; err != nil {
		tb.Fatalf("create room: %v", err)
	}
	return r
}

// CreateItem inserts an item in the room's scope, or the global scope when
// room is nil.
func CreateItem(tb testing.TB, db *gorm.DB, owner *model.User, name string, room *model.Room) *model.Item {
	tb.Helper()
	var roomID *string
	if room != nil {
		roomID = &room.ID
	}
	it := &model.Item{
		ID:      uuid.NewString(),
		Name:    name,
		NameKey: model.NormalizeItemName(name),
		Scope:   model.ScopeOf(roomID),
		RoomID:  roomID,
		UserID:  owner.ID,
	}
	if err := db.Create(it).Error; err != nil {
		tb.Fatalf("create item: %v", err)
	}
	return it
}

// CreateVote inserts a vote directly, bypassing upsert logic.
func CreateVote(tb testing.TB, db *gorm.DB, user *model.User, item *model.Item, tier model.Tier) *model.Vote {
	tb.Helper()
	v := &model.Vote{
		ID:     uuid.NewString(),
		UserID: user.ID,
		ItemID: item.ID,
		Scope:  item.Scope,
		RoomID: item.RoomID,
		Tier:   tier,
	}
	if err := db.Create(v).Error; err != nil {
		tb.Fatalf("create vote: %v", err)
	}
	return v
}

// Backdate sets created_at on an item so ordering tests are deterministic.
func Backdate(tb testing.TB, db *gorm.DB, item *model.Item, ago time.Duration) {
	tb.Helper()
	at := time.Now().UTC().Add(-ago)
	if err := db.Model(item).UpdateColumn("created_at", at).Error; err != nil {
		tb.Fatalf("backdate item: %v", err)
	}
	item.CreatedAt = at
}
